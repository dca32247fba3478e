// Package psx provides tests for sector parsing.
package psx

import (
	"bytes"
	"strings"
	"testing"
)

func TestParse_RawMode2Form2(t *testing.T) {
	sh := SubHeader{
		File:       1,
		Channel:    5,
		SubMode:    SubModeForm | SubModeAudio | SubModeRealTime,
		CodingInfo: EncodeCodingInfo(37800, 4, true),
	}
	data := bytes.Repeat([]byte{0xAB}, CD_FORM2_DATA_SIZE)
	s := Parse(EncodeMode2Sector(1000, sh, data), 1000)

	if s.Invalid() {
		t.Fatalf("Parse() returned invalid sector: %s", s.Problem())
	}
	if !s.HasRawHeader() {
		t.Error("HasRawHeader() = false, want true")
	}
	if s.IsCDAudio() {
		t.Error("IsCDAudio() = true, want false")
	}
	if s.Channel() != 5 {
		t.Errorf("Channel() = %d, want 5", s.Channel())
	}
	if s.File() != 1 {
		t.Errorf("File() = %d, want 1", s.File())
	}
	if s.UserDataSize() != CD_FORM2_DATA_SIZE {
		t.Errorf("UserDataSize() = %d, want %d", s.UserDataSize(), CD_FORM2_DATA_SIZE)
	}
	if s.UserDataByte(0) != 0xAB || s.UserDataByte(CD_FORM2_DATA_SIZE-1) != 0xAB {
		t.Error("UserDataByte() did not return the user data area")
	}
	if got := s.SubModeMask(SubModeForm | SubModeAudio); got != SubModeForm|SubModeAudio {
		t.Errorf("SubModeMask() = %02X, want %02X", byte(got), byte(SubModeForm|SubModeAudio))
	}
	ci := s.CodingInfo()
	if !ci.Stereo() || ci.SampleRate() != 37800 || ci.BitsPerSample() != 4 {
		t.Errorf("CodingInfo() = stereo %v rate %d bits %d", ci.Stereo(), ci.SampleRate(), ci.BitsPerSample())
	}
	if s.Index() != 1000 {
		t.Errorf("Index() = %d, want 1000", s.Index())
	}
}

func TestParse_RawMode2Form1(t *testing.T) {
	sh := SubHeader{Channel: 1, SubMode: SubModeData}
	s := Parse(EncodeMode2Sector(0, sh, nil), 0)
	if s.Invalid() {
		t.Fatalf("Parse() returned invalid sector: %s", s.Problem())
	}
	if s.UserDataSize() != CD_DATA_SIZE {
		t.Errorf("UserDataSize() = %d, want %d", s.UserDataSize(), CD_DATA_SIZE)
	}
	if len(s.UserData()) != CD_DATA_SIZE {
		t.Errorf("len(UserData()) = %d, want %d", len(s.UserData()), CD_DATA_SIZE)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		problem string
	}{
		{"wrong size", make([]byte, 1000), "unrecognized sector size"},
		{"missing sync", make([]byte, CD_SECTOR_SIZE), "sync pattern"},
		{"empty", nil, "unrecognized sector size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Parse(tt.data, 7)
			if !s.Invalid() {
				t.Fatal("Parse() should mark the sector invalid")
			}
			if !strings.Contains(s.Problem(), tt.problem) {
				t.Errorf("Problem() = %q, want it to contain %q", s.Problem(), tt.problem)
			}
			if s.HasSubHeader() || s.Channel() != -1 {
				t.Error("invalid sector should not expose a subheader")
			}
			if s.UserDataSize() != 0 {
				t.Errorf("UserDataSize() = %d, want 0", s.UserDataSize())
			}
		})
	}
}

func TestParse_UnsupportedMode(t *testing.T) {
	raw := EncodeMode2Sector(0, SubHeader{}, nil)
	raw[CD_SYNC_SIZE+3] = 3
	if s := Parse(raw, 0); !s.Invalid() {
		t.Error("Parse() should reject mode 3")
	}
}

func TestParse_Mode1(t *testing.T) {
	raw := EncodeMode2Sector(16, SubHeader{}, nil)
	raw[CD_SYNC_SIZE+3] = 1
	raw[CD_MODE1_DATA_OFFSET] = 0x01
	s := Parse(raw, 16)
	if s.Invalid() {
		t.Fatalf("Parse() returned invalid sector: %s", s.Problem())
	}
	if s.HasSubHeader() {
		t.Error("mode 1 sector should not have a subheader")
	}
	if s.UserDataByte(0) != 0x01 {
		t.Errorf("UserDataByte(0) = %02X, want 01", s.UserDataByte(0))
	}
}

func TestParse_2336And2048(t *testing.T) {
	raw := EncodeMode2Sector(0, SubHeader{Channel: 3, SubMode: SubModeForm | SubModeAudio}, []byte{0x42})
	s := Parse(raw[CD_MODE1_DATA_OFFSET:], 9)
	if s.Kind() != KindMode2_2336 {
		t.Fatalf("Kind() = %s, want 2336", s.Kind())
	}
	if s.HasRawHeader() {
		t.Error("2336-byte sector should not report a raw header")
	}
	if s.Channel() != 3 || s.UserDataByte(0) != 0x42 {
		t.Errorf("Channel() = %d, UserDataByte(0) = %02X", s.Channel(), s.UserDataByte(0))
	}

	cooked := Parse(make([]byte, CD_DATA_SIZE), 10)
	if cooked.Kind() != KindCooked2048 || cooked.HasSubHeader() {
		t.Errorf("cooked sector: Kind() = %s, HasSubHeader() = %v", cooked.Kind(), cooked.HasSubHeader())
	}
}

func TestParseCDAudio(t *testing.T) {
	s := ParseCDAudio(make([]byte, CD_SECTOR_SIZE), 20)
	if !s.IsCDAudio() || s.Invalid() {
		t.Errorf("IsCDAudio() = %v, Invalid() = %v", s.IsCDAudio(), s.Invalid())
	}
	if s.HasRawHeader() {
		t.Error("CD audio sector should not report a raw header")
	}
}

func TestCodingInfo(t *testing.T) {
	tests := []struct {
		rate   int
		bits   int
		stereo bool
	}{
		{37800, 4, true},
		{37800, 8, false},
		{18900, 4, false},
		{18900, 8, true},
	}

	for _, tt := range tests {
		ci := EncodeCodingInfo(tt.rate, tt.bits, tt.stereo)
		if ci.SampleRate() != tt.rate || ci.BitsPerSample() != tt.bits || ci.Stereo() != tt.stereo {
			t.Errorf("EncodeCodingInfo(%d, %d, %v) decoded as %d, %d, %v",
				tt.rate, tt.bits, tt.stereo, ci.SampleRate(), ci.BitsPerSample(), ci.Stereo())
		}
	}
}

func TestEncodeMode2Sector_Address(t *testing.T) {
	raw := EncodeMode2Sector(0, SubHeader{}, nil)
	// LBA 0 is 00:02:00 after the pregap
	if raw[12] != 0x00 || raw[13] != 0x02 || raw[14] != 0x00 {
		t.Errorf("address = %02X:%02X:%02X, want 00:02:00", raw[12], raw[13], raw[14])
	}
	if got := Parse(raw, 0).MSF(); got != "00:02:00" {
		t.Errorf("MSF() = %q, want 00:02:00", got)
	}
}

func TestEncodeMode2Sector_Forms(t *testing.T) {
	tests := []struct {
		name    string
		subMode SubMode
		size    int
	}{
		{"form 1", SubModeData, CD_DATA_SIZE},
		{"form 2", SubModeForm | SubModeAudio, CD_FORM2_DATA_SIZE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			long := bytes.Repeat([]byte{0x5A}, CD_SECTOR_SIZE)
			raw := EncodeMode2Sector(3, SubHeader{File: 1, Channel: 2, SubMode: tt.subMode}, long)
			if len(raw) != CD_SECTOR_SIZE {
				t.Fatalf("len = %d, want %d", len(raw), CD_SECTOR_SIZE)
			}
			// both subheader copies are written
			if !bytes.Equal(raw[16:20], raw[20:24]) || raw[17] != 2 {
				t.Errorf("subheader = % X", raw[16:24])
			}
			s := Parse(raw, 3)
			if s.UserDataSize() != tt.size {
				t.Errorf("UserDataSize() = %d, want %d", s.UserDataSize(), tt.size)
			}
			// user data is truncated to the form size
			if raw[CD_MODE2_DATA_OFFSET+tt.size-1] != 0x5A || raw[CD_MODE2_DATA_OFFSET+tt.size] != 0 {
				t.Error("user data not truncated to the form size")
			}
		})
	}
}
