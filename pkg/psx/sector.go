package psx

import (
	"bytes"
	"fmt"

	"github.com/hansbonini/psxstr/pkg/common"
)

// SectorKind identifies how a sector was stored in the disc image.
type SectorKind int

const (
	KindInvalid SectorKind = iota
	KindRaw2352            // Sync + header + (subheader) + data + EDC/ECC
	KindMode2_2336         // Mode 2 sector without sync and header
	KindCooked2048         // User data only (ISO image)
	KindCDAudio            // Red Book audio, no structure
)

func (k SectorKind) String() string {
	switch k {
	case KindRaw2352:
		return "2352"
	case KindMode2_2336:
		return "2336"
	case KindCooked2048:
		return "2048"
	case KindCDAudio:
		return "CD-DA"
	default:
		return "invalid"
	}
}

// Sector is a read-only view over one sector of a disc image. The byte
// slice is borrowed from the reader that produced it and is never modified.
type Sector struct {
	data      []byte
	index     int
	kind      SectorKind
	mode      byte
	subHeader *SubHeader
	dataStart int
	dataSize  int
	problem   string
}

// Parse builds a Sector from a block of sectorIndex. Blocks with an
// unrecognized size or a broken raw header produce an invalid Sector instead
// of an error.
func Parse(data []byte, sectorIndex int) *Sector {
	s := &Sector{data: data, index: sectorIndex}
	switch len(data) {
	case CD_SECTOR_SIZE:
		s.parseRaw()
	case CD_XA_DATA_SIZE:
		s.kind = KindMode2_2336
		s.mode = 2
		s.subHeader = readSubHeader(data[0:CD_SUBHEADER_SIZE])
		s.dataStart = CD_XA_DATA_OFFSET
		s.dataSize = formDataSize(s.subHeader)
	case CD_DATA_SIZE:
		s.kind = KindCooked2048
		s.dataStart = 0
		s.dataSize = CD_DATA_SIZE
	default:
		s.invalidate(fmt.Sprintf("%s %d", common.ErrUnrecognizedSectorSize, len(data)))
	}
	return s
}

// ParseCDAudio builds a Red Book audio sector. The image reader decides
// which sectors belong to audio tracks; nothing in the bytes says so.
func ParseCDAudio(data []byte, sectorIndex int) *Sector {
	s := &Sector{data: data, index: sectorIndex}
	if len(data) != CD_SECTOR_SIZE {
		s.invalidate(fmt.Sprintf("%s %d", common.ErrUnrecognizedSectorSize, len(data)))
		return s
	}
	s.kind = KindCDAudio
	s.dataSize = CD_SECTOR_SIZE
	return s
}

func (s *Sector) parseRaw() {
	if !bytes.Equal(s.data[:CD_SYNC_SIZE], CD_SYNC_PATTERN[:]) {
		s.invalidate("sync pattern not found")
		return
	}
	s.kind = KindRaw2352
	s.mode = s.data[CD_SYNC_SIZE+3]
	switch s.mode {
	case 1:
		s.dataStart = CD_MODE1_DATA_OFFSET
		s.dataSize = CD_DATA_SIZE
	case 2:
		s.subHeader = readSubHeader(s.data[CD_SUBHEADER_OFFSET:CD_MODE2_DATA_OFFSET])
		s.dataStart = CD_MODE2_DATA_OFFSET
		s.dataSize = formDataSize(s.subHeader)
	default:
		s.invalidate(fmt.Sprintf("unsupported sector mode %d", s.mode))
	}
}

func (s *Sector) invalidate(reason string) {
	s.kind = KindInvalid
	s.subHeader = nil
	s.dataStart = 0
	s.dataSize = 0
	s.problem = reason
}

// readSubHeader reads the first copy of the subheader. The second copy is
// kept for error correction only.
func readSubHeader(b []byte) *SubHeader {
	return &SubHeader{
		File:       b[0],
		Channel:    b[1],
		SubMode:    SubMode(b[2]),
		CodingInfo: CodingInfo(b[3]),
	}
}

func formDataSize(sh *SubHeader) int {
	if sh.SubMode.Has(SubModeForm) {
		return CD_FORM2_DATA_SIZE
	}
	return CD_DATA_SIZE
}

// Index returns the absolute sector number on the disc.
func (s *Sector) Index() int {
	return s.index
}

// Kind returns how the sector was stored.
func (s *Sector) Kind() SectorKind {
	return s.kind
}

// Invalid reports if the block failed basic structural checks.
func (s *Sector) Invalid() bool {
	return s.kind == KindInvalid
}

// Problem describes why the sector is invalid.
func (s *Sector) Problem() string {
	return s.problem
}

// HasRawHeader reports if the sector kept its sync pattern and header.
func (s *Sector) HasRawHeader() bool {
	return s.kind == KindRaw2352
}

// IsCDAudio reports if the sector is Red Book audio.
func (s *Sector) IsCDAudio() bool {
	return s.kind == KindCDAudio
}

// Mode returns the header mode byte (1 or 2), or 0 when unknown.
func (s *Sector) Mode() byte {
	return s.mode
}

// HasSubHeader reports if the sector carries an XA subheader.
func (s *Sector) HasSubHeader() bool {
	return s.subHeader != nil
}

// SubHeader returns a copy of the XA subheader and false if there is none.
func (s *Sector) SubHeader() (SubHeader, bool) {
	if s.subHeader == nil {
		return SubHeader{}, false
	}
	return *s.subHeader, true
}

// SubModeMask returns the subheader submode bits selected by mask, or 0
// when there is no subheader.
func (s *Sector) SubModeMask(mask SubMode) SubMode {
	if s.subHeader == nil {
		return 0
	}
	return s.subHeader.SubMode & mask
}

// Channel returns the subheader channel, or -1 when there is no subheader.
func (s *Sector) Channel() int {
	if s.subHeader == nil {
		return -1
	}
	return int(s.subHeader.Channel)
}

// File returns the subheader file number, or -1 when there is no subheader.
func (s *Sector) File() int {
	if s.subHeader == nil {
		return -1
	}
	return int(s.subHeader.File)
}

// CodingInfo returns the subheader coding info byte.
func (s *Sector) CodingInfo() CodingInfo {
	if s.subHeader == nil {
		return 0
	}
	return s.subHeader.CodingInfo
}

// UserDataSize returns the size of the user data area.
func (s *Sector) UserDataSize() int {
	return s.dataSize
}

// UserDataByte returns the user data byte at offset i.
func (s *Sector) UserDataByte(i int) byte {
	return s.data[s.dataStart+i]
}

// UserData returns the user data area. The slice aliases the sector buffer
// and must not be modified.
func (s *Sector) UserData() []byte {
	return s.data[s.dataStart : s.dataStart+s.dataSize : s.dataStart+s.dataSize]
}

// MSF returns the sector index as Minutes:Seconds:Frames.
func (s *Sector) MSF() string {
	return common.SectorToMSF(s.index)
}

func (s *Sector) String() string {
	if s.Invalid() {
		return fmt.Sprintf("[Sector:%d (%s) invalid: %s]", s.index, s.MSF(), s.problem)
	}
	if s.subHeader == nil {
		return fmt.Sprintf("[Sector:%d (%s) %s]", s.index, s.MSF(), s.kind)
	}
	return fmt.Sprintf("[Sector:%d (%s) %s File.Channel:%d.%d Submode:%02X]",
		s.index, s.MSF(), s.kind, s.subHeader.File, s.subHeader.Channel, byte(s.subHeader.SubMode))
}
