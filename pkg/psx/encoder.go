package psx

import (
	"bytes"
	"encoding/binary"
)

// EncodeMode2Sector builds a raw 2352-byte Mode 2 sector at lba with the
// subheader written twice and userData copied after it. The user data is
// truncated or zero padded to the size of the form selected by the
// subheader. EDC and ECC are left zeroed.
func EncodeMode2Sector(lba int, sh SubHeader, userData []byte) []byte {
	sync := CD_SYNC_PATTERN
	address := encodeAddress(lba)

	var subHeader [CD_SUBHEADER_SIZE]byte
	for i := 0; i < 2; i++ {
		subHeader[i*4] = sh.File
		subHeader[i*4+1] = sh.Channel
		subHeader[i*4+2] = byte(sh.SubMode)
		subHeader[i*4+3] = byte(sh.CodingInfo)
	}

	var sector interface{}
	if sh.SubMode.Has(SubModeForm) {
		s := &SectorM2F2{Sync: sync, Address: address, Mode: 2, SubHeader: subHeader}
		copy(s.Data[:], userData)
		sector = s
	} else {
		s := &SectorM2F1{Sync: sync, Address: address, Mode: 2, SubHeader: subHeader}
		copy(s.Data[:], userData)
		sector = s
	}

	var buf bytes.Buffer
	buf.Grow(CD_SECTOR_SIZE)
	// fixed-size arrays only, writing to a bytes.Buffer cannot fail
	_ = binary.Write(&buf, binary.LittleEndian, sector)
	return buf.Bytes()
}

// EncodeCodingInfo packs the XA audio format into a coding info byte.
func EncodeCodingInfo(sampleRate, bitsPerSample int, stereo bool) CodingInfo {
	var c CodingInfo
	if stereo {
		c |= 0x01
	}
	if sampleRate == 18900 {
		c |= 0x01 << 2
	}
	if bitsPerSample == 8 {
		c |= 0x01 << 4
	}
	return c
}

// encodeAddress returns the BCD minutes, seconds and frames of lba,
// including the 150 sector pregap.
func encodeAddress(lba int) [3]byte {
	total := lba + 150
	return [3]byte{
		toBCD(total / (60 * 75)),
		toBCD((total / 75) % 60),
		toBCD(total % 75),
	}
}

func toBCD(v int) byte {
	return byte((v/10)%10<<4 | v%10)
}
