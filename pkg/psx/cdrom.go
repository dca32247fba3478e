// Package psx provides PlayStation-specific structures and functionality.
// This file contains CD-ROM related structures for PlayStation disc images.
package psx

// Sector size constants for PlayStation CD-ROM
const (
	CD_SECTOR_SIZE       = 2352 // Full CD sector size
	CD_DATA_SIZE         = 2048 // Data portion of Mode 1 / Mode 2 Form 1 sector
	CD_XA_DATA_SIZE      = 2336 // Mode 2 sector without sync and header
	CD_FORM2_DATA_SIZE   = 2324 // Data portion of Mode 2 Form 2 sector
	CD_SYNC_SIZE         = 12   // Sync pattern size
	CD_HEADER_SIZE       = 4    // Header size (3 address bytes + 1 mode byte)
	CD_SUBHEADER_SIZE    = 8    // XA subheader size (4 bytes, repeated)
	CD_MODE1_DATA_OFFSET = CD_SYNC_SIZE + CD_HEADER_SIZE
	CD_MODE2_DATA_OFFSET = CD_SYNC_SIZE + CD_HEADER_SIZE + CD_SUBHEADER_SIZE
	CD_XA_DATA_OFFSET    = CD_SUBHEADER_SIZE
	CD_SUBHEADER_OFFSET  = CD_SYNC_SIZE + CD_HEADER_SIZE
	CD_MAX_CHANNEL       = 32 // Channels 0-31 are valid for interleaved streams
)

// Sync pattern that opens every raw data sector.
var CD_SYNC_PATTERN = [CD_SYNC_SIZE]byte{
	0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00,
}

// SubMode flags stored in the third byte of the XA subheader.
type SubMode byte

const (
	SubModeEndOfRecord SubMode = 0x01
	SubModeVideo       SubMode = 0x02
	SubModeAudio       SubMode = 0x04
	SubModeData        SubMode = 0x08
	SubModeTrigger     SubMode = 0x10
	SubModeForm        SubMode = 0x20 // Set for Form 2
	SubModeRealTime    SubMode = 0x40
	SubModeEndOfFile   SubMode = 0x80
)

// Has reports if every bit in mask is set.
func (m SubMode) Has(mask SubMode) bool {
	return m&mask == mask
}

// CodingInfo is the fourth byte of the XA subheader. For audio sectors it
// describes the ADPCM format.
type CodingInfo byte

// Stereo reports if the audio is interleaved stereo.
func (c CodingInfo) Stereo() bool {
	return c&0x03 == 0x01
}

// SampleRate returns 37800 or 18900.
func (c CodingInfo) SampleRate() int {
	if (c>>2)&0x03 == 0x01 {
		return 18900
	}
	return 37800
}

// BitsPerSample returns 4 or 8.
func (c CodingInfo) BitsPerSample() int {
	if (c>>4)&0x03 == 0x01 {
		return 8
	}
	return 4
}

// Emphasis reports if the audio was recorded with emphasis.
func (c CodingInfo) Emphasis() bool {
	return c&0x40 != 0
}

// SubHeader is the XA subheader present in Mode 2 sectors.
type SubHeader struct {
	File       byte       // File number
	Channel    byte       // Channel number (interleave)
	SubMode    SubMode    // Sector role flags
	CodingInfo CodingInfo // Audio format for audio sectors
}

// SectorM2F1 represents a Mode 2 Form 1 sector (used in regular files and STR video)
type SectorM2F1 struct {
	Sync      [12]byte   // Sync pattern
	Address   [3]byte    // Sector address (MSF format)
	Mode      byte       // Mode (usually 2)
	SubHeader [8]byte    // XA subheader
	Data      [2048]byte // User data
	EDC       [4]byte    // Error Detection Code
	ECC       [276]byte  // Error Correction Code
}

// SectorM2F2 represents a Mode 2 Form 2 sector (used in XA audio)
type SectorM2F2 struct {
	Sync      [12]byte   // Sync pattern
	Address   [3]byte    // Sector address (MSF format)
	Mode      byte       // Mode (usually 2)
	SubHeader [8]byte    // XA subheader
	Data      [2324]byte // User data
	EDC       [4]byte    // Error Detection Code
}
