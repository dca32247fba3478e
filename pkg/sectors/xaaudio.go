package sectors

import (
	"fmt"
	"strings"

	"github.com/hansbonini/psxstr/pkg/common"
	"github.com/hansbonini/psxstr/pkg/psx"
)

// XA ADPCM layout constants.
const (
	SoundGroupSize          = 128 // Bytes per sound group
	SoundGroupsPerSector    = 18  // Sound groups in one audio sector
	SoundParametersSize     = 16  // Duplicated parameter bytes opening each group
	UnusedTailSize          = 20  // Trailing bytes of the user data that carry no audio
	PCMSamplesPerSector4Bit = 4032
	PCMSamplesPerSector8Bit = 2016
)

// Disc speeds returned by DiscSpeed.
const (
	DiscSpeedInvalid = -1
	DiscSpeed1x      = 1 // 75 sectors/second
	DiscSpeed2x      = 2 // 150 sectors/second
)

// XAAudio is a CD-XA ADPCM audio sector.
type XAAudio struct {
	sector           *psx.Sector
	samplesPerSecond int
	bitsPerSample    int
	stereo           bool
	errors           int
}

// ClassifyXAAudio identifies s as an XA audio sector. The sound parameters
// are stored several times in each sound group; mismatching copies are
// counted as errors but do not reject the sector.
func ClassifyXAAudio(s *psx.Sector) (*XAAudio, bool) {
	if s == nil || s.Invalid() {
		return nil, false
	}
	if s.IsCDAudio() {
		return nil, false
	}
	if !s.HasRawHeader() {
		return nil, false
	}
	if s.SubModeMask(psx.SubModeForm|psx.SubModeAudio) != psx.SubModeForm|psx.SubModeAudio {
		return nil, false
	}
	// Ace Combat 3 has several "null" sectors on channel 255
	if s.Channel() < 0 || s.Channel() >= psx.CD_MAX_CHANNEL {
		return nil, false
	}

	ci := s.CodingInfo()
	xa := &XAAudio{
		sector:           s,
		samplesPerSecond: ci.SampleRate(),
		bitsPerSample:    ci.BitsPerSample(),
		stereo:           ci.Stereo(),
	}
	xa.errors = countParameterErrors(s, xa.bitsPerSample)

	if xa.errors > 0 {
		common.LogDebug(common.DebugXAParameters, s.Index(), xa.errors)
	}
	return xa, true
}

// countParameterErrors compares the copies of the sound parameters in every
// whole sound group of the sector.
func countParameterErrors(s *psx.Sector, bitsPerSample int) int {
	errors := 0
	last := s.UserDataSize() - SoundGroupSize
	for ofs := 0; ofs < last; ofs += SoundGroupSize {
		for i := 0; i < 4; i++ {
			if bitsPerSample == 4 {
				// 8 parameters, each stored twice:
				// 0,1,2,3, 0,1,2,3, 4,5,6,7, 4,5,6,7
				if s.UserDataByte(ofs+i) != s.UserDataByte(ofs+4+i) {
					errors++
				}
				if s.UserDataByte(ofs+8+i) != s.UserDataByte(ofs+12+i) {
					errors++
				}
			} else {
				// 4 parameters, each stored four times:
				// 0,1,2,3, 0,1,2,3, 0,1,2,3, 0,1,2,3
				for n := 1; n < 4; n++ {
					if s.UserDataByte(ofs+i) != s.UserDataByte(ofs+n*4+i) {
						errors++
					}
				}
			}
		}
	}
	return errors
}

func (x *XAAudio) Sector() *psx.Sector { return x.sector }
func (x *XAAudio) SectorIndex() int    { return x.sector.Index() }
func (x *XAAudio) Channel() int        { return x.sector.Channel() }
func (x *XAAudio) TypeName() string    { return "XA" }
func (x *XAAudio) ErrorCount() int     { return x.errors }
func (*XAAudio) isClassified()         {}

// SamplesPerSecond returns 37800 or 18900.
func (x *XAAudio) SamplesPerSecond() int {
	return x.samplesPerSecond
}

// BitsPerSample returns 4 or 8.
func (x *XAAudio) BitsPerSample() int {
	return x.bitsPerSample
}

// Stereo reports if the sector holds interleaved stereo.
func (x *XAAudio) Stereo() bool {
	return x.stereo
}

// IdentifiedUserDataSize returns the size of the audio payload. The last
// 20 bytes of the user data are unused.
func (x *XAAudio) IdentifiedUserDataSize() int {
	return x.sector.UserDataSize() - UnusedTailSize
}

// Payload returns the ADPCM sound groups of the sector.
func (x *XAAudio) Payload() []byte {
	return x.sector.UserData()[:x.IdentifiedUserDataSize()]
}

// SampleCount returns the number of PCM samples per channel the sector
// decodes to.
func (x *XAAudio) SampleCount() int {
	samples := PCMSamplesPerSector4Bit
	if x.bitsPerSample == 8 {
		samples = PCMSamplesPerSector8Bit
	}
	if x.stereo {
		return samples / 2
	}
	return samples
}

// IsAllQuiet reports if every ADPCM data byte is zero. ADPCM depends on the
// previous samples, so inside a stream the first couple of samples decoded
// from such a sector may still be audible; on its own it is pure silence.
func (x *XAAudio) IsAllQuiet() bool {
	for group := 0; group < SoundGroupsPerSector; group++ {
		base := group * SoundGroupSize
		for j := SoundParametersSize; j < SoundGroupSize; j++ {
			if x.sector.UserDataByte(base+j) != 0 {
				return false
			}
		}
	}
	return true
}

// DiscSpeedFrom returns the disc speed implied by the distance between
// previous and x, or DiscSpeedInvalid.
func (x *XAAudio) DiscSpeedFrom(previous *XAAudio) int {
	return DiscSpeed(x.samplesPerSecond, x.stereo, x.SectorIndex()-previous.SectorIndex())
}

// MatchesPrevious reports if x continues the XA stream previous belongs to:
// same channel and format, at a sector stride that gives a valid disc speed.
func (x *XAAudio) MatchesPrevious(previous Classified) bool {
	prev, ok := previous.(*XAAudio)
	if !ok {
		return false
	}
	if x.Channel() != prev.Channel() ||
		x.bitsPerSample != prev.bitsPerSample ||
		x.samplesPerSecond != prev.samplesPerSecond ||
		x.stereo != prev.stereo {
		return false
	}
	return x.DiscSpeedFrom(prev) != DiscSpeedInvalid
}

func (x *XAAudio) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "XA Audio %s ", x.sector)
	if x.stereo {
		sb.WriteString("Stereo ")
	} else {
		sb.WriteString("Mono ")
	}
	fmt.Fprintf(&sb, "%d bits/sample %d samples/sec", x.bitsPerSample, x.samplesPerSecond)
	if x.errors > 0 {
		fmt.Fprintf(&sb, " {%d errors}", x.errors)
	}
	if x.IsAllQuiet() {
		sb.WriteString(" SILENT")
	}
	return sb.String()
}

// DiscSpeed infers the drive speed from the audio format and the number of
// sectors between two sectors of the same stream:
//
//	speed * 4032 = samples/sec * (stereo ? 2 : 1) * stride
//
// It returns DiscSpeed1x (75 sectors/sec), DiscSpeed2x (150 sectors/sec) or
// DiscSpeedInvalid.
//
//	Samples/sec  Channels  Stride  Speed
//	  18900         1        16     1x
//	  18900         1        32     2x
//	  18900         2         8     1x
//	  18900         2        16     2x
//	  37800         1         8     1x
//	  37800         1        16     2x
//	  37800         2         4     1x
//	  37800         2         8     2x
func DiscSpeed(samplesPerSecond int, stereo bool, stride int) int {
	if stride < 1 {
		return DiscSpeedInvalid
	}

	channels := 1
	if stereo {
		channels = 2
	}
	switch samplesPerSecond * channels * stride {
	case 75 * 4032:
		return DiscSpeed1x
	case 150 * 4032:
		return DiscSpeed2x
	default:
		return DiscSpeedInvalid
	}
}
