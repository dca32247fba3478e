package bitstream

import (
	"fmt"

	"github.com/hansbonini/psxstr/pkg/common"
)

// FrameHeaderMagic is the constant second word of a demuxed STR frame.
const FrameHeaderMagic = 0x3800

// FrameHeader is the 8-byte header at the start of a demuxed STR frame
// (versions 1 to 3). The compressed macroblock data follows it.
type FrameHeader struct {
	RunLengthCodes int // Half the number of run-length codes in the frame
	Magic          int
	QuantScale     int
	Version        int
}

// ReadFrameHeader reads the header of a demuxed frame. The header words are
// always little-endian.
func ReadFrameHeader(frame []byte) (FrameHeader, error) {
	r, err := NewReader(frame, true, 0)
	if err != nil {
		return FrameHeader{}, err
	}

	var fields [4]int
	for i := range fields {
		v, err := r.ReadUnsignedBits(16)
		if err != nil {
			return FrameHeader{}, err
		}
		fields[i] = int(v)
	}

	h := FrameHeader{
		RunLengthCodes: fields[0],
		Magic:          fields[1],
		QuantScale:     fields[2],
		Version:        fields[3],
	}
	if h.Magic != FrameHeaderMagic {
		return h, fmt.Errorf("%w: frame header magic %04X", common.ErrStructuralMismatch, h.Magic)
	}
	if h.Version < 1 || h.Version > 3 {
		return h, fmt.Errorf("%w: frame version %d", common.ErrStructuralMismatch, h.Version)
	}
	return h, nil
}
