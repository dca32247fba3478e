// Package bitstream reads arbitrary-width bit fields from demuxed video
// frames.
package bitstream

import (
	"fmt"

	"github.com/hansbonini/psxstr/pkg/common"
)

// MaxBits is the widest field a single read may return.
const MaxBits = 31

// Reader reads bits MSB first from a byte buffer, one 16-bit word at a time.
//
// Endianness only selects the byte order inside each 16-bit word; bits are
// always consumed from the most significant end of the word. The buffer is
// borrowed and must outlive the Reader. A Reader is not safe for concurrent
// use.
type Reader struct {
	data         []byte // Borrowed source buffer
	littleEndian bool   // Byte order of each 16-bit word
	offset       int    // Offset of the current word in data
	word         uint16 // Current word value
	bitsLeft     int    // Unread bits in word (0-16)
}

// NewReader creates a Reader positioned at start.
func NewReader(data []byte, littleEndian bool, start int) (*Reader, error) {
	r := &Reader{}
	if err := r.Reset(data, littleEndian, start); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset points the reader at a new buffer so it can be reused without
// allocating. start must be even. The first word is fetched immediately.
func (r *Reader) Reset(data []byte, littleEndian bool, start int) error {
	if start&1 != 0 || start < 0 {
		return fmt.Errorf("%w: %s (offset %d)", common.ErrInvalidArgument, common.ErrOddReadStart, start)
	}
	word, ok := wordAt(data, littleEndian, start)
	if !ok {
		return fmt.Errorf("%w: no word at offset %d of %d bytes", common.ErrEndOfStream, start, len(data))
	}
	r.data = data
	r.littleEndian = littleEndian
	r.offset = start
	r.word = word
	r.bitsLeft = 16
	return nil
}

// wordAt reads the 16-bit word at offset i in the requested byte order.
func wordAt(data []byte, littleEndian bool, i int) (uint16, bool) {
	if i < 0 || i+1 >= len(data) {
		return 0, false
	}
	if littleEndian {
		return uint16(data[i]) | uint16(data[i+1])<<8, true
	}
	return uint16(data[i])<<8 | uint16(data[i+1]), true
}

// Position returns the offset of the word currently being read.
func (r *Reader) Position() int {
	return r.offset
}

// LittleEndian reports the byte order of the words.
func (r *Reader) LittleEndian() bool {
	return r.littleEndian
}

// ReadUnsignedBits reads count bits (0-31).
//
// If the buffer ends after at least one word of the read was obtained, the
// bits read so far are returned shifted left by the number of bits that
// could not be read, and no error is reported. The next read then fails
// with common.ErrEndOfStream without moving the cursor.
func (r *Reader) ReadUnsignedBits(count int) (uint32, error) {
	if err := checkCount(count); err != nil {
		return 0, err
	}

	// the next word is only fetched when it is needed so nothing beyond
	// the buffer is touched
	if r.bitsLeft == 0 {
		word, ok := wordAt(r.data, r.littleEndian, r.offset+2)
		if !ok {
			return 0, common.ErrEndOfStream
		}
		r.offset += 2
		r.word = word
		r.bitsLeft = 16
	}

	if count <= r.bitsLeft {
		ret := (uint32(r.word) >> uint(r.bitsLeft-count)) & mask(count)
		r.bitsLeft -= count
		return ret, nil
	}

	ret := uint32(r.word) & mask(r.bitsLeft)
	count -= r.bitsLeft
	r.bitsLeft = 0

	for count >= 16 {
		word, ok := wordAt(r.data, r.littleEndian, r.offset+2)
		if !ok {
			return ret << uint(count), nil
		}
		r.offset += 2
		ret = ret<<16 | uint32(word)
		count -= 16
	}

	if count > 0 {
		word, ok := wordAt(r.data, r.littleEndian, r.offset+2)
		if !ok {
			return ret << uint(count), nil
		}
		r.offset += 2
		r.word = word
		r.bitsLeft = 16 - count
		ret = ret<<uint(count) | uint32(word)>>uint(r.bitsLeft)
	}

	return ret, nil
}

// ReadSignedBits reads count bits and sign extends them from bit count-1.
func (r *Reader) ReadSignedBits(count int) (int32, error) {
	v, err := r.ReadUnsignedBits(count)
	if err != nil {
		return 0, err
	}
	return signExtend(v, count), nil
}

// PeekUnsignedBits returns the next count bits without consuming them.
func (r *Reader) PeekUnsignedBits(count int) (uint32, error) {
	saved := *r
	defer func() { *r = saved }()
	return r.ReadUnsignedBits(count)
}

// PeekSignedBits returns the next count bits, sign extended, without
// consuming them.
func (r *Reader) PeekSignedBits(count int) (int32, error) {
	v, err := r.PeekUnsignedBits(count)
	if err != nil {
		return 0, err
	}
	return signExtend(v, count), nil
}

// SkipBits advances the cursor by count bits. count is not limited to 31.
// When the landing word lies outside the buffer common.ErrEndOfStream is
// returned and the cursor is left where it was.
func (r *Reader) SkipBits(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: skip of %d bits", common.ErrInvalidArgument, count)
	}

	bitsLeft := r.bitsLeft - count
	if bitsLeft >= 0 {
		r.bitsLeft = bitsLeft
		return nil
	}

	offset := r.offset
	for bitsLeft < 0 {
		offset += 2
		bitsLeft += 16
	}
	if bitsLeft > 0 {
		word, ok := wordAt(r.data, r.littleEndian, offset)
		if !ok {
			return common.ErrEndOfStream
		}
		r.word = word
	}
	r.offset = offset
	r.bitsLeft = bitsLeft
	return nil
}

// BitsRemaining returns the number of unread bits up to the end of the buffer.
func (r *Reader) BitsRemaining() int {
	return (len(r.data)-r.offset)*8 - (16 - r.bitsLeft)
}

// PeekBitsToString returns the next count bits as '0' and '1' characters
// without consuming them. Near the end of the stream only the remaining bits
// are returned.
func (r *Reader) PeekBitsToString(count int) (string, error) {
	count = r.clip(count)
	v, err := r.PeekUnsignedBits(count)
	if err != nil {
		return "", err
	}
	return common.BitsToString(uint64(v), count), nil
}

// ReadBitsToString reads count bits as '0' and '1' characters. Near the end
// of the stream only the remaining bits are returned.
func (r *Reader) ReadBitsToString(count int) (string, error) {
	count = r.clip(count)
	v, err := r.ReadUnsignedBits(count)
	if err != nil {
		return "", err
	}
	return common.BitsToString(uint64(v), count), nil
}

func (r *Reader) clip(count int) int {
	if remaining := r.BitsRemaining(); remaining < count {
		if remaining < 0 {
			return 0
		}
		return remaining
	}
	return count
}

func checkCount(count int) error {
	if count < 0 || count > MaxBits {
		return fmt.Errorf("%w: %s (got %d)", common.ErrInvalidArgument, common.ErrBitCountOutOfRange, count)
	}
	return nil
}

func mask(count int) uint32 {
	return uint32(1)<<uint(count) - 1
}

func signExtend(v uint32, count int) int32 {
	if count == 0 {
		return 0
	}
	shift := uint(32 - count)
	return int32(v<<shift) >> shift
}
