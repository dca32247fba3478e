package sectors

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/hansbonini/psxstr/pkg/common"
	"github.com/hansbonini/psxstr/pkg/psx"
)

// STR video sector header layout. All fields are little-endian.
const (
	VideoHeaderSize   = 32
	VideoMagic1       = 0x0160
	VideoMagic2       = 0x8001
	VideoMaxChunks    = 512
	VideoMaxWidth     = 640
	VideoMaxHeight    = 512
	videoOffMagic1    = 0
	videoOffMagic2    = 2
	videoOffChunk     = 4
	videoOffCount     = 6
	videoOffFrame     = 8
	videoOffDemuxSize = 12
	videoOffWidth     = 16
	videoOffHeight    = 18
	videoOffRLECodes  = 20
	videoOffQuant     = 24
	videoOffVersion   = 26
)

// errNotVideo marks sectors rejected before the header magic was seen.
var errNotVideo = fmt.Errorf("%w: not a video sector", common.ErrStructuralMismatch)

// Video is one chunk of an STR video frame.
type Video struct {
	sector      *psx.Sector
	channel     int
	chunkNumber int
	chunkCount  int
	frameNumber int
	demuxSize   int
	width       int
	height      int
	rleCodes    int
	quantScale  int
	version     int
}

// ClassifyVideo identifies s as an STR video sector.
func ClassifyVideo(s *psx.Sector) (*Video, bool) {
	v, err := parseVideo(s)
	if err != nil {
		if !errors.Is(err, errNotVideo) {
			common.LogDebug(common.DebugSectorRejected, s.Index(), "video", err)
		}
		return nil, false
	}
	return v, true
}

func parseVideo(s *psx.Sector) (*Video, error) {
	if s == nil || s.Invalid() || s.IsCDAudio() {
		return nil, errNotVideo
	}
	if s.UserDataSize() < VideoHeaderSize {
		return nil, errNotVideo
	}

	channel := 0
	if s.HasSubHeader() {
		// Video is always stored in Form 1 data or video sectors
		if s.SubModeMask(psx.SubModeForm|psx.SubModeAudio) != 0 ||
			s.SubModeMask(psx.SubModeData|psx.SubModeVideo) == 0 {
			return nil, errNotVideo
		}
		channel = s.Channel()
	}

	h := s.UserData()[:VideoHeaderSize]
	if binary.LittleEndian.Uint16(h[videoOffMagic1:]) != VideoMagic1 ||
		binary.LittleEndian.Uint16(h[videoOffMagic2:]) != VideoMagic2 {
		return nil, errNotVideo
	}

	v := &Video{
		sector:      s,
		channel:     channel,
		chunkNumber: int(binary.LittleEndian.Uint16(h[videoOffChunk:])),
		chunkCount:  int(binary.LittleEndian.Uint16(h[videoOffCount:])),
		frameNumber: int(binary.LittleEndian.Uint32(h[videoOffFrame:])),
		demuxSize:   int(binary.LittleEndian.Uint32(h[videoOffDemuxSize:])),
		width:       int(binary.LittleEndian.Uint16(h[videoOffWidth:])),
		height:      int(binary.LittleEndian.Uint16(h[videoOffHeight:])),
		rleCodes:    int(binary.LittleEndian.Uint16(h[videoOffRLECodes:])),
		quantScale:  int(binary.LittleEndian.Uint16(h[videoOffQuant:])),
		version:     int(binary.LittleEndian.Uint16(h[videoOffVersion:])),
	}

	switch {
	case channel >= psx.CD_MAX_CHANNEL:
		return nil, fmt.Errorf("%w: channel %d", common.ErrStructuralMismatch, channel)
	case v.chunkCount < 1 || v.chunkCount > VideoMaxChunks:
		return nil, fmt.Errorf("%w: chunk count %d", common.ErrStructuralMismatch, v.chunkCount)
	case v.chunkNumber >= v.chunkCount:
		return nil, fmt.Errorf("%w: chunk %d of %d", common.ErrStructuralMismatch, v.chunkNumber, v.chunkCount)
	case v.frameNumber < 1:
		return nil, fmt.Errorf("%w: frame %d", common.ErrStructuralMismatch, v.frameNumber)
	case v.width < 1 || v.width > VideoMaxWidth || v.height < 1 || v.height > VideoMaxHeight:
		return nil, fmt.Errorf("%w: dimensions %dx%d", common.ErrStructuralMismatch, v.width, v.height)
	}
	return v, nil
}

func (v *Video) Sector() *psx.Sector { return v.sector }
func (v *Video) SectorIndex() int    { return v.sector.Index() }
func (v *Video) Channel() int        { return v.channel }
func (v *Video) TypeName() string    { return "Video" }
func (v *Video) ErrorCount() int     { return 0 }
func (*Video) isClassified()         {}

// FrameNumber returns the 1-based frame this chunk belongs to.
func (v *Video) FrameNumber() int { return v.frameNumber }

// ChunkNumber returns the 0-based position of this chunk in its frame.
func (v *Video) ChunkNumber() int { return v.chunkNumber }

// ChunkCount returns the number of chunks in the frame.
func (v *Video) ChunkCount() int { return v.chunkCount }

func (v *Video) Width() int      { return v.width }
func (v *Video) Height() int     { return v.height }
func (v *Video) QuantScale() int { return v.quantScale }
func (v *Video) Version() int    { return v.version }

// DemuxSize returns the size of the whole demuxed frame in bytes.
func (v *Video) DemuxSize() int { return v.demuxSize }

// Payload returns the chunk data following the header.
func (v *Video) Payload() []byte {
	return v.sector.UserData()[VideoHeaderSize:]
}

// MatchesPrevious reports if v continues the video stream previous belongs
// to: same channel and dimensions, and the frame number does not go back.
func (v *Video) MatchesPrevious(previous Classified) bool {
	prev, ok := previous.(*Video)
	if !ok {
		return false
	}
	return v.channel == prev.channel &&
		v.width == prev.width &&
		v.height == prev.height &&
		v.frameNumber >= prev.frameNumber
}

func (v *Video) String() string {
	return fmt.Sprintf("Video %s frame:%d chunk:%d/%d %dx%d {demux frame size=%d rle=%d qscale=%d ver=%d}",
		v.sector, v.frameNumber, v.chunkNumber, v.chunkCount, v.width, v.height,
		v.demuxSize, v.rleCodes, v.quantScale, v.version)
}

// AssembleFrame copies the payloads of chunks into buf ordered by chunk
// number and returns the number of demuxed bytes. All chunks must belong to
// the same frame. The result is clipped to the demux size in the headers.
func AssembleFrame(chunks []*Video, buf []byte) (int, error) {
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no chunks", common.ErrInvalidArgument)
	}
	ordered := make([]*Video, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].chunkNumber < ordered[j].chunkNumber
	})

	frame := ordered[0].frameNumber
	total := 0
	for _, c := range ordered {
		if c.frameNumber != frame {
			return 0, fmt.Errorf("%w: chunk from frame %d mixed with frame %d",
				common.ErrInvalidArgument, c.frameNumber, frame)
		}
		total += len(c.Payload())
	}
	demux := ordered[0].demuxSize
	if demux > 0 && demux < total {
		total = demux
	}
	if len(buf) < total {
		return 0, common.FormatError(common.ErrFrameBufferTooSmall,
			fmt.Errorf("%w: need %d bytes, have %d", common.ErrInvalidArgument, total, len(buf)))
	}

	pos := 0
	for _, c := range ordered {
		if pos >= total {
			break
		}
		pos += copy(buf[pos:total], c.Payload())
	}
	return pos, nil
}
