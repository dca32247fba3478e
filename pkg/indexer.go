// Package pkg provides the disc scanning pipeline for PlayStation CD images.
// This file contains the Indexer, which walks a disc image sector by sector
// and groups classified sectors into XA audio and STR video streams.
package pkg

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hansbonini/psxstr/pkg/bitstream"
	"github.com/hansbonini/psxstr/pkg/common"
	"github.com/hansbonini/psxstr/pkg/fps"
	"github.com/hansbonini/psxstr/pkg/psx"
	"github.com/hansbonini/psxstr/pkg/sectors"
)

// SectorSource provides sectors by absolute index. psx.CDReader implements it.
// A *common.Failure returned by ReadSector is kept as is.
type SectorSource interface {
	Sectors() int
	ReadSector(index int) (*psx.Sector, error)
}

// SectorCounts tallies sectors by classification.
type SectorCounts struct {
	XA      int `yaml:"xa"`
	Video   int `yaml:"video"`
	CDAudio int `yaml:"cdAudio"`
	Other   int `yaml:"other"`
	Invalid int `yaml:"invalid"`
}

// XAStream is a run of XA audio sectors on one channel sharing a format.
type XAStream struct {
	Channel          int  `yaml:"channel"`
	SamplesPerSecond int  `yaml:"samplesPerSecond"`
	BitsPerSample    int  `yaml:"bitsPerSample"`
	Stereo           bool `yaml:"stereo"`
	DiscSpeed        int  `yaml:"discSpeed"` // 1, 2, or 0 for a single-sector stream
	StartSector      int  `yaml:"startSector"`
	EndSector        int  `yaml:"endSector"`
	SectorCount      int  `yaml:"sectorCount"`
	SampleCount      int  `yaml:"sampleCount"`
	Errors           int  `yaml:"errors"`
	SilentSectors    int  `yaml:"silentSectors"`
}

// Summary returns the localized one-line description of the stream.
func (s *XAStream) Summary() string {
	channels := "mono"
	if s.Stereo {
		channels = "stereo"
	}
	speed := "?"
	if s.DiscSpeed > 0 {
		speed = fmt.Sprintf("%dx", s.DiscSpeed)
	}
	return common.NewMessage(common.MsgStreamSummaryXA,
		s.Channel, s.StartSector, s.EndSector, s.SamplesPerSecond, s.BitsPerSample, channels, speed).Localized()
}

// VideoStream is a run of STR video sectors on one channel.
type VideoStream struct {
	Channel            int   `yaml:"channel"`
	StartSector        int   `yaml:"startSector"`
	EndSector          int   `yaml:"endSector"`
	SectorCount        int   `yaml:"sectorCount"`
	FirstFrame         int   `yaml:"firstFrame"`
	LastFrame          int   `yaml:"lastFrame"`
	Width              int   `yaml:"width"`
	Height             int   `yaml:"height"`
	Frames             int   `yaml:"frames"`       // Frames whose chunks were all present
	HeaderErrors       int   `yaml:"headerErrors"` // Complete frames with a bad frame header
	SectorsPerFrame    []int `yaml:"sectorsPerFrame,flow"`
	AllSectorsPerFrame []int `yaml:"-"`

	observations []frameObservation
}

type frameObservation struct {
	sector int
	frame  int
}

// Summary returns the localized one-line description of the stream.
func (s *VideoStream) Summary() string {
	spf := "?"
	if len(s.SectorsPerFrame) > 0 {
		parts := make([]string, len(s.SectorsPerFrame))
		for i, v := range s.SectorsPerFrame {
			parts[i] = fmt.Sprint(v)
		}
		spf = strings.Join(parts, "/")
	}
	return common.NewMessage(common.MsgStreamSummaryVideo,
		s.Channel, s.StartSector, s.EndSector, s.FirstFrame, s.LastFrame, s.Width, s.Height, spf).Localized()
}

// ScanResult is everything the Indexer found on a disc image.
type ScanResult struct {
	Sectors      int               `yaml:"sectors"`
	Counts       SectorCounts      `yaml:"counts"`
	XAStreams    []*XAStream       `yaml:"xaStreams"`
	VideoStreams []*VideoStream    `yaml:"videoStreams"`
	Failures     []*common.Failure `yaml:"-"`
}

// Summary returns the localized totals line.
func (r *ScanResult) Summary() string {
	return common.NewMessage(common.MsgScanSummary, len(r.XAStreams), len(r.VideoStreams), len(r.Failures)).Localized()
}

// channelState is the scan state of one interleave channel.
type channelState struct {
	lastXA    *sectors.XAAudio
	xa        *XAStream
	lastVideo *sectors.Video
	video     *VideoStream
	chunks    []*sectors.Video
}

// Indexer scans a SectorSource in increasing sector order.
type Indexer struct {
	source  SectorSource
	sink    common.LogSink
	workers int

	channels map[int]*channelState
	result   *ScanResult
	frameBuf []byte
}

// NewIndexer creates an indexer over source. Failures are logged to
// common.StdLogSink; workers below 1 run the stream summaries sequentially.
func NewIndexer(source SectorSource, workers int) *Indexer {
	return &Indexer{
		source:  source,
		sink:    common.StdLogSink{},
		workers: workers,
	}
}

// SetLogSink replaces the sink failures are logged to.
func (ix *Indexer) SetLogSink(sink common.LogSink) {
	ix.sink = sink
}

// Scan classifies every sector and returns the streams found. Per-sector
// problems are collected in ScanResult.Failures and logged exactly once;
// only a cancelled context aborts the scan.
func (ix *Indexer) Scan(ctx context.Context) (*ScanResult, error) {
	ix.channels = make(map[int]*channelState)
	ix.result = &ScanResult{Sectors: ix.source.Sectors()}

	for i := 0; i < ix.result.Sectors; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := ix.source.ReadSector(i)
		if err != nil {
			ix.addFailure(common.AsFailure(err, common.NewMessage(common.MsgReadSectorFailed, i)))
			continue
		}
		if s.Invalid() {
			ix.result.Counts.Invalid++
			ix.addFailure(common.NewLoggedFailure(ix.sink, common.LevelWarn,
				common.NewMessage(common.MsgInvalidSector, i), errors.New(s.Problem())))
			continue
		}

		c := sectors.Classify(s)
		common.LogDebug(common.DebugSectorClassified, i, c.TypeName(), sectors.Describe(c))
		switch v := c.(type) {
		case *sectors.XAAudio:
			ix.result.Counts.XA++
			ix.addXA(v)
		case *sectors.Video:
			ix.result.Counts.Video++
			ix.addVideo(v)
		default:
			if s.IsCDAudio() {
				ix.result.Counts.CDAudio++
			} else {
				ix.result.Counts.Other++
			}
		}
	}

	for _, st := range ix.channels {
		ix.closeXA(st)
		ix.closeVideo(st)
	}

	if err := ix.summarizeVideo(ctx); err != nil {
		return nil, err
	}

	sort.Slice(ix.result.XAStreams, func(i, j int) bool {
		return ix.result.XAStreams[i].StartSector < ix.result.XAStreams[j].StartSector
	})
	sort.Slice(ix.result.VideoStreams, func(i, j int) bool {
		return ix.result.VideoStreams[i].StartSector < ix.result.VideoStreams[j].StartSector
	})

	for _, f := range ix.result.Failures {
		if !f.WasLogged() {
			f.Log(ix.sink)
		}
	}

	common.LogInfo(common.InfoScanComplete, len(ix.result.XAStreams), len(ix.result.VideoStreams), len(ix.result.Failures))
	return ix.result, nil
}

func (ix *Indexer) addFailure(f *common.Failure) {
	ix.result.Failures = append(ix.result.Failures, f)
}

func (ix *Indexer) channel(ch int) *channelState {
	st, ok := ix.channels[ch]
	if !ok {
		st = &channelState{}
		ix.channels[ch] = st
	}
	return st
}

func (ix *Indexer) addXA(xa *sectors.XAAudio) {
	st := ix.channel(xa.Channel())
	if n := xa.ErrorCount(); n > 0 {
		ix.addFailure(common.NewLoggedFailure(ix.sink, common.LevelWarn,
			common.NewMessage(common.MsgXAParameterErrors, n, xa.SectorIndex()), nil))
	}

	if st.lastXA != nil && xa.MatchesPrevious(st.lastXA) {
		stream := st.xa
		if stream.DiscSpeed == 0 {
			stream.DiscSpeed = xa.DiscSpeedFrom(st.lastXA)
		}
		stream.EndSector = xa.SectorIndex()
		ix.countXA(stream, xa)
		st.lastXA = xa
		return
	}

	ix.closeXA(st)
	st.xa = &XAStream{
		Channel:          xa.Channel(),
		SamplesPerSecond: xa.SamplesPerSecond(),
		BitsPerSample:    xa.BitsPerSample(),
		Stereo:           xa.Stereo(),
		StartSector:      xa.SectorIndex(),
		EndSector:        xa.SectorIndex(),
	}
	ix.countXA(st.xa, xa)
	st.lastXA = xa
	common.LogDebug(common.DebugXAStreamOpened, xa.Channel(), xa.SectorIndex())
}

func (ix *Indexer) countXA(stream *XAStream, xa *sectors.XAAudio) {
	stream.SectorCount++
	stream.SampleCount += xa.SampleCount()
	stream.Errors += xa.ErrorCount()
	if xa.IsAllQuiet() {
		stream.SilentSectors++
	}
}

func (ix *Indexer) closeXA(st *channelState) {
	if st.xa == nil {
		return
	}
	common.LogDebug(common.DebugXAStreamClosed, st.xa.Channel, st.xa.EndSector, st.xa.SectorCount)
	ix.result.XAStreams = append(ix.result.XAStreams, st.xa)
	st.xa = nil
	st.lastXA = nil
}

func (ix *Indexer) addVideo(v *sectors.Video) {
	st := ix.channel(v.Channel())

	if st.lastVideo == nil || !v.MatchesPrevious(st.lastVideo) {
		ix.closeVideo(st)
		st.video = &VideoStream{
			Channel:     v.Channel(),
			StartSector: v.SectorIndex(),
			FirstFrame:  v.FrameNumber(),
			Width:       v.Width(),
			Height:      v.Height(),
		}
	}

	stream := st.video
	if st.lastVideo == nil || v.FrameNumber() != st.lastVideo.FrameNumber() {
		ix.flushFrame(st)
		common.LogDebug(common.DebugVideoFrame, v.Channel(), v.FrameNumber(), v.SectorIndex())
	}
	stream.EndSector = v.SectorIndex()
	stream.LastFrame = v.FrameNumber()
	stream.SectorCount++
	stream.observations = append(stream.observations, frameObservation{
		sector: v.SectorIndex() - stream.StartSector,
		frame:  v.FrameNumber(),
	})

	st.chunks = append(st.chunks, v)
	st.lastVideo = v
	if len(st.chunks) == v.ChunkCount() {
		ix.flushFrame(st)
	}
}

// flushFrame assembles the buffered chunks of the current frame when all of
// them were seen and checks the demuxed frame header.
func (ix *Indexer) flushFrame(st *channelState) {
	chunks := st.chunks
	st.chunks = st.chunks[:0]
	if len(chunks) == 0 || st.video == nil || len(chunks) != chunks[0].ChunkCount() {
		return
	}

	need := 0
	for _, c := range chunks {
		need += len(c.Payload())
	}
	if cap(ix.frameBuf) < need {
		ix.frameBuf = make([]byte, need)
	}
	n, err := sectors.AssembleFrame(chunks, ix.frameBuf[:need])
	if err == nil {
		_, err = bitstream.ReadFrameHeader(ix.frameBuf[:n])
	}
	if err != nil {
		st.video.HeaderErrors++
		common.LogDebug(common.DebugSectorRejected, chunks[0].SectorIndex(), "a frame start", err)
		return
	}
	st.video.Frames++
}

func (ix *Indexer) closeVideo(st *channelState) {
	if st.video == nil {
		return
	}
	ix.flushFrame(st)
	ix.result.VideoStreams = append(ix.result.VideoStreams, st.video)
	st.video = nil
	st.lastVideo = nil
}

// summarizeVideo runs the frame cadence detector over every video stream.
// Streams share no state, so they are processed by up to ix.workers
// goroutines.
func (ix *Indexer) summarizeVideo(ctx context.Context) error {
	streams := ix.result.VideoStreams
	failures := make([][]*common.Failure, len(streams))

	workers := ix.workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, stream := range streams {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		}
		wg.Add(1)
		go func(i int, stream *VideoStream) {
			defer wg.Done()
			defer func() { <-sem }()
			failures[i] = detectCadence(stream)
		}(i, stream)
	}
	wg.Wait()

	for _, fs := range failures {
		ix.result.Failures = append(ix.result.Failures, fs...)
	}
	return nil
}

// detectCadence feeds the stream's observations to a fresh detector and
// stores the candidate sectors/frame. Observations are relative to the
// first sector of the stream.
func detectCadence(stream *VideoStream) []*common.Failure {
	obs := stream.observations
	stream.observations = nil
	if len(obs) == 0 {
		return nil
	}

	var failures []*common.Failure
	d, err := fps.NewDetector(obs[0].sector, obs[0].frame)
	if err != nil {
		return []*common.Failure{common.NewFailure(common.LevelWarn,
			common.NewMessage(common.MsgCadenceRejected, stream.Channel, stream.StartSector+obs[0].sector, obs[0].frame), err)}
	}
	for _, o := range obs[1:] {
		if _, err := d.Observe(o.sector, o.frame); err != nil {
			failures = append(failures, common.NewFailure(common.LevelWarn,
				common.NewMessage(common.MsgCadenceRejected, stream.Channel, stream.StartSector+o.sector, o.frame), err))
		}
	}

	stream.SectorsPerFrame = d.PossibleSectorsPerFrame()
	stream.AllSectorsPerFrame = d.AllPossibleSectorsPerFrame()
	if d.Exhausted() {
		failures = append(failures, common.NewFailure(common.LevelWarn,
			common.NewMessage(common.MsgCadenceExhausted, stream.Channel), nil))
	} else if stream.SectorsPerFrame != nil {
		common.LogDebug(common.DebugCadenceResolved, stream.Channel, stream.SectorsPerFrame)
	}
	return failures
}
