package psx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hansbonini/psxstr/pkg/common"
)

// Track is one TRACK entry of a cue sheet
type Track struct {
	Number int
	Audio  bool
	Start  int // First sector, including the INDEX 00 pregap when present
}

// LoadCueSheet reads the tracks of the cue sheet at path.
func LoadCueSheet(path string) ([]Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tracks, err := ParseCueSheet(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tracks, nil
}

// ParseCueSheet reads the tracks of a cue sheet describing a single BINARY
// file. Only FILE, TRACK and INDEX lines are interpreted.
func ParseCueSheet(r io.Reader) ([]Track, error) {
	var tracks []Track
	files := 0
	line := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "FILE":
			files++
			if files > 1 {
				return nil, fmt.Errorf("%s: line %d: more than one FILE", common.ErrUnsupportedCueSheet, line)
			}
		case "TRACK":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%s: line %d: malformed TRACK", common.ErrUnsupportedCueSheet, line)
			}
			number, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%s: line %d: %w", common.ErrUnsupportedCueSheet, line, err)
			}
			tracks = append(tracks, Track{
				Number: number,
				Audio:  strings.EqualFold(fields[2], "AUDIO"),
				Start:  -1,
			})
		case "INDEX":
			if len(tracks) == 0 || len(fields) < 3 {
				return nil, fmt.Errorf("%s: line %d: INDEX outside a TRACK", common.ErrUnsupportedCueSheet, line)
			}
			sector, err := parseCueTime(fields[2])
			if err != nil {
				return nil, fmt.Errorf("%s: line %d: %w", common.ErrUnsupportedCueSheet, line, err)
			}
			// INDEX 00 (pregap) precedes INDEX 01, so the first one wins
			if t := &tracks[len(tracks)-1]; t.Start < 0 {
				t.Start = sector
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, t := range tracks {
		if t.Start < 0 {
			return nil, fmt.Errorf("%s: track %d has no INDEX", common.ErrUnsupportedCueSheet, t.Number)
		}
	}
	return tracks, nil
}

// parseCueTime converts a cue sheet mm:ss:ff position, relative to the
// start of the file, to a sector number.
func parseCueTime(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad time %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("bad time %q", s)
		}
		v[i] = n
	}
	if v[1] >= 60 || v[2] >= common.SectorsPerSecond1x {
		return 0, fmt.Errorf("bad time %q", s)
	}
	return (v[0]*60+v[1])*common.SectorsPerSecond1x + v[2], nil
}

// SetTracks marks the sectors of audio tracks so ReadSector returns them as
// CD audio. A track runs up to the start of the next one. Audio tracks are
// only possible in raw 2352-byte images.
func (r *CDReader) SetTracks(tracks []Track) error {
	sorted := make([]Track, len(tracks))
	copy(sorted, tracks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for _, t := range sorted {
		if t.Audio && r.sectorSize != CD_SECTOR_SIZE {
			return fmt.Errorf("%s: track %d is CD audio in an image of %d-byte sectors",
				common.ErrUnsupportedCueSheet, t.Number, r.sectorSize)
		}
	}
	r.tracks = sorted
	return nil
}

// isAudio reports if lba lies in an audio track.
func (r *CDReader) isAudio(lba int) bool {
	i := sort.Search(len(r.tracks), func(i int) bool { return r.tracks[i].Start > lba })
	return i > 0 && r.tracks[i-1].Audio
}
