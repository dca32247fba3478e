// Package fps infers the whole-number sectors/frame cadence of STR movies
// from the frame number of each video sector.
//
// The idea is to find which sector intervals would land on every gap between
// frames. Each new frame narrows the possibilities down until very few
// remain. At least 3 frames are needed before a guess can be made, which is
// fine: with fewer frames the frame rate hardly matters. Movies whose rate
// changes are handled as long as one interval still fits every gap.
package fps

import (
	"fmt"
	"sort"

	"github.com/hansbonini/psxstr/pkg/common"
)

// Detector tracks the possible sectors/frame of one video stream. Sectors
// must be fed in increasing order; a Detector is not safe for concurrent use.
type Detector struct {
	currentFrame   int
	previousSector int

	// nil before the 2nd frame, empty once every possibility was ruled out
	starts []*startHypothesis
}

// startHypothesis assumes the 2nd frame began at a particular sector.
type startHypothesis struct {
	frame2Start int
	// nil before the first gap between frames, sorted ascending otherwise
	sectorsPerFrame []int
}

// NewDetector starts tracking a stream whose first video sector is sector,
// belonging to frame.
func NewDetector(sector, frame int) (*Detector, error) {
	if sector < 0 || frame < 0 {
		return nil, fmt.Errorf("%w: %s (sector %d, frame %d)", common.ErrInvalidArgument, common.ErrNegativeSeed, sector, frame)
	}
	return &Detector{currentFrame: frame, previousSector: sector}, nil
}

// Observe feeds the next video sector and its frame number. It returns true
// while some sectors/frame other than 1 is still possible.
func (d *Detector) Observe(sector, frame int) (bool, error) {
	if sector <= d.previousSector {
		return false, fmt.Errorf("%w: %s (%d after %d)", common.ErrInvalidArgument, common.ErrSectorsNotIncreasing, sector, d.previousSector)
	}
	if frame < d.currentFrame {
		return false, fmt.Errorf("%w: %s (%d after %d)", common.ErrInvalidArgument, common.ErrFramesDecreasing, frame, d.currentFrame)
	}

	var possible bool
	switch {
	case d.starts == nil:
		if frame != d.currentFrame {
			// the 2nd frame could have started on any sector after the
			// last sector of the 1st frame
			d.starts = make([]*startHypothesis, 0, sector-d.previousSector)
			for start := d.previousSector + 1; start <= sector; start++ {
				d.starts = append(d.starts, &startHypothesis{frame2Start: start})
			}
		}
		possible = true
	case len(d.starts) == 0:
		possible = false
	case frame == d.currentFrame:
		possible = true
	default:
		survivors := d.starts[:0]
		for _, h := range d.starts {
			if h.update(d.previousSector, sector) {
				survivors = append(survivors, h)
				possible = true
			}
		}
		for i := len(survivors); i < len(d.starts); i++ {
			d.starts[i] = nil
		}
		d.starts = survivors
	}

	d.currentFrame = frame
	d.previousSector = sector
	return possible, nil
}

// Seeded reports if a 2nd frame has been seen.
func (d *Detector) Seeded() bool {
	return d.starts != nil
}

// Exhausted reports if every sectors/frame possibility was ruled out.
func (d *Detector) Exhausted() bool {
	return d.starts != nil && len(d.starts) == 0
}

// PossibleSectorsPerFrame returns the intervals that fit every frame seen
// so far, in ascending order, without the values that are factors of other
// values. Hopefully only one is left; when several remain the largest is
// usually the right one. It returns nil before the 2nd frame and [1] once
// nothing fits.
func (d *Detector) PossibleSectorsPerFrame() []int {
	if d.starts == nil {
		return nil
	}
	if len(d.starts) == 0 {
		return []int{1}
	}
	return nilIfEmpty(removeFactors(d.combined()))
}

// AllPossibleSectorsPerFrame is like PossibleSectorsPerFrame but keeps
// values that are factors of others.
func (d *Detector) AllPossibleSectorsPerFrame() []int {
	if d.starts == nil {
		return nil
	}
	if len(d.starts) == 0 {
		return []int{1}
	}
	return nilIfEmpty(d.combined())
}

// combined merges the possibilities of every start into one sorted set.
func (d *Detector) combined() []int {
	seen := make(map[int]struct{})
	var all []int
	for _, h := range d.starts {
		for _, n := range h.sectorsPerFrame {
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				all = append(all, n)
			}
		}
	}
	sort.Ints(all)
	return all
}

// removeFactors drops every value that evenly divides a larger value in the
// sorted input.
func removeFactors(sorted []int) []int {
	var kept []int
	for i, n := range sorted {
		factor := false
		for _, larger := range sorted[i+1:] {
			if larger%n == 0 {
				factor = true
				break
			}
		}
		if !factor {
			kept = append(kept, n)
		}
	}
	return kept
}

func nilIfEmpty(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	return values
}

// update narrows the possibilities with another gap between frames. It
// returns false once no possibility is left.
func (h *startHypothesis) update(lastSectorOfPreviousFrame, firstSectorOfNewFrame int) bool {
	gapStart := lastSectorOfPreviousFrame + 1 - h.frame2Start
	gapEnd := firstSectorOfNewFrame - h.frame2Start

	if h.sectorsPerFrame == nil {
		h.sectorsPerFrame = make([]int, 0)
		for n := 2; n <= gapEnd; n++ {
			h.sectorsPerFrame = append(h.sectorsPerFrame, n)
		}
	} else if len(h.sectorsPerFrame) == 0 {
		return false
	}

	// keep only the intervals with a multiple inside this gap
	retained := h.sectorsPerFrame[:0]
	for _, n := range h.sectorsPerFrame {
		for offset := gapStart; offset <= gapEnd; offset++ {
			if offset%n == 0 {
				retained = append(retained, n)
				break
			}
		}
	}
	h.sectorsPerFrame = retained
	return len(h.sectorsPerFrame) > 0
}
