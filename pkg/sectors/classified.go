// Package sectors identifies what each disc sector carries.
//
// Classify turns a parsed psx.Sector into one of a closed set of variants:
// *XAAudio, *Video or Other. Callers switch on the concrete type.
package sectors

import (
	"fmt"

	"github.com/hansbonini/psxstr/pkg/psx"
)

// Classified is a sector after identification. The set of implementations
// is closed: Other, *XAAudio and *Video.
type Classified interface {
	// Sector returns the underlying sector.
	Sector() *psx.Sector
	// SectorIndex returns the absolute sector number.
	SectorIndex() int
	// Channel returns the interleave channel, or -1 when unknown.
	Channel() int
	// TypeName returns a short name for the variant.
	TypeName() string
	// ErrorCount returns the number of redundant-field mismatches found.
	ErrorCount() int

	isClassified()
}

// Classify identifies s. Sectors that are neither XA audio nor STR video
// are returned as Other.
func Classify(s *psx.Sector) Classified {
	if xa, ok := ClassifyXAAudio(s); ok {
		return xa
	}
	if v, ok := ClassifyVideo(s); ok {
		return v
	}
	return NewOther(s)
}

// MatchesPrevious reports if candidate continues the stream that previous
// belongs to.
func MatchesPrevious(candidate, previous Classified) bool {
	switch c := candidate.(type) {
	case *XAAudio:
		return c.MatchesPrevious(previous)
	case *Video:
		return c.MatchesPrevious(previous)
	default:
		return false
	}
}

// Other is any sector that is not audio or video.
type Other struct {
	sector *psx.Sector
}

// NewOther wraps s as an unidentified sector.
func NewOther(s *psx.Sector) Other {
	return Other{sector: s}
}

func (o Other) Sector() *psx.Sector { return o.sector }
func (o Other) SectorIndex() int    { return o.sector.Index() }
func (o Other) Channel() int        { return o.sector.Channel() }
func (o Other) TypeName() string    { return "Other" }
func (o Other) ErrorCount() int     { return 0 }
func (Other) isClassified()         {}

func (o Other) String() string {
	return fmt.Sprintf("Other %s", o.sector)
}

// Describe returns a one-line human readable summary of c.
func Describe(c Classified) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%s %s", c.TypeName(), c.Sector())
}
