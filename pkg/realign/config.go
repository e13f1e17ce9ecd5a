// 6 Oct 2026

package realign

import (
	"errors"
	"fmt"

	"github.com/andrew-torda/seqcons/pkg/score"
)

var (
	ErrEmptyContig = errors.New("contig has no reads")
	ErrDivergence  = errors.New("consensus length ran away")
)

// Method is the gap model for the read against profile step.
type Method byte

const (
	Gotoh           Method = iota // affine gaps
	NeedlemanWunsch               // linear gaps
)

func (m Method) String() string {
	if m == NeedlemanWunsch {
		return "nw"
	}
	return "gotoh"
}

// ParseMethod understands what people type on the command line.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "gotoh", "Gotoh", "g":
		return Gotoh, nil
	case "nw", "NW", "needleman", "NeedlemanWunsch":
		return NeedlemanWunsch, nil
	}
	return Gotoh, fmt.Errorf("alignment method %q, want nw or gotoh", s)
}

// Gaps are the penalties that go with a method.
func (m Method) Gaps() score.Gaps {
	if m == NeedlemanWunsch {
		return score.Gaps{Open: 0, Extend: 2}
	}
	return score.Gaps{Open: 4, Extend: 1}
}

const (
	DefaultBandwidth  = 8
	DefaultMaxIter    = 10
	DefaultDivergence = 1.0
)

// Config is everything that changes how a contig is realigned.
type Config struct {
	Bandwidth        int  // half width of the band around each read
	IncludeReference bool // count the contig's own sequence as a pinned row
	Method           Method
	FracWeight       float32 // weight of the fractional score
	ConsWeight       float32 // weight of the consensus score
	Match            float32
	Mismatch         float32
	Submat           *score.Submat // used instead of Match/Mismatch. Protein without one gets BLOSUM62
	MaxIter          int
	Divergence       float64 // allowed length change as a multiple of total read length
	Workers          int     // goroutines for aligning reads within one contig
}

// DefaultConfig is what you get from the command line without flags.
func DefaultConfig() Config {
	return Config{
		Bandwidth:  DefaultBandwidth,
		Method:     Gotoh,
		FracWeight: 1,
		ConsWeight: 1,
		Match:      1,
		Mismatch:   -2,
		MaxIter:    DefaultMaxIter,
		Divergence: DefaultDivergence,
		Workers:    1,
	}
}

// fill replaces values that make no sense with defaults.
func (cfg *Config) fill() {
	if cfg.Bandwidth < 0 {
		cfg.Bandwidth = 0
	}
	if cfg.FracWeight == 0 && cfg.ConsWeight == 0 {
		cfg.FracWeight, cfg.ConsWeight = 1, 1
	}
	if cfg.Match == 0 && cfg.Mismatch == 0 {
		cfg.Match, cfg.Mismatch = 1, -2
	}
	if cfg.MaxIter < 1 {
		cfg.MaxIter = DefaultMaxIter
	}
	if cfg.Divergence <= 0 {
		cfg.Divergence = DefaultDivergence
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
}

// Stats says what happened to one contig. Changed[i] is the number
// of reads that moved or changed gaps in iteration i.
type Stats struct {
	Iterations int
	Changed    []int
	Inserted   int // columns added
	Deleted    int // columns removed
	Score      float64
}
