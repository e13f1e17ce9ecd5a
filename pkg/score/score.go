// 4 Oct 2026

// Package score has the different ways of scoring a read against
// something else. That might be another sequence, or it might be
// a window of a profile built from many reads.
//
// Everything is a Scorer. The aligners only ever ask for the score
// of read position i against target position j and the gap costs,
// so they do not care which kind of scheme is behind it.
package score

import (
	"github.com/andrew-torda/matrix"
)

// Kind says which scheme a Scorer is.
type Kind byte

const (
	Matrix     Kind = iota // substitution matrix between two sequences
	Consensus              // agreement with the majority of a profile window
	Fractional             // frequency weighted agreement with a profile window
	Weighted               // weighted sum of other schemes
)

func (k Kind) String() string {
	switch k {
	case Matrix:
		return "matrix"
	case Consensus:
		return "consensus"
	case Fractional:
		return "fractional"
	case Weighted:
		return "weighted"
	}
	return "unknown"
}

// Scorer is what an aligner needs. A gap of length n over target
// positions j..j+n-1 costs (Open + n * Extend), scaled by GapWeight at each
// target position. Gaps in the target are not scaled.
type Scorer interface {
	Kind() Kind
	Match(i, j int) float32
	GapWeight(j int) float32
	GapOpen() float32
	GapExtend() float32
}

// Gaps is embedded in most schemes. Both values are positive.
type Gaps struct {
	Open   float32
	Extend float32
}

func (g Gaps) GapOpen() float32 { return g.Open }
func (g Gaps) GapExtend() float32 { return g.Extend }

// Sub says how well symbol a goes with symbol b. Both are ordinals
// from the same alphabet.
type Sub interface {
	Sub(a, b uint8) float32
}

// Pair is the simplest Sub. The wildcard scores zero against
// everything.
type Pair struct {
	Match    float32
	Mismatch float32
	Wild     uint8
}

func (p Pair) Sub(a, b uint8) float32 {
	switch {
	case a == p.Wild || b == p.Wild:
		return 0
	case a == b:
		return p.Match
	}
	return p.Mismatch
}

// weighted adds up other schemes. The gaps come from the first one.
type weighted struct {
	wts     []float32
	schemes []Scorer
}

// NewWeighted returns the sum wts[k] * schemes[k]. It needs at least
// one scheme.
func NewWeighted(wts []float32, schemes ...Scorer) Scorer {
	if len(wts) != len(schemes) || len(schemes) == 0 {
		panic("program bug: weights and schemes do not match")
	}
	return &weighted{wts: wts, schemes: schemes}
}

func (sc *weighted) Kind() Kind { return Weighted }
func (sc *weighted) Match(i, j int) (f float32) {
	for k, s := range sc.schemes {
		if w := sc.wts[k]; w != 0 {
			f += w * s.Match(i, j)
		}
	}
	return f
}
func (sc *weighted) GapWeight(j int) float32 { return sc.schemes[0].GapWeight(j) }
func (sc *weighted) GapOpen() float32 { return sc.schemes[0].GapOpen() }
func (sc *weighted) GapExtend() float32 { return sc.schemes[0].GapExtend() }

// Fill puts the scores of an m x n problem into a matrix. This is
// what the full matrix aligner wants.
func Fill(sc Scorer, m, n int) *matrix.FMatrix2d {
	smat := matrix.NewFMatrix2d(m, n)
	for i := 0; i < m; i++ {
		row := smat.Mat[i]
		for j := range row {
			row[j] = sc.Match(i, j)
		}
	}
	return smat
}
