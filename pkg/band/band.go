// 5 Oct 2026

// Package band does Gotoh style alignments of a read against a
// target, but only looks at cells on the diagonals lowDiag to
// highDiag. Diagonal d is the set of cells where j - i = d, with i
// a read position and j a target (column) position.
//
// The read has to be aligned from its first symbol to its last, but
// it can start and stop anywhere in the target. This is what we want
// when the target is a window cut out of a profile.
package band

import (
	"errors"
	"fmt"

	"github.com/andrew-torda/seqcons/pkg/score"
)

// Op is one step along an alignment path.
type Op byte

const (
	Match Op = iota // read symbol on a target column
	Del             // gap in the read, the column is used up
	Ins             // read symbol with no column, so a new column is needed
)

func (o Op) String() string { return [...]string{"M", "D", "I"}[o] }

// Result is an alignment. Begin is the target column where the path
// starts.
type Result struct {
	Score float32
	Begin int
	Ops   []Op
}

// End is one past the last target column used.
func (r *Result) End() int {
	j := r.Begin
	for _, o := range r.Ops {
		if o != Ins {
			j++
		}
	}
	return j
}

// ErrNoPath means there is no way through the band that uses the
// whole read.
var ErrNoPath = errors.New("no alignment path inside band")

const bigf float32 = -1e+38

// direction bits
const (
	fromM  byte = iota // best score at a cell came from a match
	fromD              // from a gap in the read
	fromI              // from an insertion
	srcMsk byte = 3
	dExt   byte = 4 // the gap in the read is an extension
	iExt   byte = 8 // the insertion is an extension
)

const (
	stH = iota // traceback states
	stM
	stD
	stI
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Align is banded Gotoh. m is the read length and n the number of
// target columns. The band is clipped to what makes sense for an m x n
// problem. On a tie, a match is preferred to a gap in the read, which
// is preferred to an insertion.
func Align(m, n int, sc score.Scorer, lowDiag, highDiag int) (Result, error) {
	lo, hi := max(lowDiag, -m), min(highDiag, n)
	if lo > hi {
		return Result{}, fmt.Errorf("diagonals %d to %d for %d x %d: %w",
			lowDiag, highDiag, m, n, ErrNoPath)
	}
	open, ext := sc.GapOpen(), sc.GapExtend()
	w1 := open + ext

	h := NewFBand(m+1, lo, hi) // best score ending at i, j
	d := NewFBand(m+1, lo, hi) // best ending with a gap in the read
	ins := NewFBand(m+1, lo, hi)
	dir := NewBBand(m+1, lo, hi)

	for i := 0; i <= m; i++ {
		jlo, jhi := max(0, i+lo), min(n, i+hi)
		for j := jlo; j <= jhi; j++ {
			if i == 0 { // free start anywhere in the target
				h.Set(0, j, 0)
				d.Set(0, j, bigf)
				ins.Set(0, j, bigf)
				continue
			}
			var flag byte
			mv := bigf
			if j > 0 && h.In(i-1, j-1) {
				mv = h.At(i-1, j-1) + sc.Match(i-1, j-1)
			}
			dv := bigf
			if j > jlo {
				wt := sc.GapWeight(j - 1)
				dv = h.At(i, j-1) - w1*wt
				if x := d.At(i, j-1) - ext*wt; x > dv {
					dv = x
					flag |= dExt
				}
			}
			iv := bigf
			if h.In(i-1, j) {
				iv = h.At(i-1, j) - w1
				if x := ins.At(i-1, j) - ext; x > iv {
					iv = x
					flag |= iExt
				}
			}
			best, src := mv, fromM
			if dv > best {
				best, src = dv, fromD
			}
			if iv > best {
				best, src = iv, fromI
			}
			h.Set(i, j, best)
			d.Set(i, j, dv)
			ins.Set(i, j, iv)
			dir.Set(i, j, flag|src)
		}
	}

	jlo, jhi := max(0, m+lo), min(n, m+hi)
	jbest, best := -1, bigf
	for j := jlo; j <= jhi; j++ { // smallest j wins a tie
		if x := h.At(m, j); x > best {
			jbest, best = j, x
		}
	}
	if jbest < 0 || best <= bigf/2 {
		return Result{}, fmt.Errorf("diagonals %d to %d for %d x %d: %w",
			lowDiag, highDiag, m, n, ErrNoPath)
	}

	ops := make([]Op, 0, m+hi-lo)
	i, j, state := m, jbest, stH
	for i > 0 {
		f := dir.At(i, j)
		switch state {
		case stH:
			state = [...]int{stM, stD, stI}[f&srcMsk]
		case stM:
			ops = append(ops, Match)
			i, j, state = i-1, j-1, stH
		case stD:
			ops = append(ops, Del)
			j--
			if f&dExt == 0 {
				state = stH
			}
		case stI:
			ops = append(ops, Ins)
			i--
			if f&iExt == 0 {
				state = stH
			}
		}
	}
	for a, b := 0, len(ops)-1; a < b; a, b = a+1, b-1 {
		ops[a], ops[b] = ops[b], ops[a]
	}
	return Result{Score: best, Begin: j, Ops: ops}, nil
}
