// 6 Oct 2026

package realign

import (
	"slices"

	"github.com/andrew-torda/seqcons/pkg/score"
)

// profile counts symbols per column. cols[c][sym], with the gap as the
// last sym. Columns come and go, so each one is its own slice.
type profile struct {
	cols [][]int32
	nsym int
	gap  uint8
}

func newProfile(ncol int, gap uint8) profile {
	p := profile{nsym: int(gap) + 1, gap: gap}
	p.cols = make([][]int32, ncol)
	for i := range p.cols {
		p.cols[i] = make([]int32, p.nsym)
	}
	return p
}

// add puts a row into the profile (delta 1) or takes it out (delta -1).
func (p *profile) add(start int, cells []uint8, delta int32) {
	for k, s := range cells {
		p.cols[start+k][s] += delta
	}
}

// bases is the number of non-gap symbols in column c.
func (p *profile) bases(c int) (n int32) {
	for _, x := range p.cols[c][:p.gap] {
		n += x
	}
	return n
}

// gaps is the number of gaps in column c.
func (p *profile) gaps(c int) int32 { return p.cols[c][p.gap] }

func (p *profile) insert(c int) {
	p.cols = slices.Insert(p.cols, c, make([]int32, p.nsym))
}

func (p *profile) remove(c int) {
	p.cols = slices.Delete(p.cols, c, c+1)
}

// major is the most common symbol in column c. The smallest ordinal
// wins a tie. It returns -1 for an empty column.
func (p *profile) major(c int) int {
	best, m := int32(0), -1
	for s, n := range p.cols[c] {
		if n > best {
			best, m = n, s
		}
	}
	return m
}

// window gives the frequencies of columns b to e.
func (p *profile) window(b, e int) *score.Window {
	return score.NewWindow(p.cols[b:e], p.gap)
}
