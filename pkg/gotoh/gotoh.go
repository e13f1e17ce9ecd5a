// Feb 2018, Oct 2026

// Package gotoh implements the Gotoh version of pair-wise alignments.
// We use a full scoring matrix, and use this during the summation.
// It is used for read against read comparisons, where both sequences
// are short enough that we do not need a band.
package gotoh

import (
	"fmt"
	"strings"

	"github.com/andrew-torda/matrix"
)

// AlType says what happens at the ends of an alignment. By making it
// its own type, we can add a String() method to it.
type AlType byte

// Local/Global/... are exported constants to say what kind of
// alignment one wants.
const (
	Local   AlType = iota // Smith and Waterman
	Global                // every end gap costs
	Overlap               // no end gap costs, for overlapping reads
	Fit                   // first sequence aligned completely, ends of the second are free
)

// Pnlty has the gap opening and widening values. Opening costs you
// -(Open+Wdn). Each extension costs -Wdn
type Pnlty struct {
	Open float32
	Wdn  float32
}

// MatchScr is for identity scoring.
type MatchScr struct {
	Match    float32 // matched characters
	Mismatch float32 // mismatched
}

// AlScore is for telling Align how to score an alignment.
type AlScore struct {
	Pnlty          // open and widen penalties
	AlType AlType // local / global / ...
}

// Pair is one aligned position. A gap in either sequence is -1.
type Pair struct {
	I, J int
}

const (
	diag byte = iota // diagonal movement
	pway             // along the P direction, vertical, over rows
	qway             // Q direction, horizontal, over columns
	stop             // Can be used to signal traceback should stop
	pExt byte = 4    // the vertical gap is an extension
	qExt byte = 8    // the horizontal gap is an extension
	mask byte = 3
)

const bigf float32 = -1e+38

// String for the alignment type is mainly for debugging.
func (a AlType) String() string {
	switch a {
	case Local:
		return "local"
	case Global:
		return "global"
	case Overlap:
		return "overlap"
	}
	return "fit"
}

// IdentScore fills out a score matrix using identity. Values for match/mismatch
// come from the scr structure.
// for an M x N pair, we have an M x N matrix. There is no extra room
// at the start and end.
func IdentScore(s []byte, t []byte, scr *MatchScr) (smat *matrix.FMatrix2d) {
	smat = matrix.NewFMatrix2d(len(s), len(t))
	mat := smat.Mat
	for i, cs := range s {
		for j, ct := range t {
			if cs == ct {
				mat[i][j] = scr.Match
			} else {
				mat[i][j] = scr.Mismatch
			}
		}
	}
	return
}

// PrintSeqDebug is a primitive printer for aligned sequences, but
// it is essential for debugging.
func PrintSeqDebug(pairlist []Pair, s, t []byte) string {
	var outs1, outs2 strings.Builder
	for _, p := range pairlist {
		if p.I == -1 {
			outs1.WriteByte('-')
		} else {
			outs1.WriteByte(s[p.I])
		}
		if p.J == -1 {
			outs2.WriteByte('-')
		} else {
			outs2.WriteByte(t[p.J])
		}
	}
	return fmt.Sprintf("%s\n%s", outs1.String(), outs2.String())
}

// newDir gives us the direction matrix. It has the same layout as
// the float matrices, one backing array.
func newDir(nr, nc int) [][]byte {
	full := make([]byte, nr*nc)
	dir := make([][]byte, nr)
	for i := range dir {
		dir[i] = full[:nc]
		full = full[nc:]
	}
	return dir
}

// Align implements Gotoh, O. J. Mol. Biol. (1982) 162, 705-708,
// keeping separate directions for the two gap matrices, so it does
// not have the bugs described in Flouri, T, Kobert, K., Rognes, T
// and Stamatakis, doi: http://dx.doi.org/10.1101/031500 (2015).
// The score matrix is m x n. Internally we work on prefixes, so
// everything else is (m+1) x (n+1).
func Align(scrMat *matrix.FMatrix2d, scheme *AlScore) (pairlist []Pair, maxScr float32) {
	smat := scrMat.Mat
	m, n := scrMat.Size()
	if m < 1 || n < 1 {
		return nil, 0
	}
	wdn := scheme.Wdn
	w1 := scheme.Open + scheme.Wdn
	h := matrix.NewFMatrix2d(m+1, n+1).Mat
	p := matrix.NewFMatrix2d(m+1, n+1).Mat // gap in t, walk down rows
	q := matrix.NewFMatrix2d(m+1, n+1).Mat // gap in s, walk along a row
	dir := newDir(m+1, n+1)
	altype := scheme.AlType

	freeRow0 := altype != Global // leading gaps in s cost nothing
	freeCol0 := altype == Overlap || altype == Local
	dir[0][0] = stop
	p[0][0], q[0][0] = bigf, bigf
	for j := 1; j <= n; j++ {
		p[0][j] = bigf
		if freeRow0 {
			h[0][j], q[0][j], dir[0][j] = 0, bigf, stop
		} else {
			h[0][j] = -(scheme.Open + float32(j)*wdn)
			q[0][j], dir[0][j] = h[0][j], qway|qExt
		}
	}
	for i := 1; i <= m; i++ {
		q[i][0] = bigf
		if freeCol0 {
			h[i][0], p[i][0], dir[i][0] = 0, bigf, stop
		} else {
			h[i][0] = -(scheme.Open + float32(i)*wdn)
			p[i][0], dir[i][0] = h[i][0], pway|pExt
		}
	}

	for i := 1; i <= m; i++ { // Indexing is such that we walk
		for j := 1; j <= n; j++ { // along each row, left to right.
			var flag byte
			best := h[i-1][j-1] + smat[i-1][j-1]
			drctn := diag
			p[i][j] = h[i-1][j] - w1
			if x := p[i-1][j] - wdn; x > p[i][j] {
				p[i][j] = x
				flag |= pExt
			}
			q[i][j] = h[i][j-1] - w1
			if x := q[i][j-1] - wdn; x > q[i][j] {
				q[i][j] = x
				flag |= qExt
			}
			if p[i][j] > best {
				best, drctn = p[i][j], pway
			}
			if q[i][j] > best {
				best, drctn = q[i][j], qway
			}
			if altype == Local && best <= 0 {
				best, drctn = 0, stop
			}
			h[i][j] = best
			dir[i][j] = flag | drctn
		}
	}
	return traceback(dir, h, m, n, altype)
}

// endPoint finds where the traceback starts from.
func endPoint(h [][]float32, m, n int, altype AlType) (maxI, maxJ int, maxScr float32) {
	maxI, maxJ, maxScr = m, n, h[m][n]
	switch altype {
	case Local: //          Local alignments start from the highest score,
		maxScr = 0 //       even if it is not at one of the edges
		for i := 1; i <= m; i++ {
			for j := 1; j <= n; j++ {
				if h[i][j] > maxScr {
					maxI, maxJ, maxScr = i, j, h[i][j]
				}
			}
		}
	case Fit: // Look in the last row, smallest j wins
		maxScr = bigf
		for j := 0; j <= n; j++ {
			if h[m][j] > maxScr {
				maxJ, maxScr = j, h[m][j]
			}
		}
	case Overlap:
		for i := 0; i < m; i++ { // Look in last column
			if h[i][n] > maxScr {
				maxI, maxJ, maxScr = i, n, h[i][n]
			}
		}
		for j := 0; j < n; j++ { // Look in last row
			if h[m][j] > maxScr {
				maxI, maxJ, maxScr = m, j, h[m][j]
			}
		}
	}
	return
}

// traceback returns the list of pairs and the score. Except for
// local alignments, the list goes from the start to the end of both
// sequences, so the overhangs show up as pairs with a -1.
func traceback(dir [][]byte, h [][]float32, m, n int, altype AlType) ([]Pair, float32) {
	maxI, maxJ, maxScr := endPoint(h, m, n, altype)
	if altype == Local && maxScr == 0 {
		return nil, 0
	}
	bigger := m     // Take a guess as to how much space we
	if n > bigger { // might need for saving the aligned pairs.
		bigger = n
	}
	pairlist := make([]Pair, 0, bigger+bigger/10)
	if altype != Local {
		for ii := m - 1; ii >= maxI; ii-- {
			pairlist = append(pairlist, Pair{ii, -1})
		}
		for jj := n - 1; jj >= maxJ; jj-- {
			pairlist = append(pairlist, Pair{-1, jj})
		}
	}

	const (
		inH byte = iota
		inP
		inQ
	)
	i, j, state := maxI, maxJ, inH
walk:
	for i > 0 && j > 0 {
		d := dir[i][j]
		if state == inH {
			switch d & mask {
			case stop:
				break walk
			case diag:
				pairlist = append(pairlist, Pair{i - 1, j - 1})
				i, j = i-1, j-1
				continue
			case pway:
				state = inP
			case qway:
				state = inQ
			}
		}
		switch state {
		case inP:
			pairlist = append(pairlist, Pair{i - 1, -1})
			if d&pExt == 0 {
				state = inH
			}
			i--
		case inQ:
			pairlist = append(pairlist, Pair{-1, j - 1})
			if d&qExt == 0 {
				state = inH
			}
			j--
		}
	}
	if altype != Local {
		for ; i > 0; i-- {
			pairlist = append(pairlist, Pair{i - 1, -1})
		}
		for ; j > 0; j-- {
			pairlist = append(pairlist, Pair{-1, j - 1})
		}
	}

	for a, b := 0, len(pairlist)-1; a < b; a, b = a+1, b-1 {
		pairlist[a], pairlist[b] = pairlist[b], pairlist[a]
	}
	return pairlist, maxScr
}
