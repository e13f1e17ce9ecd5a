// 11 Oct 2026

package writer

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/andrew-torda/matrix"
	"github.com/andrew-torda/seqcons/pkg/seq"
	. "github.com/andrew-torda/seqcons/pkg/seq/common"
	"github.com/andrew-torda/seqcons/pkg/store"
)

const maxQual = 60 // consensus quality of a column everyone agrees on

// consQual gives each consensus column a quality from the entropy of
// the bases in it. Gap columns and columns nobody covers get zero.
func consQual(st *store.Store, c int, plc []int) []byte {
	ctg := &st.Contigs[c]
	ncol := len(ctg.Seq)
	ungapped, _ := ctg.Ungapped()
	t := seq.GetType([][]byte{ungapped})
	if t == seq.Unknown || t == seq.Unchecked {
		t = seq.DNA
	}
	alpha := seq.ForType(t)
	gap := alpha.Gap()
	qual := make([]byte, ncol)
	if ncol == 0 {
		return qual
	}
	freq := matrix.NewFMatrix2d(int(gap)+1, ncol)
	for _, i := range plc {
		p := &st.Placements[i]
		row := store.Replay(p, &st.Reads[p.Read])
		start := p.Start()
		for k, b := range row {
			freq.Mat[alpha.Ord(b)][start+k]++
		}
	}
	ntot := make([]float32, ncol)
	for s := 0; s < int(gap); s++ {
		for j, x := range freq.Mat[s] {
			ntot[j] += x
		}
	}
	for s := 0; s < int(gap); s++ {
		for j := range freq.Mat[s] {
			if ntot[j] > 0 {
				freq.Mat[s][j] /= ntot[j]
			}
		}
	}
	ent := make([]float32, ncol)
	seq.EntropyFromArray(false, freq.Mat, ent, seq.LogBase(alpha, false), gap)
	for j := range qual {
		if ctg.Seq[j] == GapChar || ntot[j] == 0 {
			continue
		}
		q := math.Round(float64(1-ent[j]) * maxQual)
		qual[j] = byte(max(0, min(maxQual, q)))
	}
	return qual
}

// asciiQual turns phred values into AMOS quality letters.
func asciiQual(q []byte) []byte {
	t := make([]byte, len(q))
	for i, x := range q {
		t[i] = '0' + min(x, 'z'-'0')
	}
	return t
}

// WriteAfg writes AMOS messages. Reads get internal ids from 1 in load
// order, contigs likewise. A read's clr in its RED message is that of
// its first placement.
func WriteAfg(w io.Writer, st *store.Store, skip []bool) error {
	bw := bufio.NewWriter(w)
	parts := contigs(st, skip)
	clr := make([][2]int, len(st.Reads))
	for i, r := range st.Reads {
		clr[i] = [2]int{0, len(r.Seq)}
	}
	for i := len(st.Placements) - 1; i >= 0; i-- {
		p := &st.Placements[i]
		clr[p.Read] = [2]int{p.ClrBegin, p.ClrEnd}
	}
	for i, r := range st.Reads {
		fmt.Fprintf(bw, "{RED\niid:%d\neid:%s\nseq:\n", i+1, r.Name)
		wrapped(bw, r.Seq)
		bw.WriteString(".\n")
		if r.Qual != nil {
			bw.WriteString("qlt:\n")
			wrapped(bw, asciiQual(r.Qual))
			bw.WriteString(".\n")
		}
		fmt.Fprintf(bw, "clr:%d,%d\n}\n", clr[i][0], clr[i][1])
	}
	for n, part := range parts {
		ctg := &st.Contigs[part.Contig]
		fmt.Fprintf(bw, "{CTG\niid:%d\neid:%s\nseq:\n", n+1, ctg.Name)
		wrapped(bw, ctg.Seq)
		bw.WriteString(".\nqlt:\n")
		plc := make([]int, len(part.Tuples))
		for k, t := range part.Tuples {
			plc[k] = t.Placement
		}
		wrapped(bw, asciiQual(consQual(st, part.Contig, plc)))
		bw.WriteString(".\n")
		for _, i := range plc {
			writeTile(bw, &st.Placements[i])
		}
		bw.WriteString("}\n")
	}
	return bw.Flush()
}

func writeTile(bw *bufio.Writer, p *store.Placement) {
	c1, c2 := p.ClrBegin, p.ClrEnd
	if p.Reverse() {
		c1, c2 = c2, c1
	}
	fmt.Fprintf(bw, "{TLE\nsrc:%d\noff:%d\nclr:%d,%d\n", p.Read+1, p.Start(), c1, c2)
	if len(p.Gaps) > 0 {
		bw.WriteString("gap:\n")
		for _, g := range p.Gaps {
			for k := 0; k < g.Len; k++ {
				fmt.Fprintf(bw, "%d\n", g.Pos)
			}
		}
		bw.WriteString(".\n")
	}
	bw.WriteString("}\n")
}
