// 7 Oct 2026

package layout

import (
	"errors"
	"fmt"

	"github.com/andrew-torda/seqcons/pkg/store"
	. "github.com/andrew-torda/seqcons/pkg/seq/common"
)

// Step is one piece of an alignment against a reference. Only Match,
// Ins and Del get here. The caller deals with clipping.
type Step struct {
	Op  StepOp
	Len int
}

type StepOp byte

const (
	Match StepOp = iota // uses read and reference
	Ins                 // read only
	Del                 // reference only
)

// Aln is a read aligned to a reference starting at reference position
// Pos. Seq is the clear range as it lies on the reference. The rest is
// copied to the placement.
type Aln struct {
	Read             int
	Pos              int
	Steps            []Step
	Seq              []byte
	Rev              bool
	ClrBegin, ClrEnd int
}

var ErrCigar = errors.New("alignment does not fit reference")

// refLen is how much reference an alignment uses.
func (a *Aln) refLen() (n int) {
	for _, s := range a.Steps {
		if s.Op != Ins {
			n += s.Len
		}
	}
	return n
}

// FromCigar moves alignments from reference coordinates to columns.
// Every reference slot (the place before reference position s) gets as
// many new columns as the longest insertion any read has there. A
// read's inserted bases go at the start of its slot, followed by gaps.
// It returns the reference with gap characters in the new columns and
// one placement per alignment.
func FromCigar(ref []byte, alns []Aln) ([]byte, []store.Placement, error) {
	ins := make([]int, len(ref)+1)
	for k := range alns {
		a := &alns[k]
		if a.Pos < 0 || a.Pos+a.refLen() > len(ref) {
			return nil, nil, fmt.Errorf("read %d at %d using %d of %d: %w",
				a.Read, a.Pos, a.refLen(), len(ref), ErrCigar)
		}
		p, nseq := a.Pos, 0
		for _, s := range a.Steps {
			switch s.Op {
			case Ins:
				if s.Len > ins[p] {
					ins[p] = s.Len
				}
			default:
				p += s.Len
			}
			if s.Op != Del {
				nseq += s.Len
			}
		}
		if nseq != len(a.Seq) {
			return nil, nil, fmt.Errorf("read %d has %d bases but cigar wants %d: %w",
				a.Read, len(a.Seq), nseq, ErrCigar)
		}
	}

	// slot[s] is the first column of slot s, refcol is slot + ins
	slot := make([]int, len(ref)+1)
	col := 0
	gapped := make([]byte, 0, len(ref)+len(ref)/8)
	for s := range slot {
		slot[s] = col
		col += ins[s]
		for k := 0; k < ins[s]; k++ {
			gapped = append(gapped, GapChar)
		}
		if s < len(ref) {
			gapped = append(gapped, ref[s])
			col++
		}
	}

	plc := make([]store.Placement, len(alns))
	for k := range alns {
		a := &alns[k]
		row := make([]byte, 0, len(a.Seq)+len(a.Seq)/8)
		p, i := a.Pos, 0
		start := -1
		pending := 0 // bases already put in the slot at p
		for _, s := range a.Steps {
			if s.Op == Ins {
				if start < 0 {
					start = slot[p]
				}
				row = append(row, a.Seq[i:i+s.Len]...)
				i += s.Len
				pending += s.Len
				continue
			}
			for n := 0; n < s.Len; n++ {
				if start < 0 {
					start = slot[p] + ins[p]
				} else {
					for g := pending; g < ins[p]; g++ {
						row = append(row, GapChar)
					}
				}
				pending = 0
				if s.Op == Match {
					row = append(row, a.Seq[i])
					i++
				} else {
					row = append(row, GapChar)
				}
				p++
			}
		}
		if start < 0 {
			start = slot[a.Pos]
		}
		_, gaps := store.GapsFromRow(row)
		pl := store.Placement{Read: a.Read, Begin: start, End: start + len(row),
			Gaps: gaps, ClrBegin: a.ClrBegin, ClrEnd: a.ClrEnd}
		if a.Rev {
			pl.Begin, pl.End = pl.End, pl.Begin
		}
		plc[k] = pl
	}
	return gapped, plc, nil
}
