// 11 Oct 2026

package writer

import (
	"fmt"
	"io"

	"github.com/andrew-torda/seqcons/pkg/seq"
	. "github.com/andrew-torda/seqcons/pkg/seq/common"
	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/biogo/hts/sam"
)

const noMapQ = 255

// cigar describes a row against the consensus. A base on a consensus
// base is M, a base on a consensus gap is I, a gap on a base is D.
// Gap on gap is not written. pos is where the row starts on the
// ungapped consensus. Deletions at either end are dropped and pos
// moves over the leading ones.
func cigar(row, cons []byte, start int, upos []int) (ops []sam.CigarOp, pos int) {
	type run struct {
		t sam.CigarOpType
		n int
	}
	var runs []run
	for k, b := range row {
		c := cons[start+k]
		var t sam.CigarOpType
		switch {
		case b != GapChar && c != GapChar:
			t = sam.CigarMatch
		case b != GapChar:
			t = sam.CigarInsertion
		case c != GapChar:
			t = sam.CigarDeletion
		default:
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].t == t {
			runs[n-1].n++
		} else {
			runs = append(runs, run{t, 1})
		}
	}
	pos = upos[start]
	if len(runs) > 0 && runs[0].t == sam.CigarDeletion {
		pos += runs[0].n
		runs = runs[1:]
	}
	if n := len(runs); n > 0 && runs[n-1].t == sam.CigarDeletion {
		runs = runs[:n-1]
	}
	for _, r := range runs {
		ops = append(ops, sam.NewCigarOp(r.t, r.n))
	}
	return ops, pos
}

// clip adds soft clips for the parts of the read outside the clear
// range. lead and trail are counted along the reference.
func clip(ops []sam.CigarOp, lead, trail int) []sam.CigarOp {
	if lead > 0 {
		ops = append([]sam.CigarOp{sam.NewCigarOp(sam.CigarSoftClipped, lead)}, ops...)
	}
	if trail > 0 {
		ops = append(ops, sam.NewCigarOp(sam.CigarSoftClipped, trail))
	}
	return ops
}

// samSeq gives the read and qualities the way SAM wants them, on the
// forward strand of the reference.
func samSeq(p *store.Placement, r *store.Read) (s, q []byte) {
	s, q = r.Seq, r.Qual
	if p != nil && p.Reverse() {
		s = seq.RevComp(s)
		if q != nil {
			q = seq.Reverse(q)
		}
	}
	return s, q
}

// WriteSam writes one record per read. Reads without a placement, or
// whose contig is skipped, are left out. Unplaced reads are written
// unmapped at the end.
func WriteSam(w io.Writer, st *store.Store, skip []bool) error {
	parts := contigs(st, skip)
	refs := make([]*sam.Reference, len(parts))
	for n, part := range parts {
		ctg := &st.Contigs[part.Contig]
		ungapped, _ := ctg.Ungapped()
		ref, err := sam.NewReference(ctg.Name, "", "", len(ungapped), nil, nil)
		if err != nil {
			return fmt.Errorf("contig %s: %v: %w", ctg.Name, err, ErrFormat)
		}
		refs[n] = ref
	}
	h, err := sam.NewHeader(nil, refs)
	if err != nil {
		return fmt.Errorf("sam header: %v: %w", err, ErrFormat)
	}
	sw, err := sam.NewWriter(w, h, sam.FlagDecimal)
	if err != nil {
		return err
	}
	placed := make([]bool, len(st.Reads))
	for _, p := range st.Placements {
		placed[p.Read] = true
	}
	for n, part := range parts {
		ctg := &st.Contigs[part.Contig]
		_, upos := ctg.Ungapped()
		for _, t := range part.Tuples {
			p := &st.Placements[t.Placement]
			r := &st.Reads[p.Read]
			ops, pos := cigar(store.Replay(p, r), ctg.Seq, p.Start(), upos)
			lead, trail := p.ClrBegin, len(r.Seq)-p.ClrEnd
			if p.Reverse() {
				lead, trail = trail, lead
			}
			s, q := samSeq(p, r)
			rec, err := sam.NewRecord(r.Name, refs[n], nil, pos, -1, 0, noMapQ, clip(ops, lead, trail), s, q, nil)
			if err != nil {
				return fmt.Errorf("read %s: %v: %w", r.Name, err, ErrFormat)
			}
			if p.Reverse() {
				rec.Flags |= sam.Reverse
			}
			if err := sw.Write(rec); err != nil {
				return err
			}
		}
	}
	for i := range st.Reads {
		if placed[i] {
			continue
		}
		r := &st.Reads[i]
		rec, err := sam.NewRecord(r.Name, nil, nil, -1, -1, 0, 0, nil, r.Seq, r.Qual, nil)
		if err != nil {
			return fmt.Errorf("read %s: %v: %w", r.Name, err, ErrFormat)
		}
		rec.Flags = sam.Unmapped
		if err := sw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
