// 10 Oct 2026

package loader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andrew-torda/seqcons/pkg/layout"
	"github.com/andrew-torda/seqcons/pkg/seq"
	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/biogo/hts/sam"
	log "github.com/sirupsen/logrus"
)

// steps turns a cigar into layout steps. Soft clips only count at the
// ends and tell us the clear range. Hard clips and padding have no
// bases here, so they are dropped.
func steps(cigar sam.Cigar) (st []layout.Step, lead, trail int, err error) {
	seen := false
	for _, co := range cigar {
		n := co.Len()
		var op layout.StepOp
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			op = layout.Match
		case sam.CigarInsertion:
			op = layout.Ins
		case sam.CigarDeletion, sam.CigarSkipped:
			op = layout.Del
		case sam.CigarSoftClipped:
			if seen {
				trail += n
			} else {
				lead += n
			}
			continue
		case sam.CigarHardClipped, sam.CigarPadded:
			continue
		default:
			return nil, 0, 0, fmt.Errorf("cigar op %v: %w", co.Type(), ErrFormat)
		}
		if trail != 0 {
			return nil, 0, 0, fmt.Errorf("soft clip inside cigar %v: %w", cigar, ErrFormat)
		}
		seen = true
		if k := len(st); k > 0 && st[k-1].Op == op {
			st[k-1].Len += n
		} else {
			st = append(st, layout.Step{Op: op, Len: n})
		}
	}
	return st, lead, trail, nil
}

// samRead stores the read the way it was sequenced. SAM keeps reverse
// strand reads reverse complemented, so they are turned back. s is
// the sequence as it sits on the reference.
func samRead(rec *sam.Record) (r store.Read, s []byte, err error) {
	s = rec.Seq.Expand()
	if err := seq.Upper(s, rec.Name); err != nil {
		return r, nil, err
	}
	r = store.Read{Name: rec.Name, Seq: s}
	if len(rec.Qual) == len(s) && len(s) > 0 && rec.Qual[0] != 0xff {
		r.Qual = append([]byte(nil), rec.Qual...)
	}
	if rec.Flags&sam.Reverse != 0 {
		r.Seq = seq.RevComp(s)
		if r.Qual != nil {
			r.Qual = seq.Reverse(r.Qual)
		}
	}
	return r, s, nil
}

func storeSam(buf []byte, name string, contigs map[string][]byte) (*store.Store, error) {
	st := &store.Store{}
	if len(buf) == 0 {
		return st, nil
	}
	rd, err := sam.NewReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%s header: %v: %w", name, err, ErrFormat)
	}
	refs := rd.Header().Refs()
	for _, ref := range refs {
		if s, ok := contigs[ref.Name()]; ok {
			if len(s) != ref.Len() {
				return nil, fmt.Errorf("%s: reference %s has %d bases, header says %d: %w",
					name, ref.Name(), len(s), ref.Len(), ErrFormat)
			}
			st.Contigs = append(st.Contigs, store.Contig{Name: ref.Name(), Seq: s, HasSeq: true})
		} else {
			st.Contigs = append(st.Contigs, store.Placeholder(ref.Name(), ref.Len()))
		}
	}
	alns := make([][]layout.Aln, len(refs))
	nUnmapped := 0
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", name, err, ErrFormat)
		}
		rid := len(st.Reads)
		r, onRef, err := samRead(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", name, err, ErrFormat)
		}
		st.Reads = append(st.Reads, r)
		if rec.Flags&sam.Unmapped != 0 || rec.Ref == nil {
			nUnmapped++
			continue
		}
		c := rec.Ref.ID()
		if c < 0 || c >= len(refs) {
			return nil, fmt.Errorf("%s: read %s on unknown reference: %w", name, rec.Name, ErrFormat)
		}
		stp, lead, trail, err := steps(rec.Cigar)
		if err != nil {
			return nil, fmt.Errorf("%s read %s: %w", name, rec.Name, err)
		}
		n := len(r.Seq)
		if lead+trail > n {
			return nil, fmt.Errorf("%s read %s clips %d of %d bases: %w",
				name, rec.Name, lead+trail, n, ErrFormat)
		}
		a := layout.Aln{Read: rid, Pos: rec.Pos, Steps: stp,
			Seq: onRef[lead : n-trail], Rev: rec.Flags&sam.Reverse != 0}
		if a.Rev {
			a.ClrBegin, a.ClrEnd = trail, n-lead
		} else {
			a.ClrBegin, a.ClrEnd = lead, n-trail
		}
		alns[c] = append(alns[c], a)
	}

	for c := range alns {
		ctg := &st.Contigs[c]
		gapped, plc, err := layout.FromCigar(ctg.Seq, alns[c])
		if err != nil {
			return nil, fmt.Errorf("%s contig %s: %v: %w", name, ctg.Name, err, ErrFormat)
		}
		ctg.Seq = gapped
		for i := range plc {
			plc[i].Contig = c
		}
		st.Placements = append(st.Placements, plc...)
	}
	if nUnmapped > 0 {
		log.Infof("%s: %d unmapped reads kept without placements", name, nUnmapped)
	}
	return st, nil
}

// LoadSam reads alignments from a SAM file. If contigs is not empty,
// it is a FASTA file with the reference sequences. Without it, the
// contigs start as unknown bases of the length the header gives.
func LoadSam(fname, contigs string) (*store.Store, error) {
	var refs map[string][]byte
	if contigs != "" {
		var err error
		if refs, err = LoadContigs(contigs); err != nil {
			return nil, err
		}
	}
	var st *store.Store
	err := withMap(fname, func(buf []byte) error {
		var err error
		st, err = storeSam(buf, fname, refs)
		return err
	})
	return st, err
}

// ReadSam is LoadSam from a stream with the references already read.
func ReadSam(r io.Reader, name string, contigs map[string][]byte) (*store.Store, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", name, err, ErrFormat)
	}
	return storeSam(buf, name, contigs)
}
