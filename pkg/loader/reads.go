// 9 Oct 2026

package loader

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andrew-torda/seqcons/pkg/seq"
	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
)

// DefaultContig is where reads go that have a position but do not
// say which contig.
const DefaultContig = "contig"

// rec is one sequence as it comes out of a FASTA or FASTQ file.
type rec struct {
	id, desc string
	seq      []byte
	qual     []byte // phred, nil for FASTA
}

func firstByte(buf []byte) byte {
	if b := bytes.TrimLeft(buf, " \t\r\n"); len(b) > 0 {
		return b[0]
	}
	return 0
}

func readFasta(r io.Reader) ([]rec, error) {
	fr := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant))
	var recs []rec
	for {
		s, err := fr.Read()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		l := s.(*linear.Seq)
		b := append([]byte(nil), alphabet.LettersToBytes(l.Seq)...)
		recs = append(recs, rec{id: l.ID, desc: l.Desc, seq: b})
	}
}

func readFastq(r io.Reader) ([]rec, error) {
	fr := fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
	var recs []rec
	for {
		s, err := fr.Read()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		l := s.(*linear.QSeq)
		b := make([]byte, len(l.Seq))
		q := make([]byte, len(l.Seq))
		for i, ql := range l.Seq {
			b[i], q[i] = byte(ql.L), byte(ql.Q)
		}
		recs = append(recs, rec{id: l.ID, desc: l.Desc, seq: b, qual: q})
	}
}

// readSeqs picks FASTA or FASTQ from the first character.
func readSeqs(buf []byte, name string) ([]rec, error) {
	var recs []rec
	var err error
	switch c := firstByte(buf); c {
	case 0:
		return nil, nil
	case '>':
		recs, err = readFasta(bytes.NewReader(buf))
	case '@':
		recs, err = readFastq(bytes.NewReader(buf))
	default:
		return nil, fmt.Errorf("%s starts with %q, not > or @: %w", name, c, ErrFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", name, err, ErrFormat)
	}
	for _, r := range recs {
		if err := seq.Upper(r.seq, r.id); err != nil {
			return nil, fmt.Errorf("%s: %v: %w", name, err, ErrFormat)
		}
	}
	return recs, nil
}

// parsePos pulls "begin,end" and "contig=name" out of a description.
// ok is false if there is no position.
func parsePos(desc string) (begin, end int, contig string, ok bool, err error) {
	for _, f := range strings.Fields(desc) {
		if c, found := strings.CutPrefix(f, "contig="); found {
			contig = c
			continue
		}
		b, e, found := strings.Cut(f, ",")
		if !found || !strings.ContainsAny(f[:1], "-0123456789") {
			continue
		}
		if begin, err = strconv.Atoi(b); err != nil {
			return 0, 0, "", false, err
		}
		if end, err = strconv.Atoi(e); err != nil {
			return 0, 0, "", false, err
		}
		ok = true
	}
	return begin, end, contig, ok, nil
}

// storeReads turns records into a store. A read with a position gets
// an ungapped placement starting at the smaller of begin and end.
// Positions are only approximate, so the read's own length decides
// where it stops.
func storeReads(recs []rec, name string) (*store.Store, error) {
	st := &store.Store{Reads: make(store.ReadStore, 0, len(recs))}
	cIndex := make(map[string]int)
	var clen []int
	for i, r := range recs {
		st.Reads = append(st.Reads, store.Read{Name: r.id, Seq: r.seq, Qual: r.qual})
		b, e, cname, ok, err := parsePos(r.desc)
		if err != nil {
			return nil, fmt.Errorf("%s read %s position: %v: %w", name, r.id, err, ErrFormat)
		}
		if !ok {
			continue
		}
		if cname == "" {
			cname = DefaultContig
		}
		c, seen := cIndex[cname]
		if !seen {
			c = len(clen)
			cIndex[cname] = c
			clen = append(clen, 0)
			st.Contigs = append(st.Contigs, store.Contig{Name: cname})
		}
		start := min(b, e)
		if start < 0 {
			return nil, fmt.Errorf("%s read %s at %d: %w", name, r.id, start, ErrFormat)
		}
		p := store.Placement{Read: i, Contig: c, Begin: start, End: start + len(r.seq)}
		p.FullClear(&st.Reads[i])
		if b > e {
			p.Begin, p.End = p.End, p.Begin
		}
		clen[c] = max(clen[c], p.Stop())
		st.Placements = append(st.Placements, p)
	}
	for c := range st.Contigs {
		st.Contigs[c] = store.Placeholder(st.Contigs[c].Name, clen[c])
	}
	return st, nil
}

// LoadReads reads a plain list of reads.
func LoadReads(fname string) (*store.Store, error) {
	var st *store.Store
	err := withMap(fname, func(buf []byte) error {
		recs, err := readSeqs(buf, fname)
		if err != nil {
			return err
		}
		st, err = storeReads(recs, fname)
		return err
	})
	return st, err
}

// ReadReads is LoadReads from a stream.
func ReadReads(r io.Reader, name string) (*store.Store, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", name, err, ErrFormat)
	}
	recs, err := readSeqs(buf, name)
	if err != nil {
		return nil, err
	}
	return storeReads(recs, name)
}

// LoadContigs reads a FASTA file of contig sequences by name.
func LoadContigs(fname string) (map[string][]byte, error) {
	m := make(map[string][]byte)
	err := withMap(fname, func(buf []byte) error {
		if c := firstByte(buf); c != '>' && c != 0 {
			return fmt.Errorf("%s is not FASTA: %w", fname, ErrFormat)
		}
		recs, err := readSeqs(buf, fname)
		if err != nil {
			return err
		}
		for _, r := range recs {
			m[r.id] = r.seq
		}
		return nil
	})
	return m, err
}
