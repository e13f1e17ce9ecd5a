// 3 Oct 2026

// Package store holds reads, contigs and the placements that tie
// them together. Everything refers to everything else by integer
// index into the slices of a Store, never by pointer.
package store

import (
	"errors"
	"fmt"

	"github.com/andrew-torda/seqcons/pkg/seq"
	. "github.com/andrew-torda/seqcons/pkg/seq/common"
)

// Read is one sequencing read. Qual holds phred values (not ascii)
// or is nil if we were not given any.
type Read struct {
	Name string
	Seq  []byte
	Qual []byte
}

// ReadStore is indexed by read id, which is the order reads were
// loaded. Nobody changes it after loading.
type ReadStore []Read

// Contig has a gapped consensus. A placeholder (HasSeq false) is
// filled with N until realignment builds a consensus.
type Contig struct {
	Name   string
	Seq    []byte
	HasSeq bool
}

// Gap says there are Len gap characters before position Pos of the
// ungapped, oriented, clipped read.
type Gap struct {
	Pos, Len int
}

// Placement puts a read on a contig. Begin > End means the read
// runs backwards, so it is reverse complemented before the gaps
// are applied. [ClrBegin, ClrEnd) is the part of the read that is
// aligned, in forward read coordinates.
type Placement struct {
	Read, Contig     int
	Begin, End       int
	Gaps             []Gap
	ClrBegin, ClrEnd int
}

// Store is everything we have loaded.
type Store struct {
	Reads      ReadStore
	Contigs    []Contig
	Placements []Placement
}

// ErrLayout is returned when a placement does not agree with its
// read or contig.
var ErrLayout = errors.New("inconsistent placement")

// Reverse is true if the read is placed on the reverse strand.
func (p *Placement) Reverse() bool { return p.Begin > p.End }

// Start is the first contig column covered.
func (p *Placement) Start() int {
	if p.Begin > p.End {
		return p.End
	}
	return p.Begin
}

// Stop is one past the last contig column covered.
func (p *Placement) Stop() int {
	if p.Begin > p.End {
		return p.Begin
	}
	return p.End
}

// Span is the number of contig columns covered.
func (p *Placement) Span() int { return p.Stop() - p.Start() }

// NGap is the total number of gap characters in the placement.
func (p *Placement) NGap() (n int) {
	for _, g := range p.Gaps {
		n += g.Len
	}
	return n
}

// FullClear sets the clear range to the whole read.
func (p *Placement) FullClear(r *Read) {
	p.ClrBegin, p.ClrEnd = 0, len(r.Seq)
}

// Clear is the part of the read that takes part in the alignment,
// in forward orientation. It is a view, not a copy.
func Clear(p *Placement, r *Read) []byte {
	b, e := p.ClrBegin, p.ClrEnd
	if b < 0 {
		b = 0
	}
	if e > len(r.Seq) || e < b {
		e = len(r.Seq)
	}
	return r.Seq[b:e]
}

// Oriented returns the clear range as it lies on the contig, so
// reverse complemented for reverse placements. It is always a
// new slice.
func Oriented(p *Placement, r *Read) []byte {
	s := Clear(p, r)
	if p.Reverse() {
		return seq.RevComp(s)
	}
	t := make([]byte, len(s))
	copy(t, s)
	return t
}

// OrientedQual goes with Oriented. It returns nil if the read has
// no qualities.
func OrientedQual(p *Placement, r *Read) []byte {
	if r.Qual == nil {
		return nil
	}
	b, e := p.ClrBegin, p.ClrEnd
	if e > len(r.Qual) || e < b {
		e = len(r.Qual)
	}
	q := r.Qual[b:e]
	if p.Reverse() {
		return seq.Reverse(q)
	}
	t := make([]byte, len(q))
	copy(t, q)
	return t
}

// ApplyGaps puts the gaps into an ungapped sequence.
func ApplyGaps(s []byte, gaps []Gap) []byte {
	n := len(s)
	for _, g := range gaps {
		n += g.Len
	}
	t := make([]byte, 0, n)
	last := 0
	for _, g := range gaps {
		pos := g.Pos
		if pos > len(s) {
			pos = len(s)
		}
		t = append(t, s[last:pos]...)
		for k := 0; k < g.Len; k++ {
			t = append(t, GapChar)
		}
		last = pos
	}
	return append(t, s[last:]...)
}

// Replay gives us the read as a row of the multiple alignment, with
// its gaps. The length should be Span().
func Replay(p *Placement, r *Read) []byte {
	return ApplyGaps(Oriented(p, r), p.Gaps)
}

// GapsFromRow is the opposite of ApplyGaps. It returns the ungapped
// sequence and the list of gap runs.
func GapsFromRow(row []byte) (ungapped []byte, gaps []Gap) {
	ungapped = make([]byte, 0, len(row))
	for _, c := range row {
		if c == GapChar {
			if n := len(gaps); n > 0 && gaps[n-1].Pos == len(ungapped) {
				gaps[n-1].Len++
			} else {
				gaps = append(gaps, Gap{Pos: len(ungapped), Len: 1})
			}
			continue
		}
		ungapped = append(ungapped, c)
	}
	return ungapped, gaps
}

// Validate checks a placement against its read and contig. This is
// the gap consistency rule. The gapped read must exactly fill the
// columns from Begin to End and the columns must exist.
func Validate(p *Placement, r *Read, c *Contig) error {
	name := r.Name
	if p.ClrBegin < 0 || p.ClrEnd > len(r.Seq) || p.ClrBegin > p.ClrEnd {
		return fmt.Errorf("read %s clear range %d..%d, length %d: %w",
			name, p.ClrBegin, p.ClrEnd, len(r.Seq), ErrLayout)
	}
	if p.Start() < 0 {
		return fmt.Errorf("read %s starts at %d: %w", name, p.Start(), ErrLayout)
	}
	nclr := p.ClrEnd - p.ClrBegin
	last := -1
	for _, g := range p.Gaps {
		if g.Pos <= last || g.Pos > nclr || g.Len < 1 {
			return fmt.Errorf("read %s has bad gap %+v: %w", name, g, ErrLayout)
		}
		last = g.Pos
	}
	if n := nclr + p.NGap(); n != p.Span() {
		return fmt.Errorf("read %s gapped length %d but covers %d columns (%d to %d): %w",
			name, n, p.Span(), p.Begin, p.End, ErrLayout)
	}
	if c != nil && p.Stop() > len(c.Seq) {
		return fmt.Errorf("read %s ends at %d but contig %s has %d columns: %w",
			name, p.Stop(), c.Name, len(c.Seq), ErrLayout)
	}
	return nil
}

// Placeholder makes a contig of n unknown columns.
func Placeholder(name string, n int) Contig {
	s := make([]byte, n)
	for i := range s {
		s[i] = UnknownChar
	}
	return Contig{Name: name, Seq: s}
}

// ContigIndex maps names to contig ids.
func (st *Store) ContigIndex() map[string]int {
	m := make(map[string]int, len(st.Contigs))
	for i, c := range st.Contigs {
		m[c.Name] = i
	}
	return m
}

// ReadIndex maps names to read ids. If a name turns up twice, the
// first one wins.
func (st *Store) ReadIndex() map[string]int {
	m := make(map[string]int, len(st.Reads))
	for i, r := range st.Reads {
		if _, ok := m[r.Name]; !ok {
			m[r.Name] = i
		}
	}
	return m
}

// Validate runs over every placement.
func (st *Store) Validate() error {
	for i := range st.Placements {
		p := &st.Placements[i]
		if p.Read < 0 || p.Read >= len(st.Reads) {
			return fmt.Errorf("placement %d has read id %d: %w", i, p.Read, ErrLayout)
		}
		if p.Contig < 0 || p.Contig >= len(st.Contigs) {
			return fmt.Errorf("placement %d has contig id %d: %w", i, p.Contig, ErrLayout)
		}
		if err := Validate(p, &st.Reads[p.Read], &st.Contigs[p.Contig]); err != nil {
			return err
		}
	}
	return nil
}

// Ungapped returns a contig's consensus without gap characters and
// a map from gapped column to ungapped position. Gap columns map to
// the position of the next base.
func (c *Contig) Ungapped() (s []byte, pos []int) {
	s = make([]byte, 0, len(c.Seq))
	pos = make([]int, len(c.Seq)+1)
	for i, b := range c.Seq {
		pos[i] = len(s)
		if b != GapChar {
			s = append(s, b)
		}
	}
	pos[len(c.Seq)] = len(s)
	return s, pos
}
