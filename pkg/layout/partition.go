// 7 Oct 2026

// Package layout decides where reads go before they are realigned.
// It groups placements by contig, turns reference alignments into
// column space and, if there is no layout at all, builds one from
// read overlaps.
package layout

import (
	"github.com/andrew-torda/seqcons/pkg/store"
)

// Tuple is one placement on a contig seen by the partitioner.
// Begin and End are copies, so orientation is still Begin > End.
type Tuple struct {
	Placement  int
	Read       int
	Begin, End int
}

// ContigReads are the placements of one contig in load order.
type ContigReads struct {
	Contig int
	Tuples []Tuple
}

// Partition returns one entry per contig, in contig order. A contig
// nothing maps to has an empty list.
func Partition(st *store.Store) []ContigReads {
	cr := make([]ContigReads, len(st.Contigs))
	for i := range cr {
		cr[i].Contig = i
	}
	for i, p := range st.Placements {
		t := Tuple{Placement: i, Read: p.Read, Begin: p.Begin, End: p.End}
		cr[p.Contig].Tuples = append(cr[p.Contig].Tuples, t)
	}
	return cr
}

// Placements copies out the placements of one contig, so a worker
// can own them.
func (cr *ContigReads) Placements(st *store.Store) []store.Placement {
	plc := make([]store.Placement, len(cr.Tuples))
	for i, t := range cr.Tuples {
		p := st.Placements[t.Placement]
		p.Gaps = append([]store.Gap(nil), p.Gaps...)
		plc[i] = p
	}
	return plc
}

// PutBack writes placements from Placements() back into the store.
func (cr *ContigReads) PutBack(st *store.Store, plc []store.Placement) {
	for i, t := range cr.Tuples {
		st.Placements[t.Placement] = plc[i]
	}
}
