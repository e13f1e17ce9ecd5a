// 8 Oct 2026

package layout

import (
	"fmt"
	"sort"

	"github.com/andrew-torda/seqcons/pkg/store"
)

// node is a read inside a tree being built. start is where its
// oriented sequence begins in the tree's frame.
type node struct {
	root  int
	start int
	flip  bool
}

type forest struct {
	nodes   []node
	members map[int][]int // root to reads in the tree
	lens    []int
}

func newForest(reads store.ReadStore) *forest {
	f := &forest{
		nodes:   make([]node, len(reads)),
		members: make(map[int][]int, len(reads)),
		lens:    make([]int, len(reads)),
	}
	for i := range reads {
		f.nodes[i] = node{root: i}
		f.members[i] = []int{i}
		f.lens[i] = len(reads[i].Seq)
	}
	return f
}

// join puts the tree holding b next to the tree holding a, as the
// overlap says. It does nothing if they are already one tree.
func (f *forest) join(o Overlap) bool {
	na, nb := f.nodes[o.A], f.nodes[o.B]
	if na.root == nb.root {
		return false
	}
	// where b has to be, in a's frame
	wantFlip := o.Rev != na.flip
	wantStart := na.start + o.Shift
	if na.flip {
		wantStart = na.start + f.lens[o.A] - o.Shift - f.lens[o.B]
	}
	oldRoot := nb.root
	mirror := nb.flip != wantFlip
	k := wantStart + nb.start + f.lens[o.B] // only used for a mirror
	for _, m := range f.members[oldRoot] {
		x := &f.nodes[m]
		if mirror {
			x.start = k - (x.start + f.lens[m])
			x.flip = !x.flip
		} else {
			x.start += wantStart - nb.start
		}
		x.root = na.root
	}
	f.members[na.root] = append(f.members[na.root], f.members[oldRoot]...)
	delete(f.members, oldRoot)
	return true
}

// Build lays reads out along a greedy maximum spanning forest of the
// overlaps. Each tree is one contig called contig1, contig2, ...
// numbered by smallest read id. Reads end up ungapped with their
// overlaps lined up, so the realignment has something to start from.
func Build(reads store.ReadStore, overlaps []Overlap) ([]store.Contig, []store.Placement) {
	o := append([]Overlap(nil), overlaps...)
	sortOverlaps(o)
	f := newForest(reads)
	for _, x := range o {
		f.join(x)
	}
	roots := make([]int, 0, len(f.members))
	for r, m := range f.members {
		sort.Ints(m)
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool {
		return f.members[roots[i]][0] < f.members[roots[j]][0]
	})

	contigOf := make([]int, len(reads))
	var contigs []store.Contig
	for c, r := range roots {
		lo, hi := 0, 0
		for n, m := range f.members[r] {
			s, e := f.nodes[m].start, f.nodes[m].start+f.lens[m]
			if n == 0 || s < lo {
				lo = s
			}
			if n == 0 || e > hi {
				hi = e
			}
		}
		for _, m := range f.members[r] {
			f.nodes[m].start -= lo
			contigOf[m] = c
		}
		contigs = append(contigs, store.Placeholder(fmt.Sprintf("contig%d", c+1), hi-lo))
	}

	plc := make([]store.Placement, 0, len(reads))
	for i := range reads {
		nd := f.nodes[i]
		p := store.Placement{Read: i, Contig: contigOf[i],
			Begin: nd.start, End: nd.start + f.lens[i]}
		p.FullClear(&reads[i])
		if nd.flip {
			p.Begin, p.End = p.End, p.Begin
		}
		plc = append(plc, p)
	}
	return contigs, plc
}
