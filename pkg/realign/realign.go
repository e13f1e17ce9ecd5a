// 6 Oct 2026

// Package realign refines the multiple alignment of the reads on one
// contig. Each read in turn is taken out of the column profile,
// aligned back against a window of what is left, and put back. Reads
// are visited in load order and every one sees the changes made by
// the ones before it. This goes on until nothing moves or we run out
// of iterations.
//
// Reads can add columns (insertions) and columns that no longer hold
// any base are removed. All the other reads are renumbered when this
// happens, so coordinates are always those of the current profile.
package realign

import (
	"bytes"
	"fmt"

	"github.com/andrew-torda/seqcons/pkg/band"
	"github.com/andrew-torda/seqcons/pkg/score"
	"github.com/andrew-torda/seqcons/pkg/seq"
	"github.com/andrew-torda/seqcons/pkg/store"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// row is one read as it sits in the profile. cells holds ordinals,
// gaps included, starting at column start.
type row struct {
	start  int
	cells  []uint8
	bases  []uint8 // the read without gaps, oriented
	plc    int     // which placement
	inProf bool    // are the cells counted in the profile
}

func (r *row) end() int { return r.start + len(r.cells) }

type engine struct {
	cfg      Config
	alpha    *seq.Alphabet
	gap      uint8
	prof     profile
	ref      []uint8 // contig symbol per column, a gap for new columns
	refOn    bool    // is ref counted in the profile
	hasSeq   bool
	rows     []row
	sub      score.Sub
	gaps     score.Gaps
	inserted int
	deleted  int
	name     string
}

// alphabetFor guesses from the reads. Anything that is not clearly
// protein or RNA is treated as DNA.
func alphabetFor(placements []store.Placement, reads store.ReadStore) *seq.Alphabet {
	s := make([][]byte, 0, len(placements))
	for i := range placements {
		p := &placements[i]
		s = append(s, store.Clear(p, &reads[p.Read]))
	}
	return alphabetOf(s)
}

func alphabetOf(s [][]byte) *seq.Alphabet {
	t := seq.GetType(s)
	if t == seq.Unknown {
		t = seq.DNA
	}
	return seq.ForType(t)
}

// newEngine builds rows and profile from the placements. Nothing in
// contig or placements is changed.
func newEngine(contig *store.Contig, placements []store.Placement, reads store.ReadStore,
	cfg Config) (*engine, error) {
	alpha := alphabetFor(placements, reads)
	e := &engine{
		cfg:    cfg,
		alpha:  alpha,
		gap:    alpha.Gap(),
		ref:    alpha.Encode(contig.Seq),
		refOn:  cfg.IncludeReference && contig.HasSeq,
		hasSeq: contig.HasSeq,
		gaps:   cfg.Method.Gaps(),
		name:   contig.Name,
	}
	switch {
	case cfg.Submat != nil:
		e.sub = cfg.Submat.ForAlphabet(alpha)
	case alpha.Type() == seq.Protein:
		e.sub = score.BLOSUM62().ForAlphabet(alpha)
	default:
		e.sub = score.Pair{Match: cfg.Match, Mismatch: cfg.Mismatch, Wild: alpha.Wild()}
	}
	e.prof = newProfile(len(e.ref), e.gap)
	if e.refOn {
		e.prof.add(0, e.ref, 1)
	}
	e.rows = make([]row, len(placements))
	for i := range placements {
		p := &placements[i]
		rd := &reads[p.Read]
		if err := store.Validate(p, rd, contig); err != nil {
			return nil, err
		}
		r := &e.rows[i]
		r.start, r.plc = p.Start(), i
		r.cells = alpha.Encode(store.Replay(p, rd))
		r.bases = alpha.Encode(store.Oriented(p, rd))
		e.prof.add(r.start, r.cells, 1)
		r.inProf = true
	}
	return e, nil
}

// deleteColumn takes column c out of the profile and out of every row,
// rebasing rows to the right of it.
func (e *engine) deleteColumn(c int) {
	for i := range e.rows {
		r := &e.rows[i]
		switch {
		case r.start <= c && c < r.end():
			k := c - r.start
			r.cells = append(r.cells[:k], r.cells[k+1:]...)
		case r.start > c:
			r.start--
		}
	}
	e.ref = append(e.ref[:c], e.ref[c+1:]...)
	e.prof.remove(c)
	e.deleted++
}

// insertColumn makes a new column at c. Every row that spans it gets
// a gap there and rows starting at or after c move one to the right.
// Row skip is the one that asked for the column and is being rebuilt.
func (e *engine) insertColumn(c, skip int) {
	e.prof.insert(c)
	for i := range e.rows {
		if i == skip {
			continue
		}
		r := &e.rows[i]
		switch {
		case r.start < c && c < r.end():
			k := c - r.start
			r.cells = append(r.cells, 0)
			copy(r.cells[k+1:], r.cells[k:])
			r.cells[k] = e.gap
			if r.inProf {
				e.prof.cols[c][e.gap]++
			}
		case r.start >= c:
			r.start++
		}
	}
	e.ref = append(e.ref, 0)
	copy(e.ref[c+1:], e.ref[c:])
	e.ref[c] = e.gap
	if e.refOn {
		e.prof.cols[c][e.gap]++
	}
	e.inserted++
}

// dropEmpty removes columns in the span of row k (already out of the
// profile) that no longer hold a base. These are insertions that only
// this read wanted, or columns where it and everybody else has a gap.
// Columns nobody else covers are left alone.
func (e *engine) dropEmpty(k int) {
	r := &e.rows[k]
	for c := r.end() - 1; c >= r.start; c-- {
		if e.prof.bases(c) != 0 {
			continue
		}
		if e.prof.gaps(c) > 0 || r.cells[c-r.start] == e.gap {
			e.deleteColumn(c)
		}
	}
}

// A job is one read being realigned. The window is stored relative to
// the start of the row, since other reads in the same batch may move
// it before it is applied.
type job struct {
	k      int
	off    int // window start minus row start
	n      int // window length
	lo, hi int
	sc     score.Scorer
	res    band.Result
	old    []uint8 // cells before the step
	moved  bool    // start or gaps are different afterwards
}

// window is where row k may go, given its present position.
func (e *engine) window(k int) (ws, we int) {
	r := &e.rows[k]
	bw := e.cfg.Bandwidth
	return max(0, r.start-bw), min(len(e.ref), r.end()+bw)
}

// scorer is the combined fractional and consensus scheme.
func (e *engine) scorer(win *score.Window, read []uint8) score.Scorer {
	frac := score.NewFractional(win, read, e.sub, e.gaps)
	cons := score.NewConsensus(win, read, e.sub, e.gaps)
	return score.NewWeighted([]float32{e.cfg.FracWeight, e.cfg.ConsWeight}, frac, cons)
}

// prepare takes row k out of the profile and sets up its alignment.
func (e *engine) prepare(k int) *job {
	r := &e.rows[k]
	old := append([]uint8(nil), r.cells...)
	e.prof.add(r.start, r.cells, -1)
	r.inProf = false
	e.dropEmpty(k)
	ws, we := e.window(k)
	m := len(r.bases)
	g := len(r.cells) - m
	d0 := r.start - ws
	bw := e.cfg.Bandwidth
	j := &job{k: k, off: ws - r.start, n: we - ws, old: old}
	j.lo = d0 - bw + min(g, 0)
	j.hi = d0 + max(g, 0) + bw
	j.sc = e.scorer(e.prof.window(ws, we), r.bases)
	return j
}

func (j *job) align(e *engine) error {
	m := len(e.rows[j.k].bases)
	res, err := band.Align(m, j.n, j.sc, j.lo, j.hi)
	if err != nil {
		return fmt.Errorf("contig %s, read %d: %w", e.name, j.k, err)
	}
	j.res = res
	return nil
}

// apply puts the read back along its new path, making columns for
// insertions, and counts it in the profile again.
func (e *engine) apply(j *job) {
	r := &e.rows[j.k]
	col := r.start + j.off + j.res.Begin
	start := col
	cells := make([]uint8, 0, len(j.res.Ops))
	i := 0
	for _, op := range j.res.Ops {
		switch op {
		case band.Match:
			cells = append(cells, r.bases[i])
			i++
		case band.Del:
			cells = append(cells, e.gap)
		case band.Ins:
			e.insertColumn(col, j.k)
			cells = append(cells, r.bases[i])
			i++
		}
		col++
	}
	j.moved = start != r.start || !bytes.Equal(cells, j.old)
	r.start, r.cells = start, cells
	e.prof.add(r.start, r.cells, 1)
	r.inProf = true
}

// batch collects rows from k on whose windows do not overlap, so they
// can be aligned at the same time and give the same answer as doing
// them one after the other. Windows are taken before any row is
// removed. Removal only shrinks them.
func (e *engine) batch(k int) []int {
	b := []int{k}
	if e.cfg.Workers < 2 {
		return b
	}
	type span struct{ b, e int }
	ws, we := e.window(k)
	taken := []span{{ws, we}}
	maxBatch := 4 * e.cfg.Workers
	for next := k + 1; next < len(e.rows) && len(b) < maxBatch; next++ {
		if len(e.rows[next].bases) == 0 {
			b = append(b, next)
			continue
		}
		ws, we := e.window(next)
		for _, s := range taken {
			if ws < s.e && s.b < we {
				return b
			}
		}
		taken = append(taken, span{ws, we})
		b = append(b, next)
	}
	return b
}

// iterate is one pass over all reads. It returns the number of reads
// that moved or changed their gaps. Being pushed along by columns that
// came or went elsewhere does not count.
func (e *engine) iterate() (int, float64, error) {
	var total float64
	changed := 0
	for k := 0; k < len(e.rows); {
		members := e.batch(k)
		jobs := make([]*job, 0, len(members))
		for _, i := range members {
			if len(e.rows[i].bases) > 0 {
				jobs = append(jobs, e.prepare(i))
			}
		}
		if len(jobs) == 1 || e.cfg.Workers < 2 {
			for _, j := range jobs {
				if err := j.align(e); err != nil {
					return 0, 0, err
				}
			}
		} else {
			var g errgroup.Group
			g.SetLimit(e.cfg.Workers)
			for _, j := range jobs {
				j := j
				g.Go(func() error { return j.align(e) })
			}
			if err := g.Wait(); err != nil {
				return 0, 0, err
			}
		}
		for _, j := range jobs { // one writer, in load order
			e.apply(j)
			total += float64(j.res.Score)
			if j.moved {
				changed++
			}
		}
		k += len(members)
	}
	return changed, total, nil
}

// finish throws away columns without bases, unless the contig had
// something to say about an uncovered column, and writes consensus and
// placements back.
func (e *engine) finish(contig *store.Contig, placements []store.Placement,
	reads store.ReadStore) error {
	for c := len(e.ref) - 1; c >= 0; c-- {
		if e.prof.bases(c) > 0 {
			continue
		}
		uncovered := e.prof.gaps(c) == 0
		if uncovered && e.hasSeq && e.ref[c] != e.gap {
			continue
		}
		e.deleteColumn(c)
	}
	cons := make([]byte, len(e.ref))
	for c := range cons {
		if m := e.prof.major(c); m >= 0 {
			cons[c] = e.alpha.Letter(uint8(m))
		} else {
			cons[c] = e.alpha.Letter(e.ref[c])
		}
	}
	newPlc := make([]store.Placement, len(placements))
	copy(newPlc, placements)
	for _, r := range e.rows {
		p := &newPlc[r.plc]
		rev := p.Reverse()
		p.Gaps = rowGaps(r.cells, e.gap)
		p.Begin, p.End = r.start, r.end()
		if rev {
			p.Begin, p.End = p.End, p.Begin
		}
	}
	tmp := store.Contig{Name: contig.Name, Seq: cons, HasSeq: true}
	for i := range newPlc {
		p := &newPlc[i]
		if err := store.Validate(p, &reads[p.Read], &tmp); err != nil {
			return fmt.Errorf("program bug after realigning contig %s: %w", contig.Name, err)
		}
	}
	contig.Seq, contig.HasSeq = cons, true
	copy(placements, newPlc)
	return nil
}

// rowGaps goes from cells to a gap list.
func rowGaps(cells []uint8, gap uint8) []store.Gap {
	var gaps []store.Gap
	n := 0
	for _, c := range cells {
		if c != gap {
			n++
			continue
		}
		if k := len(gaps); k > 0 && gaps[k-1].Pos == n {
			gaps[k-1].Len++
		} else {
			gaps = append(gaps, store.Gap{Pos: n, Len: 1})
		}
	}
	return gaps
}

// single is a contig of one read. The read is the consensus, also on a
// contig with its own sequence: reference columns are dropped and the
// read starts at 0. IncludeReference does not change that.
func single(contig *store.Contig, p *store.Placement, rd *store.Read) {
	s := store.Oriented(p, rd)
	alpha := alphabetOf([][]byte{s})
	contig.Seq = alpha.Decode(alpha.Encode(s))
	contig.HasSeq = true
	p.Gaps = nil
	if p.Reverse() {
		p.Begin, p.End = len(s), 0
	} else {
		p.Begin, p.End = 0, len(s)
	}
}

// RealignContig realigns the reads in placements, which all belong
// to contig, and changes both in place. On an error, neither is
// touched.
func RealignContig(contig *store.Contig, placements []store.Placement, reads store.ReadStore,
	cfg Config) (*Stats, error) {
	cfg.fill()
	stats := &Stats{}
	switch len(placements) {
	case 0:
		return stats, fmt.Errorf("contig %s: %w", contig.Name, ErrEmptyContig)
	case 1:
		p := &placements[0]
		if err := store.Validate(p, &reads[p.Read], contig); err != nil {
			return stats, err
		}
		single(contig, p, &reads[p.Read])
		return stats, nil
	}

	e, err := newEngine(contig, placements, reads, cfg)
	if err != nil {
		return stats, err
	}
	len0 := len(e.ref)
	total := 0
	for _, r := range e.rows {
		total += len(r.bases)
	}
	logger := log.WithFields(log.Fields{"contig": contig.Name, "reads": len(e.rows)})

	for it := 0; it < cfg.MaxIter; it++ {
		n, scr, err := e.iterate()
		if err != nil {
			return stats, err
		}
		stats.Iterations++
		stats.Changed = append(stats.Changed, n)
		stats.Score = scr
		logger.Debugf("iteration %d changed %d columns %d score %.1f", it+1, n, len(e.ref), scr)
		if diff := len(e.ref) - len0; float64(abs(diff)) > cfg.Divergence*float64(total) {
			return stats, fmt.Errorf("contig %s went from %d to %d columns: %w",
				contig.Name, len0, len(e.ref), ErrDivergence)
		}
		if n == 0 {
			break
		}
	}
	if err := e.finish(contig, placements, reads); err != nil {
		return stats, err
	}
	stats.Inserted, stats.Deleted = e.inserted, e.deleted
	return stats, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
