// 12 Oct 2026

package seqcons

import (
	"errors"

	"github.com/andrew-torda/seqcons/pkg/layout"
	"github.com/andrew-torda/seqcons/pkg/realign"
	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// result is what one worker hands back. If keep is false, the contig
// and placements are left as they were.
type result struct {
	contig store.Contig
	plc    []store.Placement
	stats  *realign.Stats
	keep   bool
	empty  bool
}

// RealignAll realigns every contig, threads of them at a time. Each
// worker gets its own copy of a contig and its placements. Results go
// back into st in contig order once everyone has finished, so the
// answer does not depend on scheduling. A contig without reads, or
// one whose consensus runs away, is not fatal. The returned skip[c]
// is true for contigs that had no reads.
func RealignAll(st *store.Store, cfg realign.Config, threads int) ([]bool, error) {
	parts := layout.Partition(st)
	results := make([]result, len(parts))
	var g errgroup.Group
	g.SetLimit(max(1, threads))
	for i := range parts {
		g.Go(func() error {
			part := &parts[i]
			ctg := st.Contigs[part.Contig]
			ctg.Seq = append([]byte(nil), ctg.Seq...)
			plc := part.Placements(st)
			stats, err := realign.RealignContig(&ctg, plc, st.Reads, cfg)
			res := &results[i]
			switch {
			case errors.Is(err, realign.ErrEmptyContig):
				log.Infof("contig %s has no reads, not written", ctg.Name)
				res.empty = true
			case errors.Is(err, realign.ErrDivergence):
				log.Warnf("%v, keeping the original layout", err)
			case err != nil:
				return err
			default:
				*res = result{contig: ctg, plc: plc, stats: stats, keep: true}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	skip := make([]bool, len(st.Contigs))
	var nDone, nKept, nEmpty int64
	for i, res := range results {
		part := &parts[i]
		switch {
		case res.empty:
			skip[part.Contig] = true
			nEmpty++
		case !res.keep:
			nKept++
		default:
			st.Contigs[part.Contig] = res.contig
			part.PutBack(st, res.plc)
			nDone++
			log.WithFields(log.Fields{"contig": res.contig.Name, "iterations": res.stats.Iterations}).
				Infof("%s columns inserted, %s deleted", humanize.Comma(int64(res.stats.Inserted)),
					humanize.Comma(int64(res.stats.Deleted)))
		}
	}
	log.Infof("realigned %s contigs, %s left as they were, %s empty",
		humanize.Comma(nDone), humanize.Comma(nKept), humanize.Comma(nEmpty))
	return skip, nil
}
