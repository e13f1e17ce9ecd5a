// 11 Oct 2026

package writer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/andrew-torda/seqcons/pkg/store"
)

// WriteTabular writes the old line based layout. Per contig
//
//	#contig	name	ncol
//	consensus	gapped consensus
//	read	name	begin	end	gapped read
//
// with one read line per placement.
func WriteTabular(w io.Writer, st *store.Store, skip []bool) error {
	bw := bufio.NewWriter(w)
	for _, part := range contigs(st, skip) {
		ctg := &st.Contigs[part.Contig]
		fmt.Fprintf(bw, "#contig\t%s\t%d\n", ctg.Name, len(ctg.Seq))
		fmt.Fprintf(bw, "consensus\t%s\n", ctg.Seq)
		for _, t := range part.Tuples {
			p := &st.Placements[t.Placement]
			r := &st.Reads[p.Read]
			fmt.Fprintf(bw, "read\t%s\t%d\t%d\t%s\n", r.Name, p.Begin, p.End, store.Replay(p, r))
		}
	}
	return bw.Flush()
}
