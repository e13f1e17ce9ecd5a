// 11 Oct 2026

// Package writer puts a realigned store on disk. The format comes
// from the file name. A .sam file gets a FASTA file of consensus
// sequences beside it, since SAM has nowhere to keep them.
package writer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrew-torda/seqcons/pkg/layout"
	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	log "github.com/sirupsen/logrus"
)

var (
	ErrIO     = errors.New("writing output")
	ErrFormat = errors.New("unknown output format")
)

const lineLen = 60 // for wrapping sequences

type writeFunc func(w io.Writer, st *store.Store, skip []bool) error

// formats maps file name extensions to writers.
var formats = map[string]writeFunc{
	".seqan": WriteTabular,
	".afg":   WriteAfg,
	".sam":   WriteSam,
	".fa":    WriteFasta,
	".fasta": WriteFasta,
}

// ConsensusName is the name of the FASTA file that goes with a SAM file.
func ConsensusName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".consensus.fasta"
}

// Check says if we know how to write a file called path.
func Check(path string) error {
	if _, ok := formats[strings.ToLower(filepath.Ext(path))]; !ok {
		return fmt.Errorf("%s: want .seqan, .afg, .sam, .fa or .fasta: %w", path, ErrFormat)
	}
	return nil
}

// Write writes st to path. If skip[c] is true, contig c and the reads
// on it are left out. skip may be shorter than the list of contigs.
func Write(st *store.Store, path string, skip []bool) error {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := formats[ext]
	if !ok {
		return fmt.Errorf("%s: extension %q: %w", path, ext, ErrFormat)
	}
	if err := toFile(path, func(w io.Writer) error { return f(w, st, skip) }); err != nil {
		return err
	}
	if ext == ".sam" {
		cname := ConsensusName(path)
		err := toFile(cname, func(w io.Writer) error { return WriteFasta(w, st, skip) })
		if err != nil {
			return err
		}
		log.Infof("wrote %s and %s", path, cname)
		return nil
	}
	log.Infof("wrote %s", path)
	return nil
}

// toFile creates path, gives f a buffered writer and makes sure
// everything gets to disk.
func toFile(path string, f func(io.Writer) error) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrIO)
	}
	w := bufio.NewWriter(fp)
	if err := f(w); err != nil {
		fp.Close()
		if errors.Is(err, ErrIO) {
			return err
		}
		return fmt.Errorf("%s: %v: %w", path, err, ErrIO)
	}
	if err := w.Flush(); err != nil {
		fp.Close()
		return fmt.Errorf("%s: %v: %w", path, err, ErrIO)
	}
	if err := fp.Close(); err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, ErrIO)
	}
	return nil
}

func skipped(skip []bool, c int) bool { return c < len(skip) && skip[c] }

// contigs gives the placements of each contig we are going to write.
func contigs(st *store.Store, skip []bool) []layout.ContigReads {
	parts := layout.Partition(st)
	keep := parts[:0]
	for _, p := range parts {
		if !skipped(skip, p.Contig) {
			keep = append(keep, p)
		}
	}
	return keep
}

// WriteFasta writes ungapped consensus sequences.
func WriteFasta(w io.Writer, st *store.Store, skip []bool) error {
	fw := fasta.NewWriter(w, lineLen)
	for c := range st.Contigs {
		if skipped(skip, c) {
			continue
		}
		ctg := &st.Contigs[c]
		s, _ := ctg.Ungapped()
		lseq := linear.NewSeq(ctg.Name, alphabet.BytesToLetters(s), alphabet.DNAredundant)
		if _, err := fw.Write(lseq); err != nil {
			return err
		}
	}
	return nil
}

// wrapped writes s in lines of at most lineLen.
func wrapped(w *bufio.Writer, s []byte) {
	for len(s) > lineLen {
		w.Write(s[:lineLen])
		w.WriteByte('\n')
		s = s[lineLen:]
	}
	if len(s) > 0 {
		w.Write(s)
		w.WriteByte('\n')
	}
}
