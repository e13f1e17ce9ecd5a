// 9 Oct 2026

// Package loader reads reads, layouts and contigs into a store.Store.
// There are three kinds of input. A plain list of reads (FASTA or
// FASTQ) which may carry approximate positions, an AMOS message file
// and a SAM file with an optional reference.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/dustin/go-humanize"
	"github.com/edsrzf/mmap-go"
	log "github.com/sirupsen/logrus"
)

var (
	ErrFormat       = errors.New("bad input format")
	ErrMissingInput = errors.New("no input given, want one of reads, afg or sam")
)

// Input names the files. Exactly one of Reads, Afg and Sam is set.
// Contigs only goes with Sam.
type Input struct {
	Reads   string
	Afg     string
	Sam     string
	Contigs string
}

// Load reads whatever in says and checks the result.
func Load(in Input) (*store.Store, error) {
	n := 0
	for _, s := range []string{in.Reads, in.Afg, in.Sam} {
		if s != "" {
			n++
		}
	}
	switch {
	case n == 0:
		return nil, ErrMissingInput
	case n > 1:
		return nil, fmt.Errorf("reads, afg and sam are mutually exclusive: %w", ErrMissingInput)
	}
	var st *store.Store
	var err error
	switch {
	case in.Reads != "":
		st, err = LoadReads(in.Reads)
	case in.Afg != "":
		st, err = LoadAfg(in.Afg)
	default:
		st, err = LoadSam(in.Sam, in.Contigs)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("after loading: %w", err)
	}
	log.Infof("loaded %s reads, %s contigs, %s placements", humanize.Comma(int64(len(st.Reads))),
		humanize.Comma(int64(len(st.Contigs))), humanize.Comma(int64(len(st.Placements))))
	return st, nil
}

// withMap maps a file read-only and hands the bytes to f. The bytes
// go away when f returns, so f must copy what it keeps. An empty file
// cannot be mapped, so f gets an empty slice.
func withMap(fname string, f func([]byte) error) error {
	fp, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer fp.Close()
	fi, err := fp.Stat()
	if err != nil {
		return err
	}
	if fi.Size() == 0 {
		return f(nil)
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("mapping %s: %w", fname, err)
	}
	defer mm.Unmap()
	return f(mm)
}
