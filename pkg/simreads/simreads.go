// 12 Oct 2026

// Package simreads makes a random genome and reads sampled from it,
// with sequencing errors and badly reported positions. The output is
// the plain list of reads the loader understands, so it is mostly for
// feeding the realigner in tests and benchmarks.
//
// We do not work with store structures. Reads are byte slices with a
// position.
package simreads

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/andrew-torda/seqcons/pkg/seq"
	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

var dnaAlfbt = []byte{'A', 'C', 'G', 'T'}

// Config says what reads we want. Rates are per base.
type Config struct {
	Nread   int     // number of reads
	Len     int     // bases of genome each read covers
	Sub     float32 // substitution rate
	Ins     float32 // insertion rate
	Del     float32 // deletion rate
	Jitter  int     // reported start is off by up to this much
	RevFrac float32 // fraction of reads from the reverse strand
	Tiled   bool    // evenly spaced, otherwise uniformly random
}

// SimRead is one simulated read. Begin and End are what we report,
// backwards for a reverse strand read. At is where it really came from.
type SimRead struct {
	Name       string
	Seq        []byte
	Begin, End int
	At         int
	Rev        bool
}

// Genome returns n random bases.
func Genome(n int, rnd *rand.Rand) []byte {
	g := make([]byte, n)
	for i := range g {
		g[i] = dnaAlfbt[rnd.Intn(len(dnaAlfbt))]
	}
	return g
}

// Mutate changes some characters in s randomly. Rate is the probability
// of a change. The change happens in place, so you probably want to
// act on a copy. Return the number of positions that were changed.
func Mutate(rate float32, s []byte, rnd *rand.Rand) (n int) {
	for i, cOld := range s {
		if rnd.Float32() < rate {
			n++
			a := cOld
			for ; a == cOld; a = dnaAlfbt[rnd.Intn(len(dnaAlfbt))] {
			}
			s[i] = a
		}
	}
	return n
}

// DelRand deletes each character with probability rate. It works in
// place.
func DelRand(rate float32, s []byte, rnd *rand.Rand) []byte {
	k := 0
	for _, c := range s {
		if rnd.Float32() >= rate {
			s[k] = c
			k++
		}
	}
	return s[:k]
}

// DelN deletes n different characters. The deletion happens in place.
func DelN(n int, s []byte, rnd *rand.Rand) ([]byte, error) {
	if n < 0 {
		return nil, errors.New("DelN given negative number of places to delete")
	}
	if n >= len(s) {
		return nil, errors.New("simreads: n to delete as big as original slice")
	}
	delme := make([]bool, len(s))
	for i := 0; i < n; {
		if k := rnd.Intn(len(s)); !delme[k] {
			delme[k], i = true, i+1
		}
	}
	k := 0
	for i, c := range s {
		if !delme[i] {
			s[k] = c
			k++
		}
	}
	return s[:k], nil
}

// insertOne puts b before index pos. Inserting at len(s) appends.
func insertOne(pos int, s []byte, b byte) []byte {
	pos = min(pos, len(s))
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = b
	return s
}

// InsN inserts n random bases at random places.
func InsN(n int, s []byte, rnd *rand.Rand) []byte {
	for i := 0; i < n; i++ {
		s = insertOne(rnd.Intn(len(s)+1), s, dnaAlfbt[rnd.Intn(len(dnaAlfbt))])
	}
	return s
}

// InsRand puts a random base after each character with probability rate.
func InsRand(rate float32, s []byte, rnd *rand.Rand) []byte {
	t := make([]byte, 0, len(s)+len(s)/8)
	for _, c := range s {
		t = append(t, c)
		if rnd.Float32() < rate {
			t = append(t, dnaAlfbt[rnd.Intn(len(dnaAlfbt))])
		}
	}
	return t
}

// Sample takes reads from genome g.
func Sample(g []byte, cfg *Config, rnd *rand.Rand) ([]SimRead, error) {
	if cfg.Len < 1 || cfg.Len > len(g) {
		return nil, fmt.Errorf("read length %d, genome length %d", cfg.Len, len(g))
	}
	width := len(fmt.Sprint(cfg.Nread))
	last := len(g) - cfg.Len
	reads := make([]SimRead, cfg.Nread)
	for i := range reads {
		at := rnd.Intn(last + 1)
		if cfg.Tiled {
			at = 0
			if cfg.Nread > 1 {
				at = i * last / (cfg.Nread - 1)
			}
		}
		s := make([]byte, cfg.Len)
		copy(s, g[at:at+cfg.Len])
		Mutate(cfg.Sub, s, rnd)
		s = DelRand(cfg.Del, s, rnd)
		s = InsRand(cfg.Ins, s, rnd)
		r := SimRead{Name: fmt.Sprintf("r%0*d", width, i), Seq: s, At: at}
		start := at
		if cfg.Jitter > 0 {
			start = max(0, at+rnd.Intn(2*cfg.Jitter+1)-cfg.Jitter)
		}
		r.Begin, r.End = start, start+len(s)
		if rnd.Float32() < cfg.RevFrac {
			r.Rev = true
			r.Seq = seq.RevComp(s)
			r.Begin, r.End = r.End, r.Begin
		}
		reads[i] = r
	}
	return reads, nil
}

// Write puts reads out as FASTA with "begin,end contig=name" as the
// description.
func Write(w io.Writer, reads []SimRead, contig string) error {
	fw := fasta.NewWriter(w, 60)
	for _, r := range reads {
		s := linear.NewSeq(r.Name, alphabet.BytesToLetters(r.Seq), alphabet.DNA)
		s.Desc = fmt.Sprintf("%d,%d", r.Begin, r.End)
		if contig != "" {
			s.Desc += " contig=" + contig
		}
		if _, err := fw.Write(s); err != nil {
			return err
		}
	}
	return nil
}

// Args is what the command line gives us.
type Args struct {
	Cfg     Config
	GLen    int       // genome length
	Iseed   int64     // random number seed
	Contig  string    // contig name written with each read
	Wrtr    io.Writer // where reads go
	GenWrtr io.Writer // where the genome goes, may be nil
}

// Main makes a genome and writes reads from it.
func Main(args *Args) error {
	rnd := rand.New(rand.NewSource(args.Iseed))
	g := Genome(args.GLen, rnd)
	reads, err := Sample(g, &args.Cfg, rnd)
	if err != nil {
		return err
	}
	if args.GenWrtr != nil {
		fw := fasta.NewWriter(args.GenWrtr, 60)
		name := args.Contig
		if name == "" {
			name = "genome"
		}
		if _, err := fw.Write(linear.NewSeq(name, alphabet.BytesToLetters(g), alphabet.DNA)); err != nil {
			return err
		}
	}
	return Write(args.Wrtr, reads, args.Contig)
}
