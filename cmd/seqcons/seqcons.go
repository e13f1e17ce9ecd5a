// 12 Oct 2026

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path"

	. "github.com/andrew-torda/seqcons/pkg/seq/common"
	"github.com/andrew-torda/seqcons/pkg/seqcons"
)

func usage(f *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage:", path.Base(os.Args[0]),
		"[flags] --reads|--afg|--sam file --outfile file")
	f.PrintDefaults()
}

func main() {
	flags := seqcons.Defaults()
	f := flag.NewFlagSet("seqcons", flag.ContinueOnError)
	f.StringVar(&flags.Reads, "reads", "", "FASTA or FASTQ reads, maybe with positions")
	f.StringVar(&flags.Afg, "afg", "", "AMOS message file with reads and layout")
	f.StringVar(&flags.Sam, "sam", "", "SAM file of reads aligned to contigs")
	f.StringVar(&flags.Contigs, "contigs", "", "FASTA file of contig sequences, goes with -sam")
	f.StringVar(&flags.Outfile, "outfile", "", "output file, .seqan, .afg, .sam, .fa or .fasta")
	f.StringVar(&flags.Method, "method", flags.Method, "realign or msa")
	f.IntVar(&flags.Bandwidth, "bandwidth", flags.Bandwidth, "band half width around each read")
	f.IntVar(&flags.MatchLength, "matchlength", flags.MatchLength, "msa: length of shared word for an overlap")
	f.IntVar(&flags.Quality, "quality", flags.Quality, "msa: percent identity of an overlap")
	f.IntVar(&flags.Overlaps, "overlaps", flags.Overlaps, "msa: overlaps kept per read")
	f.IntVar(&flags.Window, "window", flags.Window, "msa: also try reads with starts this close")
	f.BoolVar(&flags.Include, "include", false, "include the contig sequence as a row")
	f.StringVar(&flags.Rmethod, "rmethod", flags.Rmethod, "nw or gotoh")
	f.IntVar(&flags.Iter, "iter", flags.Iter, "maximum realignment passes")
	f.IntVar(&flags.Threads, "threads", flags.Threads, "contigs realigned at once")
	f.IntVar(&flags.Workers, "workers", flags.Workers, "goroutines within a contig")
	f.StringVar(&flags.Submat, "submat", "", "substitution matrix file, default match/mismatch or BLOSUM62 for protein")
	f.IntVar(&flags.Verbosity, "v", 0, "verbosity, 1 for progress, 2 for debugging")
	f.StringVar(&flags.Profile, "profile", "", "cpu or mem profile, written to the current directory")
	f.Usage = func() { usage(f) }
	if err := f.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(ExitSuccess)
		}
		os.Exit(ExitFailure)
	}
	if f.NArg() != 0 {
		usage(f)
		os.Exit(ExitFailure)
	}
	err := seqcons.Mymain(&flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(seqcons.ExitCode(err))
}
