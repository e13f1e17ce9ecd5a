// 12 Oct 2026

package main

import (
	"flag"
	"fmt"
	"os"

	. "github.com/andrew-torda/seqcons/pkg/seq/common"
	"github.com/andrew-torda/seqcons/pkg/simreads"
)

func main() {
	f := flag.NewFlagSet("simreads", flag.ExitOnError)
	const iseed int64 = 1637
	var args simreads.Args
	var outfile, genfile string
	var sub, ins, del, rev float64

	f.IntVar(&args.Cfg.Nread, "n", 100, "number of reads")
	f.IntVar(&args.Cfg.Len, "l", 100, "read length")
	f.IntVar(&args.GLen, "g", 2000, "genome length")
	f.Int64Var(&args.Iseed, "s", iseed, "random number seed")
	f.Float64Var(&sub, "sub", 0.01, "substitution rate per base")
	f.Float64Var(&ins, "ins", 0.005, "insertion rate per base")
	f.Float64Var(&del, "del", 0.005, "deletion rate per base")
	f.IntVar(&args.Cfg.Jitter, "j", 3, "reported positions are off by up to this much")
	f.Float64Var(&rev, "r", 0.5, "fraction of reverse strand reads")
	f.BoolVar(&args.Cfg.Tiled, "t", false, "evenly spaced reads")
	f.StringVar(&args.Contig, "c", "", "contig name to write with each read")
	f.StringVar(&outfile, "o", "", "output file, default stdout")
	f.StringVar(&genfile, "genome", "", "also write the genome here")
	if err := f.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(f.Output(), err)
		os.Exit(ExitUsageError)
	}
	args.Cfg.Sub, args.Cfg.Ins, args.Cfg.Del = float32(sub), float32(ins), float32(del)
	args.Cfg.RevFrac = float32(rev)

	args.Wrtr = os.Stdout
	if outfile != "" && outfile != "-" {
		fp, err := os.Create(outfile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "file for output:", err)
			os.Exit(ExitFailure)
		}
		defer fp.Close()
		args.Wrtr = fp
	}
	if genfile != "" {
		fp, err := os.Create(genfile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "file for genome:", err)
			os.Exit(ExitFailure)
		}
		defer fp.Close()
		args.GenWrtr = fp
	}
	if err := simreads.Main(&args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitFailure)
	}
}
