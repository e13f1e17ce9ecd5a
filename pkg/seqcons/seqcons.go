// 12 Oct 2026

// Package seqcons runs the whole pipeline. Load reads and a layout,
// maybe build the layout from overlaps, realign each contig and write
// the result.
package seqcons

import (
	"errors"
	"fmt"

	"github.com/andrew-torda/seqcons/pkg/layout"
	"github.com/andrew-torda/seqcons/pkg/loader"
	"github.com/andrew-torda/seqcons/pkg/realign"
	"github.com/andrew-torda/seqcons/pkg/score"
	"github.com/andrew-torda/seqcons/pkg/seq/common"
	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/andrew-torda/seqcons/pkg/writer"
	"github.com/dustin/go-humanize"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
)

const (
	MethodRealign = "realign" // improve the layout we were given
	MethodMsa     = "msa"     // throw the layout away and start from overlaps
)

var ErrUsage = errors.New("bad command line value")

// CmdFlag is literally command line flags after parsing
type CmdFlag struct {
	Reads, Afg, Sam string // exactly one of these
	Contigs         string // reference sequences for Sam
	Outfile         string
	Method          string
	Bandwidth       int
	MatchLength     int
	Quality         int
	Overlaps        int
	Window          int
	Include         bool // count the reference as a row
	Rmethod         string
	Iter            int
	Threads         int    // contigs done at once
	Workers         int    // goroutines within one contig
	Submat          string // substitution matrix file
	Verbosity       int
	Profile         string // cpu or mem
}

// Defaults gives the flags one gets without asking for anything.
func Defaults() CmdFlag {
	return CmdFlag{
		Method:      MethodRealign,
		Bandwidth:   realign.DefaultBandwidth,
		MatchLength: layout.DefaultMatchLength,
		Quality:     layout.DefaultQuality,
		Overlaps:    layout.DefaultOverlaps,
		Rmethod:     realign.Gotoh.String(),
		Iter:        realign.DefaultMaxIter,
		Threads:     1,
		Workers:     1,
	}
}

// config checks the flags and turns them into realignment settings.
func (f *CmdFlag) config() (realign.Config, error) {
	cfg := realign.DefaultConfig()
	bad := func(name string, v any) (realign.Config, error) {
		return cfg, fmt.Errorf("%s %v: %w", name, v, ErrUsage)
	}
	switch {
	case f.Method != MethodRealign && f.Method != MethodMsa:
		return bad("method", f.Method)
	case f.Bandwidth < 0:
		return bad("bandwidth", f.Bandwidth)
	case f.Iter < 1:
		return bad("iter", f.Iter)
	case f.Threads < 1:
		return bad("threads", f.Threads)
	case f.Workers < 1:
		return bad("workers", f.Workers)
	case f.Quality < 0 || f.Quality > 100:
		return bad("quality", f.Quality)
	case f.Method == MethodMsa && f.MatchLength < 1:
		return bad("matchlength", f.MatchLength)
	case f.Overlaps < 1:
		return bad("overlaps", f.Overlaps)
	case f.Window < 0:
		return bad("window", f.Window)
	case f.Outfile == "":
		return bad("outfile", `""`)
	}
	if err := writer.Check(f.Outfile); err != nil {
		return cfg, fmt.Errorf("%v: %w", err, ErrUsage)
	}
	m, err := realign.ParseMethod(f.Rmethod)
	if err != nil {
		return cfg, fmt.Errorf("%v: %w", err, ErrUsage)
	}
	cfg.Method = m
	if f.Submat != "" {
		if cfg.Submat, err = score.ReadSubmat(f.Submat); err != nil {
			return cfg, fmt.Errorf("%v: %w", err, ErrUsage)
		}
	}
	cfg.Bandwidth = f.Bandwidth
	cfg.MaxIter = f.Iter
	cfg.Workers = f.Workers
	cfg.IncludeReference = f.Include && f.Method == MethodRealign
	return cfg, nil
}

func setLogLevel(v int) {
	switch {
	case v <= 0:
		log.SetLevel(log.WarnLevel)
	case v == 1:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.DebugLevel)
	}
}

// startProfile returns something to Stop().
func startProfile(kind string) (interface{ Stop() }, error) {
	switch kind {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet), nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet), nil
	}
	return nil, fmt.Errorf("profile %q, want cpu or mem: %w", kind, ErrUsage)
}

// msaLayout replaces whatever layout we have with one built from
// overlaps. Positions we were given only help choose candidate pairs.
func msaLayout(st *store.Store, f *CmdFlag, sm *score.Submat) {
	ocfg := layout.OverlapConfig{
		MatchLength: f.MatchLength,
		Quality:     f.Quality,
		Overlaps:    f.Overlaps,
		Window:      f.Window,
		Submat:      sm,
	}
	if len(st.Placements) > 0 && f.Window > 0 {
		ocfg.Approx = make([]int, len(st.Reads))
		for i := range ocfg.Approx {
			ocfg.Approx[i] = -1
		}
		for _, p := range st.Placements {
			if ocfg.Approx[p.Read] < 0 {
				ocfg.Approx[p.Read] = p.Start()
			}
		}
	}
	ovl := layout.Overlaps(st.Reads, ocfg)
	st.Contigs, st.Placements = layout.Build(st.Reads, ovl)
	log.Infof("overlaps put %s reads on %s contigs", humanize.Comma(int64(len(st.Reads))),
		humanize.Comma(int64(len(st.Contigs))))
}

// ExitCode is what the shell gets back. Bad flag values are a failure
// like any other.
func ExitCode(err error) int {
	if err != nil {
		return common.ExitFailure
	}
	return common.ExitSuccess
}

// Mymain is called from main. It is a separate function so we can
// test it.
func Mymain(flags *CmdFlag) error {
	setLogLevel(flags.Verbosity)
	if flags.Profile != "" {
		p, err := startProfile(flags.Profile)
		if err != nil {
			return err
		}
		defer p.Stop()
	}
	cfg, err := flags.config()
	if err != nil {
		return err
	}
	st, err := loader.Load(loader.Input{Reads: flags.Reads, Afg: flags.Afg,
		Sam: flags.Sam, Contigs: flags.Contigs})
	if err != nil {
		return err
	}
	if flags.Method == MethodMsa {
		msaLayout(st, flags, cfg.Submat)
	}
	skip, err := RealignAll(st, cfg, flags.Threads)
	if err != nil {
		return err
	}
	return writer.Write(st, flags.Outfile, skip)
}
