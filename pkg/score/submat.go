// 23 Feb 2018, 5 Oct 2026
// Substitution matrices, read from a file or built in.

package score

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/andrew-torda/matrix"
	"github.com/andrew-torda/seqcons/pkg/seq"
)

// Submat is a square table of scores with a map from letters to rows.
type Submat struct {
	mat  *matrix.FMatrix2d
	cmap [128]int8
}

const notset int8 = -1

// ErrSubmat is wrapped by everything that goes wrong reading a matrix.
var ErrSubmat = errors.New("substitution matrix")

// CmmtScanner is a wrapper around bufio.Scanner that will ignore anything
// after a comment character and remove leading and trailing white space.
type CmmtScanner struct {
	bufio.Scanner
	cmmt byte // Comment character
}

// NewCmmtScanner is a wrapper around scanner, but
//   - jumps over blank lines
//   - removes leading spaces
//   - removes anything after a comment character
func NewCmmtScanner(r io.Reader, cmmt byte) *CmmtScanner {
	s := bufio.NewScanner(r)
	return &CmmtScanner{*s, cmmt}
}

// CBytes presents exactly the same interface as scanner.Bytes, but
// has to do a bit more work.
// If the line is empty after removing comments and space, we call
// Scan again. Like Bytes, this works in the i/o buffer.
func (s *CmmtScanner) CBytes() []byte {
	ok := true
	for b := s.Bytes(); ok; ok, b = s.Scan(), s.Bytes() {
		if i := bytes.IndexByte(b, s.cmmt); i >= 0 {
			b = b[:i]
		}
		b = bytes.TrimSpace(b)
		if len(b) > 0 {
			return b
		}
	}
	return nil
}

// alfbtLine reads the first line, which has the letters. Each field
// has to be one character long.
func alfbtLine(inline []byte, submat *Submat) (int, error) {
	cmap := submat.cmap[:]
	for i := range cmap {
		cmap[i] = notset
	}
	f := bytes.Fields(inline)
	if len(f) == 0 {
		return 0, fmt.Errorf("no alphabet line: %w", ErrSubmat)
	}
	for _, c := range f {
		if len(c) != 1 {
			return 0, fmt.Errorf("expected a single character, got %q: %w", c, ErrSubmat)
		}
		if c[0] >= 128 {
			return 0, fmt.Errorf("non-ascii character in %q: %w", inline, ErrSubmat)
		}
	}
	for i, c := range f {
		cmap[c[0]] = int8(i)
	}
	for i, c := range f { // If not set, set both upper and lower case
		l := bytes.ToLower(c)[0]
		u := bytes.ToUpper(c)[0]
		if cmap[l] == notset {
			cmap[l] = int8(i)
		}
		if cmap[u] == notset {
			cmap[u] = int8(i)
		}
	}
	return len(f), nil
}

// readSubmat does the work for ReadSubmat and the built in tables.
func readSubmat(r io.Reader, name string) (*Submat, error) {
	submat := new(Submat)
	scnr := NewCmmtScanner(r, '#')
	scnr.Scan()
	nAlfbt, err := alfbtLine(scnr.CBytes(), submat)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	submat.mat = matrix.NewFMatrix2d(nAlfbt, nAlfbt)
	nr := 0
	for scnr.Scan() {
		line := scnr.CBytes()
		if line == nil {
			break
		}
		fields := bytes.Fields(line)
		if len(fields) != nAlfbt+1 {
			return nil, fmt.Errorf("reading %s, wrong number of items on line %q: %w",
				name, line, ErrSubmat)
		}
		c := fields[0][0]
		if c >= 128 || submat.cmap[c] == notset {
			return nil, fmt.Errorf("reading %s, unknown row %q: %w", name, fields[0], ErrSubmat)
		}
		i := submat.cmap[c]
		for j := 0; j < nAlfbt; j++ {
			f, e := strconv.ParseFloat(string(fields[j+1]), 32)
			if e != nil {
				return nil, fmt.Errorf("reading %s, %v: %w", name, e, ErrSubmat)
			}
			x := float32(f)
			submat.mat.Mat[i][j], submat.mat.Mat[j][i] = x, x
		}
		nr++
	}
	if err := scnr.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if nr != nAlfbt {
		return nil, fmt.Errorf("reading %s, %d rows for %d letters: %w", name, nr, nAlfbt, ErrSubmat)
	}
	return submat, nil
}

// ReadSubmat reads a substitution matrix from a file. The first
// line has the letters, then one row per letter. # starts a comment.
func ReadSubmat(fname string) (*Submat, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return readSubmat(fp, fname)
}

// Score returns the similarity of bytes a and b. Letters the matrix
// does not know score zero.
func (submat *Submat) Score(a, b byte) float32 {
	if a >= 128 || b >= 128 {
		return 0
	}
	i, j := submat.cmap[a], submat.cmap[b]
	if i == notset || j == notset {
		return 0
	}
	return submat.mat.Mat[i][j]
}

// ForAlphabet makes a Sub that works on ordinals from an alphabet,
// which is what the profile schemes need.
func (submat *Submat) ForAlphabet(a *seq.Alphabet) Sub {
	n := a.Size()
	t := &table{mat: matrix.NewFMatrix2d(n, n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			t.mat.Mat[i][j] = submat.Score(a.Letter(uint8(i)), a.Letter(uint8(j)))
		}
	}
	return t
}

type table struct{ mat *matrix.FMatrix2d }

func (t *table) Sub(a, b uint8) float32 { return t.mat.Mat[a][b] }

// matrixScr scores two letter sequences with a substitution matrix.
type matrixScr struct {
	Gaps
	smat *matrix.FMatrix2d
}

// NewMatrix scores s against t. The scores are calculated once,
// so Match is just a lookup.
func NewMatrix(submat *Submat, s, t []byte, g Gaps) Scorer {
	smat := matrix.NewFMatrix2d(len(s), len(t))
	for i, cs := range s {
		for j, ct := range t {
			smat.Mat[i][j] = submat.Score(cs, ct)
		}
	}
	return &matrixScr{Gaps: g, smat: smat}
}

func (sc *matrixScr) Kind() Kind { return Matrix }
func (sc *matrixScr) Match(i, j int) float32 { return sc.smat.Mat[i][j] }
func (sc *matrixScr) GapWeight(j int) float32 { return 1 }

// String prints out a substitution matrix. Useful during debugging.
func (submat *Submat) String() string {
	var b strings.Builder
	var letters []byte
	for c := byte('*'); c <= 'Z'; c++ {
		if submat.cmap[c] != notset {
			letters = append(letters, c)
		}
	}
	b.WriteString("    ")
	for _, c := range letters {
		fmt.Fprintf(&b, "%4c", c)
	}
	b.WriteByte('\n')
	for _, c := range letters {
		fmt.Fprintf(&b, "%4c", c)
		for _, d := range letters {
			fmt.Fprintf(&b, "%4.0f", submat.Score(c, d))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

var (
	blosumOnce, dnaOnce sync.Once
	blosum62, dnaFull   *Submat
)

// mustRead is only for the tables compiled in here.
func mustRead(s, name string) *Submat {
	sm, err := readSubmat(strings.NewReader(s), name)
	if err != nil {
		panic("program bug: " + err.Error())
	}
	return sm
}

// BLOSUM62 is set up the first time somebody asks for it and shared
// after that. Nobody may change it.
func BLOSUM62() *Submat {
	blosumOnce.Do(func() { blosum62 = mustRead(blosum62Txt, "blosum62") })
	return blosum62
}

// DNA is the EDNAFULL style nucleotide matrix, with N scoring
// a little below zero against everything.
func DNA() *Submat {
	dnaOnce.Do(func() { dnaFull = mustRead(dnaTxt, "dna") })
	return dnaFull
}

const dnaTxt = `# nucleotide matrix
   A  C  G  T  U  N
A  5 -4 -4 -4 -4 -2
C -4  5 -4 -4 -4 -1
G -4 -4  5 -4 -4 -1
T -4 -4 -4  5  5 -1
U -4 -4 -4  5  5 -1
N -2 -1 -1 -1 -1 -1
`

const blosum62Txt = `# BLOSUM62, Henikoff and Henikoff 1992
   A  R  N  D  C  Q  E  G  H  I  L  K  M  F  P  S  T  W  Y  V  B  Z  X  *
A  4 -1 -2 -2  0 -1 -1  0 -2 -1 -1 -1 -1 -2 -1  1  0 -3 -2  0 -2 -1  0 -4
R -1  5  0 -2 -3  1  0 -2  0 -3 -2  2 -1 -3 -2 -1 -1 -3 -2 -3 -1  0 -1 -4
N -2  0  6  1 -3  0  0  0  1 -3 -3  0 -2 -3 -2  1  0 -4 -2 -3  3  0 -1 -4
D -2 -2  1  6 -3  0  2 -1 -1 -3 -4 -1 -3 -3 -1  0 -1 -4 -3 -3  4  1 -1 -4
C  0 -3 -3 -3  9 -3 -4 -3 -3 -1 -1 -3 -1 -2 -3 -1 -1 -2 -2 -1 -3 -3 -2 -4
Q -1  1  0  0 -3  5  2 -2  0 -3 -2  1  0 -3 -1  0 -1 -2 -1 -2  0  3 -1 -4
E -1  0  0  2 -4  2  5 -2  0 -3 -3  1 -2 -3 -1  0 -1 -3 -2 -2  1  4 -1 -4
G  0 -2  0 -1 -3 -2 -2  6 -2 -4 -4 -2 -3 -3 -2  0 -2 -2 -3 -3 -1 -2 -1 -4
H -2  0  1 -1 -3  0  0 -2  8 -3 -3 -1 -2 -1 -2 -1 -2 -2  2 -3  0  0 -1 -4
I -1 -3 -3 -3 -1 -3 -3 -4 -3  4  2 -3  1  0 -3 -2 -1 -3 -1  3 -3 -3 -1 -4
L -1 -2 -3 -4 -1 -2 -3 -4 -3  2  4 -2  2  0 -3 -2 -1 -2 -1  1 -4 -3 -1 -4
K -1  2  0 -1 -3  1  1 -2 -1 -3 -2  5 -1 -3 -1  0 -1 -3 -2 -2  0  1 -1 -4
M -1 -1 -2 -3 -1  0 -2 -3 -2  1  2 -1  5  0 -2 -1 -1 -1 -1  1 -3 -1 -1 -4
F -2 -3 -3 -3 -2 -3 -3 -3 -1  0  0 -3  0  6 -4 -2 -2  1  3 -1 -3 -3 -1 -4
P -1 -2 -2 -1 -3 -1 -1 -2 -2 -3 -3 -1 -2 -4  7 -1 -1 -4 -3 -2 -2 -1 -2 -4
S  1 -1  1  0 -1  0  0  0 -1 -2 -2  0 -1 -2 -1  4  1 -3 -2 -2  0  0  0 -4
T  0 -1  0 -1 -1 -1 -1 -2 -2 -1 -1 -1 -1 -2 -1  1  5 -2 -2  0 -1 -1  0 -4
W -3 -3 -4 -4 -2 -2 -3 -2 -2 -3 -2 -3 -1  1 -4 -3 -2 11  2 -3 -4 -3 -2 -4
Y -2 -2 -2 -3 -2 -1 -2 -3  2 -1 -1 -2 -1  3 -3 -2 -2  2  7 -1 -3 -2 -1 -4
V  0 -3 -3 -3 -1 -2 -2 -3 -3  3  1 -2  1 -1 -2 -2  0 -3 -1  4 -3 -2 -1 -4
B -2 -1  3  4 -3  0  1 -1  0 -3 -4  0 -3 -3 -2  0 -1 -4 -3 -3  4  1 -1 -4
Z -1  0  0  1 -3  3  4 -2  0 -3 -3  1 -1 -3 -1  0 -1 -3 -2 -2  1  4 -1 -4
X  0 -1 -1 -1 -2 -1 -1 -1 -1 -1 -1 -1 -1 -1 -2  0  0 -2 -1 -1 -1 -1 -1 -4
* -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4 -4  1
`
