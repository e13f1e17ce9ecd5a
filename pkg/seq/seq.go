// 20 Dec 2017, reworked 2 Oct 2026

// Package seq knows about the symbols that turn up in reads. It
// maps them to small ordinals for counting, guesses what kind of
// sequence we have and can reverse complement nucleotides.
//
// The realignment code never looks at letters. It works on ordinals
// from an Alphabet, where the gap is always the last ordinal. That
// way, "smallest ordinal wins a tie" prefers a base over a gap.
package seq

import (
	"fmt"

	. "github.com/andrew-torda/seqcons/pkg/seq/common"
)

// A marker to say what type of sequence we have, protein, DNA, ...
type SeqType byte

const (
	Unchecked SeqType = iota // Has not been looked at yet
	Unknown                  // Really unknown, not a protein or nucleotide
	Protein                  //
	DNA                      //
	RNA                      //
	Ntide                    // Nucleotide
)

// We only read ascii characters, so anything bigger than this is not
// valid.
const (
	MaxSym uint8 = 127
)

// String is mainly for log messages.
func (t SeqType) String() string {
	switch t {
	case Unchecked:
		return "unchecked"
	case Protein:
		return "protein"
	case DNA:
		return "DNA"
	case RNA:
		return "RNA"
	case Ntide:
		return "nucleotide"
	}
	return "unknown"
}

// Alphabet maps letters to ordinals 0..Size()-1 and the gap to Size().
type Alphabet struct {
	letters []byte     // letters[ord] is the upper case letter
	ord     [256]uint8 // ord['c'] is the ordinal of C
	wild    uint8      // ordinal for anything we do not recognise
	stype   SeqType
}

// newAlphabet sets up the mapping. Lower case letters map to the
// same ordinal as upper case.
func newAlphabet(letters string, wild byte, stype SeqType) *Alphabet {
	a := &Alphabet{letters: []byte(letters), stype: stype}
	a.letters = append(a.letters, GapChar)
	for i := range a.ord {
		a.ord[i] = badOrd
	}
	for i, c := range []byte(letters) {
		a.ord[c] = uint8(i)
		a.ord[c|0x20] = uint8(i)
		if c == wild {
			a.wild = uint8(i)
		}
	}
	a.ord[GapChar] = uint8(len(letters))
	a.ord['.'] = uint8(len(letters)) // some formats use a dot
	return a
}

const badOrd uint8 = 255

var (
	DNA5      = newAlphabet("ACGTN", 'N', DNA)
	RNA5      = newAlphabet("ACGUN", 'N', RNA)
	Protein21 = newAlphabet("ACDEFGHIKLMNPQRSTVWYX", 'X', Protein)
)

// ForType returns the alphabet to use for a sequence type. Anything
// that is not clearly protein or RNA is treated as DNA.
func ForType(t SeqType) *Alphabet {
	switch t {
	case Protein, Unknown:
		return Protein21
	case RNA:
		return RNA5
	}
	return DNA5
}

// Size is the number of non-gap symbols.
func (a *Alphabet) Size() int { return len(a.letters) - 1 }

// Gap is the ordinal used for gaps.
func (a *Alphabet) Gap() uint8 { return uint8(len(a.letters) - 1) }

// Type says what kind of sequence the alphabet is for.
func (a *Alphabet) Type() SeqType { return a.stype }

// Wild is the ordinal of N or X.
func (a *Alphabet) Wild() uint8 { return a.wild }

// Ord returns the ordinal for a letter. Unknown letters get the
// wildcard.
func (a *Alphabet) Ord(c byte) uint8 {
	if o := a.ord[c]; o != badOrd {
		return o
	}
	return a.wild
}

// Letter goes from an ordinal back to an upper case letter.
func (a *Alphabet) Letter(o uint8) byte { return a.letters[o] }

// Encode turns letters into ordinals in a new slice.
func (a *Alphabet) Encode(s []byte) []uint8 {
	t := make([]uint8, len(s))
	for i, c := range s {
		t[i] = a.Ord(c)
	}
	return t
}

// Decode goes from ordinals to letters in a new slice.
func (a *Alphabet) Decode(s []uint8) []byte {
	t := make([]byte, len(s))
	for i, o := range s {
		t[i] = a.letters[o]
	}
	return t
}

// trimStr trims a string to n bytes if it is longer
func trimStr(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Upper changes a sequence to upper case, in place.
// It only works with bytes, not runes.
// It can return an error if it encounters a symbol it does
// not like (value higher than 128). name is only used in the message.
func Upper(s []byte, name string) error {
	const diff = 'a' - 'A'
	const symerr = "bad sym \"%c\" at position %d in \"%s\""
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= MaxSym {
			return fmt.Errorf(symerr, c, i, trimStr(name, 40))
		}
		if 'a' <= c && c <= 'z' {
			s[i] -= diff
		}
	}
	return nil
}

var cmpl = [256]byte{
	'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'U': 'A', 'N': 'N',
	'a': 't', 'c': 'g', 'g': 'c', 't': 'a', 'u': 'a', 'n': 'n',
	'R': 'Y', 'Y': 'R', 'K': 'M', 'M': 'K', 'S': 'S', 'W': 'W',
	'B': 'V', 'V': 'B', 'D': 'H', 'H': 'D', GapChar: GapChar,
}

// RevComp returns the reverse complement of s in a new slice.
// Anything we do not know the complement of becomes N.
func RevComp(s []byte) []byte {
	t := make([]byte, len(s))
	for i, j := 0, len(s)-1; j >= 0; i, j = i+1, j-1 {
		if c := cmpl[s[j]]; c != 0 {
			t[i] = c
		} else {
			t[i] = 'N'
		}
	}
	return t
}

// Reverse returns a reversed copy of s. Qualities go with a
// reverse complemented sequence like this.
func Reverse(s []byte) []byte {
	t := make([]byte, len(s))
	for i, j := 0, len(s)-1; j >= 0; i, j = i+1, j-1 {
		t[i] = s[j]
	}
	return t
}
