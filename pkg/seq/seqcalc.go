// 6 Apr 2020
// seqcalc does simple, common calculations on a set of sequences.

package seq

import (
	"math"
)

// SymUsed says which symbols turn up anywhere in a set of sequences.
// Lower case is folded onto upper case.
func SymUsed(seqs [][]byte) (used [MaxSym + 1]bool) {
	for _, s := range seqs {
		for _, c := range s {
			if c > MaxSym {
				continue
			}
			if 'a' <= c && c <= 'z' {
				c -= 'a' - 'A'
			}
			used[c] = true
		}
	}
	return used
}

// GetType looks at a set of sequences and returns its best guess
// as to the type of file.
func GetType(seqs [][]byte) SeqType {
	used := SymUsed(seqs)
	protType := []byte{
		'D', 'E', 'F', 'H', 'I', 'K', 'L', 'M',
		'P', 'Q', 'R', 'S', 'V', 'W', 'Y'}

	for _, c := range protType { // If we see an amino acid code,
		if used[c] { //          just return protein type.
			return Protein
		}
	}

	if used['T'] && used['U'] {
		return Ntide
	}
	// If we have ACG, but neither T or U, it is a nucleotide
	// but we cannot tell if it is RNA or DNA
	if used['A'] && used['C'] && used['G'] && !used['T'] && !used['U'] {
		return Ntide
	}
	if used['T'] {
		return DNA
	}
	if used['U'] {
		return RNA
	}
	if used['A'] || used['C'] || used['G'] || used['N'] {
		return Ntide
	}

	return Unknown
}

// LogBase returns the base to be used for logarithms when calculating
// entropies over an alphabet. Gaps count as a symbol if gapsAreChar.
func LogBase(a *Alphabet, gapsAreChar bool) int {
	n := a.Size()
	if a.Type() != Protein {
		n-- // N is not a real fifth nucleotide
	} else {
		n-- // nor is X an amino acid
	}
	if gapsAreChar {
		n++
	}
	return n
}

// EntropyFromArray is the inner routine for calculating entropy.
// matrix[sym][col] holds frequencies (each column sums to one or zero).
// The caller allocates space for the result (entropy).
// If gaps are not characters, the row gapMapping is skipped.
func EntropyFromArray(gapsAreChar bool,
	matrix [][]float32, entropy []float32, logbase int, gapMapping uint8) {
	logfac := 1.0 / math.Log(float64(logbase)) // to change base of logs
	nrow := len(matrix)
	if nrow == 0 {
		return
	}
	ncol := len(matrix[0])
	iBadRow := -1
	if !gapsAreChar {
		iBadRow = int(gapMapping)
	}
	for icol := 0; icol < ncol; icol++ {
		total := 0.0
		for irow := 0; irow < nrow; irow++ {
			if irow == iBadRow {
				continue
			}
			f := float64(matrix[irow][icol])
			if f == 0.0 {
				continue
			}
			total += f * math.Log(f) * logfac
		}
		entropy[icol] = float32(math.Abs(total))
	}
}
