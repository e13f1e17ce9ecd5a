// 7 feb 2018, banded version 5 Oct 2026

// Banded matrices. Row i only has room for columns i+lo to i+hi,
// that is, diagonals lo to hi. Like the full matrices, there is one
// backing array and the rows are slices into it.

package band

// FBand is a banded matrix of float32's.
type FBand struct {
	Mat      [][]float32 // Mat[i][j-i-lo]
	lo       int
	fullData []float32
}

// NewFBand gives us nrow rows of the diagonals lo..hi.
func NewFBand(nrow, lo, hi int) *FBand {
	w := hi - lo + 1
	if w < 0 {
		w = 0
	}
	b := &FBand{lo: lo, fullData: make([]float32, nrow*w)}
	b.Mat = make([][]float32, nrow)
	tmp := b.fullData
	for i := range b.Mat {
		b.Mat[i] = tmp[:w]
		tmp = tmp[w:]
	}
	return b
}

// In says if column j of row i is stored.
func (b *FBand) In(i, j int) bool {
	if i < 0 || i >= len(b.Mat) {
		return false
	}
	k := j - i - b.lo
	return k >= 0 && k < len(b.Mat[i])
}

// At returns element i, j or bigf if it is outside the band.
func (b *FBand) At(i, j int) float32 {
	if !b.In(i, j) {
		return bigf
	}
	return b.Mat[i][j-i-b.lo]
}

// Set stores x at i, j. It will explode outside the band, but then
// that is what happens any time you go over array bounds.
func (b *FBand) Set(i, j int, x float32) { b.Mat[i][j-i-b.lo] = x }

// BBand is the same thing for bytes. We use it for directions.
type BBand struct {
	Mat      [][]byte
	lo       int
	fullData []byte
}

// NewBBand is like NewFBand.
func NewBBand(nrow, lo, hi int) *BBand {
	w := hi - lo + 1
	if w < 0 {
		w = 0
	}
	b := &BBand{lo: lo, fullData: make([]byte, nrow*w)}
	b.Mat = make([][]byte, nrow)
	tmp := b.fullData
	for i := range b.Mat {
		b.Mat[i] = tmp[:w]
		tmp = tmp[w:]
	}
	return b
}

func (b *BBand) At(i, j int) byte { return b.Mat[i][j-i-b.lo] }
func (b *BBand) Set(i, j int, x byte) { b.Mat[i][j-i-b.lo] = x }
