// Package brokenio wraps an io.Reader so that reads fail now and
// then. The loaders are fed through it in tests to see that a stream
// that dies part of the way through gives an error and not a short,
// quietly wrong set of reads.
//
// Typical use:
//
//	rdr := brokenio.NewReader(strings.NewReader(s), 1)
//	rdr.SetProbFail(1)
//
// When we introduce a failure on the first read with SetProbZeroFile,
// we return io.EOF and no data. This is what one sees on a zero
// length file.
package brokenio

import (
	"fmt"
	"io"
	"math/rand"
)

// Reader has the probabilities of the different kinds of failure.
// A value of 0.05 means failure in 5% of calls.
type Reader struct {
	orig         io.Reader
	rnd          *rand.Rand
	probZeroFile float32 // probability of looking like an empty file
	probFail     float32 // probability a Read trashes its data
	fracFail     float32 // how much of the buffer is trashed
	nCalled      int
	nByte        int
}

// NewReader wraps r. The seed makes failures repeatable.
func NewReader(r io.Reader, seed int64) *Reader {
	return &Reader{orig: r, rnd: rand.New(rand.NewSource(seed)), fracFail: 0.5}
}

// SetFracFail sets the fraction of each buffer which will be trashed.
func (r *Reader) SetFracFail(frac float32) { r.fracFail = frac }

// SetProbZeroFile sets the rate at which we return nothing on the
// first read. We do not check if the argument is from 0 to 1.
func (r *Reader) SetProbZeroFile(prob float32) { r.probZeroFile = prob }

// SetProbFail sets the probability of a read failure.
func (r *Reader) SetProbFail(prob float32) { r.probFail = prob }

// NByte is the number of bytes that came from the wrapped reader.
func (r *Reader) NByte() int { return r.nByte }

// trashSlice zeroes the last part of a slice. frac 0.3 wipes out the
// last 30 %.
func trashSlice(p []byte, frac float32) (int, error) {
	nkeep := int(float32(len(p)) * (1. - frac))
	if nkeep == len(p) {
		return nkeep, nil
	}
	clear(p[nkeep:])
	return nkeep, fmt.Errorf("brokenio wiped out last %d of %d bytes", len(p)-nkeep, len(p))
}

// Read wraps the original reader and counts the data going through.
func (r *Reader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.nCalled == 0 && r.probZeroFile > 0 && r.rnd.Float32() < r.probZeroFile {
		r.nCalled++
		return 0, io.EOF
	}
	n, err = r.orig.Read(p)
	r.nCalled++
	r.nByte += n
	if n > 0 && r.fracFail > 0 && r.rnd.Float32() < r.probFail {
		return trashSlice(p[:n], r.fracFail)
	}
	return n, err
}
