// 29 Apr 2020, 2 Oct 2026

// Package common holds the few constants everything else agrees on,
// exit codes and the gap character, and a helper for tests.
package common

import (
	"fmt"
	"io"
	"os"
)

const (
	ExitSuccess = iota
	ExitFailure
	ExitUsageError
)

const GapChar byte = '-' // a minus sign is always used for gaps

// UnknownChar fills consensus columns nobody has said anything about.
const UnknownChar byte = 'N'

// WrtTemp writes a string to a temporary file and returns
// the filename. It is used all over the place in testing.
// The suffix matters to readers who choose a format from the name.
func WrtTemp(s string, suffix ...string) (string, error) {
	pattern := "_del_me_testing"
	if suffix != nil {
		pattern += "*" + suffix[0]
	}
	f_tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("tempfile fail")
	}

	if _, err := io.WriteString(f_tmp, s); err != nil {
		return "", fmt.Errorf("writing string to temp file %v", f_tmp.Name())
	}
	name := f_tmp.Name()
	f_tmp.Close()
	return name, nil
}
