// 9 Oct 2026

package loader

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andrew-torda/seqcons/pkg/seq"
	"github.com/andrew-torda/seqcons/pkg/store"
)

// An AMOS message looks like
//
//	{RED
//	iid:1
//	eid:read1
//	seq:
//	ACGT
//	.
//	}
//
// Fields with nothing after the colon go on until a line with a dot.
// Messages nest, so a {CTG} holds the {TLE} placements of its reads.
type message struct {
	kind   string
	fields map[string]string
	kids   []*message
	line   int
}

type lineReader struct {
	buf  []byte
	pos  int
	line int
}

func (lr *lineReader) next() (string, bool) {
	if lr.pos >= len(lr.buf) {
		return "", false
	}
	rest := lr.buf[lr.pos:]
	n := bytes.IndexByte(rest, '\n')
	if n < 0 {
		n = len(rest)
		lr.pos = len(lr.buf)
	} else {
		lr.pos += n + 1
	}
	lr.line++
	return strings.TrimSpace(string(rest[:n])), true
}

func (lr *lineReader) errorf(format string, a ...any) error {
	return fmt.Errorf("line %d: %s: %w", lr.line, fmt.Sprintf(format, a...), ErrFormat)
}

// message reads up to the closing brace of a message whose opening
// line has been read.
func (lr *lineReader) message(kind string) (*message, error) {
	m := &message{kind: kind, fields: make(map[string]string), line: lr.line}
	for {
		l, ok := lr.next()
		if !ok {
			return nil, lr.errorf("%s message from line %d not closed", kind, m.line)
		}
		switch {
		case l == "":
		case l == "}":
			return m, nil
		case l[0] == '{':
			kid, err := lr.message(l[1:])
			if err != nil {
				return nil, err
			}
			m.kids = append(m.kids, kid)
		default:
			key, val, found := strings.Cut(l, ":")
			if !found {
				return nil, lr.errorf("want key:value, got %q", l)
			}
			if val == "" {
				var lines []string
				for {
					x, ok := lr.next()
					if !ok {
						return nil, lr.errorf("field %s not ended with a dot", key)
					}
					if x == "." {
						break
					}
					lines = append(lines, x)
				}
				val = strings.Join(lines, "\n")
			}
			m.fields[key] = val
		}
	}
}

// messages reads the whole file.
func messages(buf []byte) ([]*message, error) {
	lr := &lineReader{buf: buf}
	var msgs []*message
	for {
		l, ok := lr.next()
		if !ok {
			return msgs, nil
		}
		if l == "" {
			continue
		}
		if l[0] != '{' {
			return nil, lr.errorf("want a message, got %q", l)
		}
		m, err := lr.message(l[1:])
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
}

func (m *message) num(key string) (int, error) {
	s, ok := m.fields[key]
	if !ok {
		return 0, fmt.Errorf("%s message at line %d has no %s: %w", m.kind, m.line, key, ErrFormat)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s message at line %d, %s: %v: %w", m.kind, m.line, key, err, ErrFormat)
	}
	return n, nil
}

func (m *message) pair(key string) (a, b int, err error) {
	s, ok := m.fields[key]
	if !ok {
		return 0, 0, fmt.Errorf("%s message at line %d has no %s: %w", m.kind, m.line, key, ErrFormat)
	}
	x, y, found := strings.Cut(s, ",")
	if a, err = strconv.Atoi(x); err == nil && found {
		b, err = strconv.Atoi(y)
	}
	if err != nil || !found {
		return 0, 0, fmt.Errorf("%s message at line %d, %s %q: %w", m.kind, m.line, key, s, ErrFormat)
	}
	return a, b, nil
}

// letters removes the line breaks from a multi-line field.
func letters(s string) []byte {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c != '\n' && c != ' ' && c != '\t' && c != '\r' {
			b = append(b, c)
		}
	}
	return b
}

func afgRead(m *message) (store.Read, error) {
	var r store.Read
	r.Seq = letters(m.fields["seq"])
	if err := seq.Upper(r.Seq, m.fields["eid"]); err != nil {
		return r, fmt.Errorf("read at line %d: %v: %w", m.line, err, ErrFormat)
	}
	if q, ok := m.fields["qlt"]; ok {
		q := letters(q)
		if len(q) != len(r.Seq) {
			return r, fmt.Errorf("read at line %d has %d qualities for %d bases: %w",
				m.line, len(q), len(r.Seq), ErrFormat)
		}
		for i := range q {
			q[i] -= '0'
		}
		r.Qual = q
	}
	r.Name = m.fields["eid"]
	if r.Name == "" {
		r.Name = m.fields["iid"]
	}
	return r, nil
}

// afgGaps reads a gap list, one number per gap character, so a gap
// of two shows up as the same number twice.
func afgGaps(s string) ([]store.Gap, error) {
	var gaps []store.Gap
	for _, f := range strings.Fields(s) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		if k := len(gaps); k > 0 && gaps[k-1].Pos == n {
			gaps[k-1].Len++
		} else {
			gaps = append(gaps, store.Gap{Pos: n, Len: 1})
		}
	}
	return gaps, nil
}

// afgTile is one TLE message. clr gives the clear range, backwards
// for a read on the reverse strand.
func afgTile(m *message, readIdx map[int]int, reads store.ReadStore) (store.Placement, error) {
	var p store.Placement
	src, err := m.num("src")
	if err != nil {
		return p, err
	}
	rid, ok := readIdx[src]
	if !ok {
		return p, fmt.Errorf("TLE at line %d refers to unknown read %d: %w", m.line, src, ErrFormat)
	}
	off := 0
	if _, ok := m.fields["off"]; ok {
		if off, err = m.num("off"); err != nil {
			return p, err
		}
	}
	c1, c2 := 0, len(reads[rid].Seq)
	if _, ok := m.fields["clr"]; ok {
		if c1, c2, err = m.pair("clr"); err != nil {
			return p, err
		}
	}
	if p.Gaps, err = afgGaps(m.fields["gap"]); err != nil {
		return p, fmt.Errorf("TLE at line %d gap: %v: %w", m.line, err, ErrFormat)
	}
	p.Read = rid
	ngap := p.NGap()
	if c1 <= c2 {
		p.ClrBegin, p.ClrEnd = c1, c2
		p.Begin, p.End = off, off+ngap+c2-c1
	} else {
		p.ClrBegin, p.ClrEnd = c2, c1
		p.Begin, p.End = off+ngap+c1-c2, off
	}
	return p, nil
}

func storeAfg(buf []byte, name string) (*store.Store, error) {
	msgs, err := messages(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	st := &store.Store{}
	readIdx := make(map[int]int)
	for _, m := range msgs {
		if m.kind != "RED" {
			continue
		}
		iid, err := m.num("iid")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		r, err := afgRead(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		readIdx[iid] = len(st.Reads)
		st.Reads = append(st.Reads, r)
	}
	for _, m := range msgs {
		if m.kind != "CTG" {
			continue
		}
		c := len(st.Contigs)
		ctg := store.Contig{Name: m.fields["eid"], Seq: letters(m.fields["seq"])}
		if ctg.Name == "" {
			ctg.Name = m.fields["iid"]
		}
		ctg.HasSeq = len(ctg.Seq) > 0
		if err := seq.Upper(ctg.Seq, ctg.Name); err != nil {
			return nil, fmt.Errorf("%s: %v: %w", name, err, ErrFormat)
		}
		stop := 0
		for _, kid := range m.kids {
			if kid.kind != "TLE" {
				continue
			}
			p, err := afgTile(kid, readIdx, st.Reads)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			p.Contig = c
			stop = max(stop, p.Stop())
			st.Placements = append(st.Placements, p)
		}
		if !ctg.HasSeq {
			ctg = store.Placeholder(ctg.Name, stop)
		}
		st.Contigs = append(st.Contigs, ctg)
	}
	return st, nil
}

// LoadAfg reads an AMOS message file. Only RED, CTG and TLE messages
// are used. Anything else is skipped.
func LoadAfg(fname string) (*store.Store, error) {
	var st *store.Store
	err := withMap(fname, func(buf []byte) error {
		var err error
		st, err = storeAfg(buf, fname)
		return err
	})
	return st, err
}

// ReadAfg is LoadAfg from a stream.
func ReadAfg(r io.Reader, name string) (*store.Store, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", name, err, ErrFormat)
	}
	return storeAfg(buf, name)
}
