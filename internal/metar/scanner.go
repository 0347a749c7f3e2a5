package metar

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// MaxLineLen bounds the lines a LineScanner returns: a line with no newline
// within its first MaxLineLen bytes is consumed and reported as oversized
// instead of failing the read.
const MaxLineLen = 1 << 20

// LineScanner reads newline-separated reports. It differs from a plain
// bufio.Scanner in that a line over MaxLineLen does not stop the scan.
type LineScanner struct {
	scanner *bufio.Scanner
	split   lineSplitter
}

// NewLineScanner wraps r.
func NewLineScanner(r io.Reader) *LineScanner {
	return newLineScanner(r, MaxLineLen)
}

func newLineScanner(r io.Reader, limit int) *LineScanner {
	s := &LineScanner{split: lineSplitter{limit: limit}}
	s.scanner = bufio.NewScanner(r)
	s.scanner.Buffer(make([]byte, 0, min(64*1024, limit)), limit)
	s.scanner.Split(s.split.split)
	return s
}

// Scan advances to the next line, which may be blank or oversized.
func (s *LineScanner) Scan() bool { return s.scanner.Scan() }

// Line returns the current line with surrounding whitespace trimmed. It is
// empty for an oversized line.
func (s *LineScanner) Line() string {
	if s.split.oversized {
		return ""
	}
	return strings.TrimSpace(s.scanner.Text())
}

// Oversized reports whether the current line exceeded the length limit.
func (s *LineScanner) Oversized() bool { return s.split.oversized }

// Err returns the first read error. io.EOF is not an error.
func (s *LineScanner) Err() error { return s.scanner.Err() }

// lineSplitter is bufio.ScanLines with a length cap: once a line fills the
// buffer the rest of it is discarded and a single empty token is emitted
// with oversized set.
type lineSplitter struct {
	limit      int
	discarding bool
	oversized  bool
}

func (l *lineSplitter) split(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		if l.discarding {
			return i + 1, l.emitOversized(), nil
		}
		l.oversized = false
		return i + 1, bytes.TrimSuffix(data[:i], []byte{'\r'}), nil
	}
	if atEOF {
		if l.discarding {
			return len(data), l.emitOversized(), nil
		}
		if len(data) == 0 {
			return 0, nil, nil
		}
		l.oversized = false
		return len(data), bytes.TrimSuffix(data, []byte{'\r'}), nil
	}
	if len(data) >= l.limit {
		l.discarding = true
		return len(data), nil, nil
	}
	return 0, nil, nil
}

func (l *lineSplitter) emitOversized() []byte {
	l.discarding = false
	l.oversized = true
	return []byte{}
}
