// Package sse reads server-sent event payloads from a streaming HTTP
// response body.
package sse

import (
	"bufio"
	"bytes"
	"io"
)

// Lines in provider streams can carry whole JSON chunks; give the scanner
// room well beyond the bufio default.
const maxLineSize = 1024 * 1024

// Scanner iterates over the data payloads of an SSE stream. Comment and
// event-name lines are skipped; multi-line data fields are joined with
// newlines per the SSE spec.
type Scanner struct {
	scanner *bufio.Scanner
}

// NewScanner wraps r, which is typically an http.Response body.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Scanner{scanner: sc}
}

// Next returns the data payload of the next event. It returns io.EOF when
// the stream ends cleanly.
func (s *Scanner) Next() ([]byte, error) {
	var data [][]byte

	for s.scanner.Scan() {
		line := s.scanner.Bytes()

		// Blank line terminates an event.
		if len(bytes.TrimSpace(line)) == 0 {
			if len(data) > 0 {
				return bytes.Join(data, []byte("\n")), nil
			}
			continue
		}

		// Comments and non-data fields (event:, id:, retry:) are skipped.
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}

		payload := bytes.TrimPrefix(line, []byte("data:"))
		payload = bytes.TrimPrefix(payload, []byte(" "))
		// Copy out: the scanner reuses its buffer on the next Scan.
		data = append(data, bytes.Clone(payload))
	}

	if err := s.scanner.Err(); err != nil {
		return nil, err
	}

	// Stream ended mid-event: deliver what we have.
	if len(data) > 0 {
		return bytes.Join(data, []byte("\n")), nil
	}

	return nil, io.EOF
}
