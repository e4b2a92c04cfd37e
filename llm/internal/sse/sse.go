// Package sse extracts data payloads from server-sent event streams as
// emitted by OpenAI-compatible providers.
package sse

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	dataPrefix = "data:"
	done       = "[DONE]"
)

// Decoder reads data payloads one at a time from a stream body. Blank
// lines, comments, event/id fields and the [DONE] sentinel are skipped;
// anything after the sentinel is still read.
type Decoder struct {
	r   *bufio.Reader
	err error
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next data payload, or io.EOF once the body is drained.
func (d *Decoder) Next() ([]byte, error) {
	for d.err == nil {
		line, err := d.r.ReadString('\n')
		if err != nil {
			d.err = err
		}
		if p, ok := payload(line); ok {
			return []byte(p), nil
		}
	}
	if errors.Is(d.err, io.EOF) {
		return nil, io.EOF
	}
	return nil, d.err
}

func payload(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	val := strings.TrimSpace(line[len(dataPrefix):])
	if val == "" || val == done {
		return "", false
	}
	return val, true
}
