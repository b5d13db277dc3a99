package message

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-json"
)

// Reader reads a stream of concatenated or newline-separated JSON requests
type Reader struct {
	dec *json.Decoder
}

func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(bufio.NewReader(r))}
}

// Next returns the raw bytes of the next request, or io.EOF
func (r *Reader) Next() (json.RawMessage, error) {
	var raw json.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	return raw, nil
}

// Writer writes one JSON response per line
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// Write encodes a response followed by a newline
func (w *Writer) Write(resp *Response) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
