package notepack

import "io"

// Default parameters, matching templates written by other implementations.
const (
	DefaultChunkSize   = 4096
	DefaultMinPairFreq = 2
	DefaultMinFreq     = 2
	DefaultMaxRules    = 10000
)

// A Chunker splits a byte stream into chunks of at most size bytes, in
// stream order. The final chunk may be shorter; an empty stream yields no
// chunks.
type Chunker struct {
	r   io.Reader
	buf []byte
}

// NewChunker returns a Chunker reading chunks of size bytes from r.
// A size of zero or less means DefaultChunkSize.
func NewChunker(r io.Reader, size int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Chunker{r: r, buf: make([]byte, size)}
}

// Next returns the next chunk, or io.EOF after the last one. The returned
// slice is only valid until the following call to Next.
func (c *Chunker) Next() ([]byte, error) {
	n, err := io.ReadFull(c.r, c.buf)
	if n > 0 {
		// A short read ends the stream; the error, if any, surfaces on
		// the next call.
		return c.buf[:n], nil
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return nil, err
}
