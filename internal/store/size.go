package store

import (
	"fmt"
	"io"
)

// sizeCheckReader fails at EOF when the stream length differs from want.
type sizeCheckReader struct {
	r    io.Reader
	want int64
	read int64
}

func (s *sizeCheckReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.read += int64(n)
	if err == io.EOF && s.read != s.want {
		return n, fmt.Errorf("size mismatch: expected %d bytes, got %d", s.want, s.read)
	}
	return n, err
}
