package util

import "io"

// ReadWrite is one end of an in-process, bidirectional byte stream. A pair
// created by DuplexPipe lets the server and client halves of the handshake
// run inside a single process, with no real socket, for standalone mode and
// for tests.
type ReadWrite struct {
	r *io.PipeReader
	w *io.PipeWriter
}

// DuplexPipe returns two connected ends: bytes written to one are read from
// the other, and vice versa.
func DuplexPipe() (a, b *ReadWrite) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()

	a = &ReadWrite{r: r1, w: w2}
	b = &ReadWrite{r: r2, w: w1}
	return a, b
}

func (rw *ReadWrite) Read(p []byte) (int, error) {
	return rw.r.Read(p)
}

func (rw *ReadWrite) Write(p []byte) (int, error) {
	return rw.w.Write(p)
}

// Close closes both the read and write halves of this end.
func (rw *ReadWrite) Close() error {
	werr := rw.w.Close()
	rerr := rw.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
