package dirproto

import "io"

// WriteAll writes p to w, retrying on short writes until every byte has been
// accepted. A writer that makes no progress without reporting an error
// yields io.ErrShortWrite.
func WriteAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n <= 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
