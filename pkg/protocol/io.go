package protocol

import (
	"errors"
	"io"

	"kpaths/pkg/apperror"
)

// readFull fills buf from r. A peer that closes before buf is full is
// reported as CodePeerClosed, anything else as CodeTransport.
func readFull(r io.Reader, buf []byte, what string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return apperror.Wrap(err, apperror.CodePeerClosed, "peer closed while reading "+what).
				WithDetails("expected_bytes", len(buf))
		}
		return apperror.Wrap(err, apperror.CodeTransport, "read "+what)
	}
	return nil
}

// writeFull writes all of buf, looping over short writes. A write that
// makes no progress without an error aborts with io.ErrShortWrite.
func writeFull(w io.Writer, buf []byte, what string) error {
	for written := 0; written < len(buf); {
		n, err := w.Write(buf[written:])
		if err != nil {
			return apperror.Wrap(err, apperror.CodeTransport, "write "+what).
				WithDetails("written_bytes", written+n)
		}
		if n <= 0 {
			return apperror.Wrap(io.ErrShortWrite, apperror.CodeTransport, "write "+what).
				WithDetails("written_bytes", written)
		}
		written += n
	}
	return nil
}
