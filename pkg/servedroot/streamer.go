package servedroot

import (
	"context"
	"errors"
	"io"

	"github.com/marmos91/dirserve/internal/bufpool"
	"github.com/marmos91/dirserve/internal/logger"
	"github.com/marmos91/dirserve/internal/protocol/dirproto"
)

// Stream outcomes, also used as metric labels.
const (
	OutcomeOK          = "ok"
	OutcomeMissing     = "missing"
	OutcomeInvalid     = "invalid"
	OutcomeInterrupted = "interrupted"
)

// StreamResult describes what Stream put on the wire.
type StreamResult struct {
	Outcome string
	Size    int64 // file content bytes sent
	Chunks  int   // content chunks sent
	Sent    int64 // total bytes written, frames included
}

// Stream sends the file frame for name to w: the header line, the file
// content in chunks of at most TransferUnit bytes, then the footer. Each
// chunk is fully written before the next one is read.
//
// A file that cannot be opened, or is not a regular file, produces the
// missing-file error line instead. A read failure part way through replaces
// the footer with an interrupted-read error line. Both are reported through
// the result; the returned error is reserved for an invalid name, write
// failures and context cancellation, after which the connection is unusable.
func (r *Root) Stream(ctx context.Context, w io.Writer, name string) (StreamResult, error) {
	var res StreamResult

	path, err := r.resolve(name)
	if err != nil {
		res.Outcome = OutcomeInvalid
		return res, err
	}

	f, err := r.fs.Open(path)
	if err == nil {
		st, statErr := f.Stat()
		switch {
		case statErr != nil:
			err = statErr
		case !st.Mode().IsRegular():
			err = ErrNotRegular
		}
		if err != nil {
			_ = f.Close()
		}
	}
	if err != nil {
		logger.DebugCtx(ctx, "Cannot open file", logger.Filename(name), logger.Err(err))
		res.Outcome = OutcomeMissing
		return res, r.send(w, &res, dirproto.MissingFile(name))
	}
	defer func() { _ = f.Close() }()

	if err := r.send(w, &res, dirproto.FileHeader(name)); err != nil {
		return res, err
	}

	pool := bufpool.For(r.transferUnit)
	buf := pool.Get()
	defer pool.Put(buf)

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		n, readErr := f.Read(buf)
		if n > 0 {
			if err := dirproto.WriteAll(w, buf[:n]); err != nil {
				return res, err
			}
			res.Size += int64(n)
			res.Sent += int64(n)
			res.Chunks++
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			logger.WarnCtx(ctx, "File read interrupted",
				logger.Filename(name), logger.Bytes(res.Size), logger.Err(readErr))
			res.Outcome = OutcomeInterrupted
			return res, r.send(w, &res, dirproto.ReadInterrupted(name))
		}
	}

	res.Outcome = OutcomeOK
	return res, r.send(w, &res, dirproto.FileFooter)
}

func (r *Root) send(w io.Writer, res *StreamResult, frame string) error {
	if err := dirproto.WriteString(w, frame); err != nil {
		return err
	}
	res.Sent += int64(len(frame))
	return nil
}
