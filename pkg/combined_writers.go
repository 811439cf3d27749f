package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans each log entry out to all of its writers (stdout and the
// rotating log file). A failing writer does not keep the entry from the others.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		writers: append([]io.Writer(nil), writers...),
	}
}

// Write reports the smallest count any writer accepted, together with
// the errors of all writers that fell short.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	n := len(p)
	var err error
	for _, w := range cw.writers {
		written, werr := w.Write(p)
		if werr == nil && written < len(p) {
			werr = io.ErrShortWrite
		}
		if werr != nil {
			err = multierr.Append(err, werr)
		}
		n = min(n, written)
	}
	return n, err
}
