package readwriter

import (
	"bufio"
	"io"
)

// Writer wraps a *bufio.Writer and keeps the first error it sees.
type Writer struct {
	w   *bufio.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	if bw, ok := w.(*bufio.Writer); ok {
		return &Writer{w: bw}
	}
	return &Writer{w: bufio.NewWriter(w)}
}

// Err flushes the buffer when no error is stored and returns the stored error.
func (wtr *Writer) Err() error {
	if wtr.err == nil {
		wtr.err = wtr.w.Flush()
	}
	return wtr.err
}

func (wtr *Writer) Write(p []byte) (n int, err error) {
	if wtr.err != nil {
		return 0, wtr.err
	}
	n, wtr.err = wtr.w.Write(p)
	return n, wtr.err
}

func (wtr *Writer) Bytes(p []byte) *Writer {
	if wtr.err != nil {
		return wtr
	}

	_, wtr.err = wtr.w.Write(p)
	return wtr
}

func (wtr *Writer) Byte(p byte) *Writer {
	if wtr.err != nil {
		return wtr
	}

	wtr.err = wtr.w.WriteByte(p)
	return wtr
}

func (wtr *Writer) String(str string) *Writer {
	if wtr.err != nil {
		return wtr
	}

	_, wtr.err = wtr.w.WriteString(str)
	return wtr
}
