package readwriter

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// Reader wraps a *bufio.Reader and keeps the first error it sees. Every
// method is a no-op once an error is stored, so callers can chain reads
// and check Err once.
type Reader struct {
	r   *bufio.Reader
	err error
}

func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

func (rdr *Reader) SetErr(err error) { rdr.err = err }
func (rdr *Reader) Err() error       { return rdr.err }
func (rdr *Reader) IsErr() bool      { return rdr.err != nil }
func (rdr *Reader) IsNotErr() bool   { return rdr.err == nil }

func (rdr *Reader) ConvertErr(from, to error) *Reader {
	if errors.Is(rdr.err, from) {
		rdr.err = to
	}
	return rdr
}

// ConditionalErr stores err unless an error is already stored.
func (rdr *Reader) ConditionalErr(err error) *Reader {
	if rdr.err == nil {
		rdr.err = err
	}
	return rdr
}

func (rdr *Reader) Read(p []byte) (n int, err error) {
	if rdr.err != nil {
		return 0, rdr.err
	}
	return rdr.r.Read(p)
}

func (rdr *Reader) Peek(n int) []byte {
	if rdr.err != nil {
		return nil
	}

	var b []byte
	b, rdr.err = rdr.r.Peek(n)
	return b
}

func (rdr *Reader) ReadByte() (b byte) {
	if rdr.err != nil {
		return 0
	}

	b, rdr.err = rdr.r.ReadByte()
	return b
}

// ReadString reads up to and including delim, returning the data without delim.
func (rdr *Reader) ReadString(delim byte) string {
	if rdr.err != nil {
		return ""
	}

	var str string
	str, rdr.err = rdr.r.ReadString(delim)
	if rdr.err != nil {
		if errors.Is(rdr.err, io.EOF) && len(str) > 0 {
			rdr.err = io.ErrUnexpectedEOF
		}
		return ""
	}
	return strings.TrimSuffix(str, string(delim))
}

// ReadN reads exactly n bytes.
func (rdr *Reader) ReadN(n int64) []byte {
	if rdr.err != nil {
		return nil
	}

	p := make([]byte, n)
	if _, rdr.err = io.ReadFull(rdr.r, p); rdr.err != nil {
		if errors.Is(rdr.err, io.EOF) {
			rdr.err = io.ErrUnexpectedEOF
		}
		return nil
	}
	return p
}

// ReadUTF16N reads runes until n UTF-16 code units are consumed, which is how
// JavaScript peers measure string lengths.
func (rdr *Reader) ReadUTF16N(n int64) string {
	if rdr.err != nil {
		return ""
	}

	var str strings.Builder
	for n > 0 {
		r, size, err := rdr.r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			rdr.err = err
			return ""
		}
		if r == utf8.RuneError && size == 1 {
			rdr.r.UnreadRune()
			b, _ := rdr.r.ReadByte()
			str.WriteByte(b) // invalid bytes pass through as-is
			n--
			continue
		}
		str.WriteRune(r)
		if r > 0xFFFF {
			n -= 2
			continue
		}
		n--
	}
	if n < 0 {
		rdr.err = io.ErrUnexpectedEOF
		return ""
	}
	return str.String()
}

func (rdr *Reader) ReadAll() []byte {
	if rdr.err != nil {
		return nil
	}

	var b []byte
	b, rdr.err = io.ReadAll(rdr.r)
	return b
}

// UTF16Len reports the length of str in UTF-16 code units.
func UTF16Len(str string) int {
	var n int
	for _, r := range str {
		if r > 0xFFFF {
			n += 2
			continue
		}
		n++
	}
	return n
}
