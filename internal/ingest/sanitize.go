package ingest

import (
	"io"
	"unicode/utf8"
)

// sanitized wraps r so the pipeline never sees a byte-order mark or
// invalid UTF-8. The BOM must be stripped before sanitization sees the
// stream.
func sanitized(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMSkipper(r))
}

// utf8Sanitizer wraps an io.Reader and drops invalid UTF-8 bytes on the
// fly, in constant memory. Log files occasionally carry stray binary from
// crashed channels; dropping matches how the rest of the system treats
// undecodable input.
type utf8Sanitizer struct {
	reader io.Reader

	// pending holds trailing bytes that may start a multi-byte sequence
	// completed by the next read.
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset

	if n == 0 {
		return 0, err
	}

	// Fast path: pure ASCII needs no rewriting.
	if allASCII(p[:n]) {
		return n, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// sanitize compacts data in place, dropping invalid bytes, and returns the
// number of bytes kept. When atEOF is false a sequence cut off at the end
// of data is saved to pending instead of being judged invalid.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		// A lead byte whose sequence runs past the end of data may be
		// completed by the next read.
		if !atEOF && incompleteRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		if r == utf8.RuneError && size == 1 {
			read++
			continue
		}

		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}

	return write
}

// runeLen returns the expected length of a UTF-8 sequence starting with b.
func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0 // continuation byte
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

func incompleteRune(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return runeLen(data[0]) > len(data)
}

// bomSkipper wraps an io.Reader and skips a leading UTF-8 byte-order mark.
// Windows tooling routinely prepends one to exported log files.
type bomSkipper struct {
	reader     io.Reader
	bomChecked bool
	buf        [3]byte
	bufData    []byte
	bufOffset  int
}

func newBOMSkipper(r io.Reader) *bomSkipper {
	return &bomSkipper{reader: r}
}

func (r *bomSkipper) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		n, err := io.ReadFull(r.reader, r.buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n == 0 {
			return 0, err
		}
		if err != nil && err != io.EOF {
			return 0, err
		}

		if n >= 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF {
			r.bufData = nil
		} else {
			r.bufData = r.buf[:n]
			r.bufOffset = 0
		}
	}

	// Replay bytes held back by the BOM probe before touching the
	// underlying reader again. EOF resurfaces on the next call.
	if r.bufOffset < len(r.bufData) {
		copied := copy(p, r.bufData[r.bufOffset:])
		r.bufOffset += copied
		if r.bufOffset >= len(r.bufData) {
			r.bufData = nil
			r.bufOffset = 0
		}
		return copied, nil
	}

	return r.reader.Read(p)
}
