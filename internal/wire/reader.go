// Package wire provides a cryptobyte-inspired API specialized to the little
// endian, CompactSize-prefixed encoding used throughout Koto's header and
// transaction wire formats.
package wire

import "github.com/pkg/errors"

// MaxCompactSize bounds how large a CompactSize-encoded count may be; values
// above this are almost certainly corrupt input, not a legitimate count.
const MaxCompactSize = 0x02000000

// Reader reads sequentially from an in-memory byte slice, advancing as it
// goes. A zero Reader is not usable; construct with NewReader.
type Reader struct {
	b []byte
}

// NewReader wraps b for reading. The slice is not copied; callers must not
// mutate it while the Reader is in use.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.b) }

// Remaining returns the unread tail of the underlying slice.
func (r *Reader) Remaining() []byte { return r.b }

func (r *Reader) take(n int) ([]byte, bool) {
	if n < 0 || len(r.b) < n {
		return nil, false
	}
	out := r.b[:n]
	r.b = r.b[n:]
	return out, true
}

// Skip advances past n bytes, reporting whether that many remained.
func (r *Reader) Skip(n int) bool {
	_, ok := r.take(n)
	return ok
}

// ReadBytes reads exactly n bytes into a freshly allocated slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	v, ok := r.take(n)
	if !ok {
		return nil, errors.New("wire: attempt to read past end of buffer")
	}
	out := make([]byte, n)
	copy(out, v)
	return out, nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	v, ok := r.take(1)
	if !ok {
		return 0, errors.New("wire: attempt to read past end of buffer")
	}
	return v[0], nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	v, ok := r.take(4)
	if !ok {
		return 0, errors.New("wire: attempt to read past end of buffer")
	}
	return uint32(v[0]) | uint32(v[1])<<8 | uint32(v[2])<<16 | uint32(v[3])<<24, nil
}

// ReadInt32 reads a little-endian, signed int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	v, ok := r.take(8)
	if !ok {
		return 0, errors.New("wire: attempt to read past end of buffer")
	}
	var out uint64
	for i := 7; i >= 0; i-- {
		out = out<<8 | uint64(v[i])
	}
	return out, nil
}

// ReadInt64 reads a little-endian, signed int64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadCompactSize reads Bitcoin's variable-length integer encoding, used for
// lengths and element counts. It rejects non-canonical (over-long)
// encodings.
func (r *Reader) ReadCompactSize() (int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, errors.Wrap(err, "wire: compact size")
	}

	var length uint64
	var minSize uint64
	switch {
	case b < 253:
		length = uint64(b)
	case b == 253:
		v, ok := r.take(2)
		if !ok {
			return 0, errors.New("wire: attempt to read past end of buffer")
		}
		length = uint64(v[0]) | uint64(v[1])<<8
		minSize = 253
	case b == 254:
		v, ok := r.take(4)
		if !ok {
			return 0, errors.New("wire: attempt to read past end of buffer")
		}
		for i := 3; i >= 0; i-- {
			length = length<<8 | uint64(v[i])
		}
		minSize = 0x10000
	default:
		v, ok := r.take(8)
		if !ok {
			return 0, errors.New("wire: attempt to read past end of buffer")
		}
		for i := 7; i >= 0; i-- {
			length = length<<8 | uint64(v[i])
		}
		minSize = 0x100000000
	}

	if length > MaxCompactSize || length < minSize {
		return 0, errors.Errorf("wire: non-canonical compact size %d", length)
	}
	return int(length), nil
}

// ReadCompactLengthPrefixed reads a CompactSize length followed by that many
// bytes.
func (r *Reader) ReadCompactLengthPrefixed() ([]byte, error) {
	n, err := r.ReadCompactSize()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(n)
}

// AtEnd reports whether every byte has been consumed.
func (r *Reader) AtEnd() bool { return len(r.b) == 0 }
