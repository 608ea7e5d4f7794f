package wire

import "bytes"

// Writer accumulates a little-endian, CompactSize-prefixed byte stream.
// The zero value is ready to use.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the accumulated bytes.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// WriteBytes appends b verbatim.
func (w *Writer) WriteBytes(b []byte) { w.buf.Write(b) }

// WriteByte appends a single byte. Implements io.ByteWriter.
func (w *Writer) WriteByte(b byte) error { // nolint:golint // matches io.ByteWriter
	w.buf.WriteByte(b)
	return nil
}

// WriteUint32 appends v little-endian.
func (w *Writer) WriteUint32(v uint32) {
	w.buf.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// WriteInt32 appends v little-endian.
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

// WriteUint64 appends v little-endian.
func (w *Writer) WriteUint64(v uint64) {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	w.buf.Write(b)
}

// WriteInt64 appends v little-endian.
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// CompactSizeLen returns the number of bytes needed to encode n as a
// CompactSize value.
func CompactSizeLen(n int) int {
	switch {
	case n < 253:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// WriteCompactSize appends Bitcoin's variable-length integer encoding of n.
func (w *Writer) WriteCompactSize(n int) {
	switch {
	case n < 253:
		w.buf.WriteByte(byte(n))
	case n <= 0xffff:
		w.buf.WriteByte(253)
		w.buf.Write([]byte{byte(n), byte(n >> 8)})
	case n <= 0xffffffff:
		w.buf.WriteByte(254)
		w.buf.Write([]byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)})
	default:
		w.buf.WriteByte(255)
		v := uint64(n)
		b := make([]byte, 8)
		for i := 0; i < 8; i++ {
			b[i] = byte(v >> (8 * i))
		}
		w.buf.Write(b)
	}
}

// WriteCompactLengthPrefixed writes len(b) as a CompactSize followed by b.
func (w *Writer) WriteCompactLengthPrefixed(b []byte) {
	w.WriteCompactSize(len(b))
	w.buf.Write(b)
}
