package line

// Capacity is the size of the line buffer including the terminator slot.
const Capacity = 32

// MaxLength is the maximum number of content bytes in a line.
const MaxLength = Capacity - 1

// Buffer is a fixed-capacity append-only byte buffer.
type Buffer struct {
	data [Capacity]byte
	n    int
}

// Len returns the number of bytes held.
func (b *Buffer) Len() int {
	return b.n
}

// Full indicates no more bytes can be appended.
func (b *Buffer) Full() bool {
	return b.n >= MaxLength
}

// Append adds c and reports whether it was stored.
func (b *Buffer) Append(c byte) bool {
	if b.Full() {
		return false
	}
	b.data[b.n] = c
	b.n++
	return true
}

// String returns the content as a string.
func (b *Buffer) String() string {
	return string(b.data[:b.n])
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.n = 0
}
