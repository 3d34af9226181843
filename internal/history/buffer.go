// Package history holds the fixed-length rolling sample buffers used for
// trend graphs.
package history

// DefaultLength is the number of samples every sampler keeps.
const DefaultLength = 60

// Buffer is a fixed-capacity ring of float64 samples. It always reports
// exactly Len() values; slots that were never written read as zero.
// A Buffer is not safe for concurrent use; each one has a single owner.
type Buffer struct {
	data []float64
	head int // index of the oldest sample
}

// New returns a zero-filled buffer of length n. n <= 0 selects DefaultLength.
func New(n int) *Buffer {
	if n <= 0 {
		n = DefaultLength
	}
	return &Buffer{data: make([]float64, n)}
}

// Push evicts the oldest sample and appends v as the newest.
func (b *Buffer) Push(v float64) {
	b.data[b.head] = v
	b.head = (b.head + 1) % len(b.data)
}

// Len returns the fixed capacity.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Last returns the most recently pushed sample.
func (b *Buffer) Last() float64 {
	i := b.head - 1
	if i < 0 {
		i = len(b.data) - 1
	}
	return b.data[i]
}

// Values returns a copy of the samples, oldest first.
func (b *Buffer) Values() []float64 {
	out := make([]float64, len(b.data))
	n := copy(out, b.data[b.head:])
	copy(out[n:], b.data[:b.head])
	return out
}

// Max returns the largest sample, or 0 for an all-zero buffer.
func (b *Buffer) Max() float64 {
	var m float64
	for _, v := range b.data {
		if v > m {
			m = v
		}
	}
	return m
}
