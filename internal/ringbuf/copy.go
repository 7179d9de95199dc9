package ringbuf

// Span addresses a position inside a circular sample store. A plain slice
// with Start 0 and len >= n behaves as a linear buffer.
type Span struct {
	Data  []float32
	Start int
}

// Linear wraps a flat slice as a Span starting at index 0.
func Linear(data []float32) Span {
	return Span{Data: data}
}

// CircularCopy copies n samples from src to dst, wrapping either side at the
// end of its store. Every combination of source and destination wrap is
// handled by the same loop, so migration and read-back share one code path.
//
// n may not exceed the length of either store.
func CircularCopy(dst, src Span, n int) {
	if n < 0 {
		panic("ringbuf: negative copy length")
	}
	if n == 0 {
		return
	}
	if n > len(dst.Data) || n > len(src.Data) {
		panic("ringbuf: copy length exceeds store size")
	}

	d := Wrap(dst.Start, len(dst.Data))
	s := Wrap(src.Start, len(src.Data))
	for n > 0 {
		chunk := min(n, len(dst.Data)-d, len(src.Data)-s)
		copy(dst.Data[d:d+chunk], src.Data[s:s+chunk])
		n -= chunk
		d += chunk
		s += chunk
		if d == len(dst.Data) {
			d = 0
		}
		if s == len(src.Data) {
			s = 0
		}
	}
}

// Fill writes value into n slots of a circular store starting at dst.Start.
func Fill(dst Span, n int, value float32) {
	if n <= 0 || len(dst.Data) == 0 {
		return
	}
	reg := Split(len(dst.Data), dst.Start, n)
	for i := reg.Start1; i < reg.Start1+reg.Size1; i++ {
		dst.Data[i] = value
	}
	for i := reg.Start2; i < reg.Start2+reg.Size2; i++ {
		dst.Data[i] = value
	}
}
