package tempo

// fifo is a first-in first-out buffer of interleaved frames.
type fifo struct {
	channels int
	buf      []float32
	begin    int
}

func newFIFO(channels int) *fifo {
	return &fifo{channels: channels}
}

// frames returns the number of buffered frames.
func (f *fifo) frames() int {
	return (len(f.buf) - f.begin) / f.channels
}

// samples returns the buffered data starting at the oldest frame.
func (f *fifo) samples() []float32 {
	return f.buf[f.begin:]
}

func (f *fifo) put(samples []float32) {
	if f.begin > 0 && f.begin >= len(f.buf)/2 {
		n := copy(f.buf, f.buf[f.begin:])
		f.buf = f.buf[:n]
		f.begin = 0
	}
	f.buf = append(f.buf, samples...)
}

func (f *fifo) putSilence(frames int) {
	f.put(make([]float32, frames*f.channels))
}

// receive moves up to maxFrames frames into out and returns the count.
func (f *fifo) receive(out []float32, maxFrames int) int {
	n := min(maxFrames, f.frames(), len(out)/f.channels)
	if n <= 0 {
		return 0
	}
	copy(out, f.buf[f.begin:f.begin+n*f.channels])
	f.drop(n)
	return n
}

// drop discards up to n of the oldest frames and returns the count.
func (f *fifo) drop(n int) int {
	n = max(0, min(n, f.frames()))
	f.begin += n * f.channels
	if f.begin == len(f.buf) {
		f.clear()
	}
	return n
}

// truncate keeps at most n of the oldest frames.
func (f *fifo) truncate(n int) {
	if n < f.frames() {
		f.buf = f.buf[:f.begin+max(n, 0)*f.channels]
	}
}

func (f *fifo) moveTo(dst *fifo) {
	dst.put(f.samples())
	f.clear()
}

func (f *fifo) clear() {
	f.buf = f.buf[:0]
	f.begin = 0
}
