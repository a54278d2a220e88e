package tempo

// transposer changes the playback rate by linear interpolation. Input is
// treated as one continuous stream across calls; frames it cannot
// interpolate yet stay in input.
type transposer struct {
	channels int
	rate     float64
	fract    float64
	skip     int // frames to skip that had not arrived yet
	frame    []float32
	input    *fifo
}

func newTransposer(channels int) *transposer {
	return &transposer{
		channels: channels,
		rate:     1,
		frame:    make([]float32, channels),
		input:    newFIFO(channels),
	}
}

// process interpolates the buffered input into dst.
func (t *transposer) process(dst *fifo) {
	t.skip -= t.input.drop(t.skip)
	if t.skip > 0 {
		return
	}
	if t.rate == 1 && t.fract == 0 {
		t.input.moveTo(dst)
		return
	}
	ch := t.channels
	src := t.input.samples()
	n := len(src) / ch
	i := 0
	for i+1 < n {
		f := float32(t.fract)
		for c := 0; c < ch; c++ {
			a, b := src[i*ch+c], src[(i+1)*ch+c]
			t.frame[c] = a + f*(b-a)
		}
		dst.put(t.frame)
		t.fract += t.rate
		whole := int(t.fract)
		t.fract -= float64(whole)
		i += whole
	}
	if i > n {
		t.skip = i - n
		i = n
	}
	t.input.drop(i)
}

func (t *transposer) clear() {
	t.fract = 0
	t.skip = 0
	t.input.clear()
}
