package tempo

import (
	"errors"
	"math"
	"testing"
	"time"
)

func sine(freq float64, rate, channels, frames int) []float32 {
	out := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			out[i*channels+c] = v
		}
	}
	return out
}

// run feeds input in chunks, flushes and returns all output.
func run(t *testing.T, s *Stretcher, input []float32) []float32 {
	t.Helper()
	ch := s.Channels()
	const chunk = 1000
	var out []float32
	buf := make([]float32, 4096*ch)
	drain := func() {
		for {
			n := s.ReceiveSamples(buf, 4096)
			if n == 0 {
				return
			}
			out = append(out, buf[:n*ch]...)
		}
	}
	for off := 0; off < len(input); off += chunk * ch {
		end := min(off+chunk*ch, len(input))
		s.PutSamples(input[off:end], (end-off)/ch)
		drain()
	}
	s.Flush()
	drain()
	return out
}

func zeroCrossings(samples []float32, channels int) int {
	n := 0
	for i := channels; i < len(samples); i += channels {
		if (samples[i-channels] < 0) != (samples[i] < 0) {
			n++
		}
	}
	return n
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(0, 2); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("New(0, 2) error = %v", err)
	}
	if _, err := New(44100, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("New(44100, 0) error = %v", err)
	}
}

func TestSetFactors(t *testing.T) {
	s, err := New(44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := s.SetTempo(v); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("SetTempo(%v) error = %v", v, err)
		}
		if err := s.SetRate(v); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("SetRate(%v) error = %v", v, err)
		}
	}
	if err := s.SetTempoChange(-100); err == nil {
		t.Error("SetTempoChange(-100) succeeded")
	}
	if err := s.SetTempoChange(100); err != nil {
		t.Fatal(err)
	}
	if s.Tempo() != 2 {
		t.Errorf("Tempo() = %v, want 2", s.Tempo())
	}
	if err := s.SetTempo(1); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPitchSemiTones(12); err != nil {
		t.Fatal(err)
	}
	if s.Rate() != 2 || s.Tempo() != 0.5 {
		t.Errorf("pitch +12: rate %v tempo %v, want 2 and 0.5", s.Rate(), s.Tempo())
	}
	if err := s.SetRateChange(-50); err != nil {
		t.Fatal(err)
	}
	if s.Rate() != 1 {
		t.Errorf("Rate() = %v, want 1", s.Rate())
	}
}

func TestSettings(t *testing.T) {
	s, err := New(44100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Setting(SequenceMS); got != 73 {
		t.Errorf("auto SequenceMS = %d, want 73", got)
	}
	if got := s.Setting(SeekWindowMS); got != 18 {
		t.Errorf("auto SeekWindowMS = %d, want 18", got)
	}
	if got := s.Setting(OverlapMS); got != DefaultOverlapMS {
		t.Errorf("OverlapMS = %d, want %d", got, DefaultOverlapMS)
	}
	if err := s.SetTempo(2); err != nil {
		t.Fatal(err)
	}
	if got := s.Setting(SequenceMS); got != 40 {
		t.Errorf("auto SequenceMS at tempo 2 = %d, want 40", got)
	}

	for id, v := range map[Setting]int{SequenceMS: 40, SeekWindowMS: 15, OverlapMS: 10} {
		if err := s.SetSetting(id, v); err != nil {
			t.Fatalf("SetSetting(%v, %d): %v", id, v, err)
		}
		if got := s.Setting(id); got != v {
			t.Errorf("Setting(%v) = %d, want %d", id, got, v)
		}
	}
	if err := s.SetTempo(0.5); err != nil {
		t.Fatal(err)
	}
	if got := s.Setting(SequenceMS); got != 40 {
		t.Errorf("fixed SequenceMS changed with tempo: %d", got)
	}

	bad := []struct {
		id Setting
		v  int
	}{
		{OverlapMS, 0},
		{SequenceMS, -1},
		{Setting(42), 1},
	}
	for _, tt := range bad {
		if err := s.SetSetting(tt.id, tt.v); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("SetSetting(%v, %d) error = %v", tt.id, tt.v, err)
		}
	}
}

func TestOutputLength(t *testing.T) {
	const rate, frames = 44100, 88200
	tests := []struct {
		name        string
		tempo, rate float64
		pitch       float64
		want        int
	}{
		{"unchanged", 1, 1, 0, 88200},
		{"faster", 2, 1, 0, 44100},
		{"slower", 0.5, 1, 0, 176400},
		{"tempo 1.5", 1.5, 1, 0, 58800},
		{"rate up", 1, 1.25, 0, 70560},
		{"rate down", 1, 0.5, 0, 176400},
		{"octave up", 1, 1, 12, 88200},
		{"octave down", 1, 1, -12, 88200},
	}
	input := sine(440, rate, 2, frames)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(rate, 2)
			if err != nil {
				t.Fatal(err)
			}
			if err := s.SetTempo(tt.tempo); err != nil {
				t.Fatal(err)
			}
			if err := s.SetRate(tt.rate); err != nil {
				t.Fatal(err)
			}
			if err := s.SetPitchSemiTones(tt.pitch); err != nil {
				t.Fatal(err)
			}
			out := run(t, s, input)
			if got := len(out) / 2; got != tt.want {
				t.Errorf("output frames = %d, want %d", got, tt.want)
			}
			if s.NumUnprocessedSamples() != 0 {
				t.Errorf("NumUnprocessedSamples() = %d after Flush", s.NumUnprocessedSamples())
			}
		})
	}
}

func TestTempoKeepsPitch(t *testing.T) {
	const rate, frames = 44100, 88200
	input := sine(440, rate, 1, frames)
	inRate := float64(zeroCrossings(input, 1)) / 2

	tests := []struct {
		name        string
		tempo, rate float64
		pitchFactor float64
	}{
		{"tempo up", 2, 1, 1},
		{"tempo down", 0.75, 1, 1},
		{"rate up", 1, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(rate, 1)
			if err != nil {
				t.Fatal(err)
			}
			s.SetTempo(tt.tempo)
			s.SetRate(tt.rate)
			out := run(t, s, input)
			// Skip the edges, where the pipeline fades in and pads.
			mid := out[len(out)/4 : 3*len(out)/4]
			seconds := float64(len(mid)) / rate
			got := float64(zeroCrossings(mid, 1)) / seconds
			want := inRate * tt.pitchFactor
			if math.Abs(got-want)/want > 0.05 {
				t.Errorf("zero crossings per second = %.1f, want about %.1f", got, want)
			}
		})
	}
}

func TestFlushKeepsOutputAndResetsInput(t *testing.T) {
	s, err := New(8000, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.PutSamples(sine(200, 8000, 1, 100), 100)
	if s.NumSamples() != 0 {
		t.Fatalf("NumSamples() = %d before enough input", s.NumSamples())
	}
	if s.NumUnprocessedSamples() != 100 {
		t.Fatalf("NumUnprocessedSamples() = %d, want 100", s.NumUnprocessedSamples())
	}
	s.Flush()
	if s.NumSamples() != 100 {
		t.Errorf("NumSamples() after Flush = %d, want 100", s.NumSamples())
	}
	if s.NumUnprocessedSamples() != 0 {
		t.Errorf("NumUnprocessedSamples() after Flush = %d", s.NumUnprocessedSamples())
	}

	s.Clear()
	if s.NumSamples() != 0 || s.NumUnprocessedSamples() != 0 {
		t.Errorf("Clear left %d output, %d input frames", s.NumSamples(), s.NumUnprocessedSamples())
	}
}

func TestPutSamplesClampsFrames(t *testing.T) {
	s, err := New(8000, 2)
	if err != nil {
		t.Fatal(err)
	}
	s.PutSamples(make([]float32, 10), 100)
	if got := s.NumUnprocessedSamples(); got != 5 {
		t.Errorf("NumUnprocessedSamples() = %d, want 5", got)
	}
}

// within fails the test if f does not return before d.
func within(t *testing.T, d time.Duration, f func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("did not return within %v", d)
	}
}

func TestFactorLimits(t *testing.T) {
	tests := []struct {
		name string
		set  func(s *Stretcher) error
	}{
		{"huge tempo", func(s *Stretcher) error { return s.SetTempo(1e18) }},
		{"tiny tempo", func(s *Stretcher) error { return s.SetTempo(1e-200) }},
		{"tempo above max", func(s *Stretcher) error { return s.SetTempo(MaxFactor * 1.01) }},
		{"tempo change below -90", func(s *Stretcher) error { return s.SetTempoChange(-95) }},
		{"huge rate", func(s *Stretcher) error { return s.SetRate(math.MaxFloat64) }},
		{"rate change near max int", func(s *Stretcher) error { return s.SetRateChange(math.MaxInt) }},
		{"huge pitch shift", func(s *Stretcher) error { return s.SetPitchSemiTones(2000) }},
		{"huge negative pitch shift", func(s *Stretcher) error { return s.SetPitchSemiTones(-1e6) }},
		{"tiny pitch", func(s *Stretcher) error { return s.SetPitch(1e-5) }},
		{"five octaves", func(s *Stretcher) error { return s.SetPitchOctaves(5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(44100, 2)
			if err != nil {
				t.Fatal(err)
			}
			within(t, time.Second, func() {
				if err := tt.set(s); !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("error = %v, want ErrInvalidParameter", err)
				}
			})
			if s.Tempo() != 1 || s.Rate() != 1 {
				t.Errorf("rejected factor applied: tempo %v rate %v", s.Tempo(), s.Rate())
			}
		})
	}
}

func TestFactorLimitsCombined(t *testing.T) {
	s, err := New(44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, percent := range []float64{-90, 900} {
		if err := s.SetTempoChange(percent); err != nil {
			t.Errorf("SetTempoChange(%v): %v", percent, err)
		}
		if err := s.SetRateChange(percent); err == nil {
			t.Errorf("SetRateChange(%v) with tempo change %v succeeded", percent, percent)
		}
	}

	// Each factor alone is in range, the effective tempo is not.
	if err := s.SetTempo(0.2); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPitch(4); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("SetPitch(4) at tempo 0.2 error = %v", err)
	}
	if s.Tempo() != 0.2 || s.Rate() != 1 {
		t.Errorf("tempo %v rate %v after rejected pitch, want 0.2 and 1", s.Tempo(), s.Rate())
	}
	if err := s.SetPitch(2); err != nil {
		t.Fatal(err)
	}
	if s.Tempo() != 0.1 || s.Rate() != 2 {
		t.Errorf("tempo %v rate %v, want 0.1 and 2", s.Tempo(), s.Rate())
	}
}

func TestProcessAtLimits(t *testing.T) {
	const rate, frames = 8000, 8000
	input := sine(440, rate, 1, frames)
	for _, factor := range []float64{MinFactor, MaxFactor} {
		for _, apply := range []struct {
			name string
			set  func(s *Stretcher, v float64) error
		}{
			{"tempo", (*Stretcher).SetTempo},
			{"rate", (*Stretcher).SetRate},
		} {
			s, err := New(rate, 1)
			if err != nil {
				t.Fatal(err)
			}
			if err := apply.set(s, factor); err != nil {
				t.Fatalf("%s %v: %v", apply.name, factor, err)
			}
			var out []float32
			within(t, 10*time.Second, func() { out = run(t, s, input) })
			want := int(float64(frames)/factor + 0.5)
			if len(out) != want {
				t.Errorf("%s %v: output frames = %d, want %d", apply.name, factor, len(out), want)
			}
		}
	}
}
