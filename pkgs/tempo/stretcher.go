// Package tempo changes the tempo, playback rate and pitch of sampled
// audio streams.
//
// A Stretcher consumes interleaved float32 frames with PutSamples and
// produces processed frames with ReceiveSamples. Tempo changes keep the
// pitch; rate changes affect both; pitch changes keep the tempo.
package tempo

import (
	"errors"
	"fmt"
	"math"
)

// Defaults for the stretch settings, in milliseconds. Zero sequence and seek
// window lengths are chosen automatically from the tempo.
const (
	DefaultSequenceMS   = 0
	DefaultSeekWindowMS = 0
	DefaultOverlapMS    = 8
)

// Setting identifies a tunable stretch parameter.
type Setting int

const (
	// SequenceMS is the length of a processing sequence. 0 is automatic.
	SequenceMS Setting = iota
	// SeekWindowMS is the window searched for the best overlap offset.
	// 0 is automatic.
	SeekWindowMS
	// OverlapMS is the cross-fade length between sequences.
	OverlapMS
)

func (s Setting) String() string {
	switch s {
	case SequenceMS:
		return "SequenceMS"
	case SeekWindowMS:
		return "SeekWindowMS"
	case OverlapMS:
		return "OverlapMS"
	}
	return fmt.Sprintf("Setting(%d)", int(s))
}

// ErrInvalidParameter is returned for out-of-range settings.
var ErrInvalidParameter = errors.New("tempo: invalid parameter")

// flushBlock is the number of silent frames fed per step by Flush.
const flushBlock = 128

// Stretcher is a streaming tempo, rate and pitch processor. It is not safe
// for concurrent use.
type Stretcher struct {
	sampleRate int
	channels   int

	virtualTempo float64
	virtualRate  float64
	virtualPitch float64
	tempo        float64
	rate         float64

	td     *tdStretch
	tr     *transposer
	output *fifo

	expectedOut float64
	received    int
}

// New returns a Stretcher for the given sample rate and channel count.
func New(sampleRate, channels int) (*Stretcher, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidParameter, channels)
	}
	s := &Stretcher{
		sampleRate:   sampleRate,
		channels:     channels,
		virtualTempo: 1,
		virtualRate:  1,
		virtualPitch: 1,
		td:           newTDStretch(sampleRate, channels),
		tr:           newTransposer(channels),
		output:       newFIFO(channels),
	}
	s.calcEffectiveRateAndTempo()
	return s, nil
}

// SampleRate returns the sample rate the Stretcher was created for.
func (s *Stretcher) SampleRate() int { return s.sampleRate }

// Channels returns the number of interleaved channels.
func (s *Stretcher) Channels() int { return s.channels }

// Tempo returns the effective tempo of the time stretcher, which includes
// the compensation for a pitch change.
func (s *Stretcher) Tempo() float64 { return s.tempo }

// Rate returns the effective playback rate.
func (s *Stretcher) Rate() float64 { return s.rate }

// Limits of every tempo, rate and pitch factor, as set and as applied to
// the stretch and transposer stages. Outside them the stretch either stops
// consuming input or its skip lengths overflow.
const (
	MinFactor = 0.1
	MaxFactor = 10.0
)

// factorSlack absorbs rounding in percent and semitone conversions, so
// that SetTempoChange(-90) lands inside the limits.
const factorSlack = 1e-9

func checkFactor(name string, v float64) error {
	if !(v >= MinFactor*(1-factorSlack) && v <= MaxFactor*(1+factorSlack)) {
		return fmt.Errorf("%w: %s %v outside [%v, %v]", ErrInvalidParameter, name, v, MinFactor, MaxFactor)
	}
	return nil
}

// update validates and applies the virtual factors. The Stretcher is left
// unchanged on error.
func (s *Stretcher) update(tempo, rate, pitch float64) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"tempo", tempo},
		{"rate", rate},
		{"pitch", pitch},
		{"effective tempo", tempo / pitch},
		{"effective rate", pitch * rate},
		{"speed", tempo * rate},
	} {
		if err := checkFactor(f.name, f.v); err != nil {
			return err
		}
	}
	s.virtualTempo, s.virtualRate, s.virtualPitch = tempo, rate, pitch
	s.calcEffectiveRateAndTempo()
	return nil
}

// SetTempo sets the tempo factor; 1 is the original tempo and 2 twice as
// fast.
func (s *Stretcher) SetTempo(tempo float64) error {
	return s.update(tempo, s.virtualRate, s.virtualPitch)
}

// SetTempoChange sets the tempo as a percentage change from the original;
// 100 doubles it.
func (s *Stretcher) SetTempoChange(percent float64) error {
	return s.SetTempo(1 + percent/100)
}

// SetRate sets the playback rate factor.
func (s *Stretcher) SetRate(rate float64) error {
	return s.update(s.virtualTempo, rate, s.virtualPitch)
}

// SetRateChange sets the rate as a percentage change from the original.
func (s *Stretcher) SetRateChange(percent float64) error {
	return s.SetRate(1 + percent/100)
}

// SetPitch sets the pitch factor.
func (s *Stretcher) SetPitch(pitch float64) error {
	return s.update(s.virtualTempo, s.virtualRate, pitch)
}

// SetPitchOctaves sets the pitch change in octaves.
func (s *Stretcher) SetPitchOctaves(octaves float64) error {
	return s.SetPitch(math.Exp2(octaves))
}

// SetPitchSemiTones sets the pitch change in semitones.
func (s *Stretcher) SetPitchSemiTones(semitones float64) error {
	return s.SetPitchOctaves(semitones / 12)
}

func (s *Stretcher) calcEffectiveRateAndTempo() {
	s.tempo = s.virtualTempo / s.virtualPitch
	s.rate = s.virtualPitch * s.virtualRate
	s.td.setTempo(s.tempo)
	s.tr.rate = s.rate
}

// SetSetting changes a stretch parameter. SequenceMS and SeekWindowMS
// accept 0 for automatic lengths; OverlapMS must be positive.
func (s *Stretcher) SetSetting(id Setting, value int) error {
	if value < 0 || (id == OverlapMS && value == 0) {
		return fmt.Errorf("%w: %v %d", ErrInvalidParameter, id, value)
	}
	switch id {
	case SequenceMS:
		s.td.setParameters(value, -1, -1)
	case SeekWindowMS:
		s.td.setParameters(-1, value, -1)
	case OverlapMS:
		s.td.setParameters(-1, -1, value)
	default:
		return fmt.Errorf("%w: unknown setting %v", ErrInvalidParameter, id)
	}
	return nil
}

// Setting returns the current value of a stretch parameter. Automatic
// lengths report the value chosen for the current tempo.
func (s *Stretcher) Setting(id Setting) int {
	switch id {
	case SequenceMS:
		return s.td.sequenceMS
	case SeekWindowMS:
		return s.td.seekWindowMS
	case OverlapMS:
		return s.td.overlapMS
	}
	return 0
}

// PutSamples feeds frames interleaved frames from samples into the
// processing pipeline.
func (s *Stretcher) PutSamples(samples []float32, frames int) {
	frames = max(0, min(frames, len(samples)/s.channels))
	s.expectedOut += float64(frames) / (s.tempo * s.rate)
	s.put(samples[:frames*s.channels])
}

// put runs the pipeline. Downsampling is done after the stretch and
// upsampling before it, so the stretch always sees the smaller stream.
func (s *Stretcher) put(samples []float32) {
	if s.rate <= 1 {
		s.tr.input.put(samples)
		s.tr.process(s.td.input)
		s.td.process(s.output)
		return
	}
	s.td.input.put(samples)
	s.td.process(s.tr.input)
	s.tr.process(s.output)
}

// ReceiveSamples moves up to maxFrames processed frames into out and
// returns how many were written.
func (s *Stretcher) ReceiveSamples(out []float32, maxFrames int) int {
	n := s.output.receive(out, maxFrames)
	s.received += n
	return n
}

// NumSamples returns the number of processed frames ready to receive.
func (s *Stretcher) NumSamples() int {
	return s.output.frames()
}

// NumUnprocessedSamples returns the number of frames buffered inside the
// pipeline that have not produced output yet.
func (s *Stretcher) NumUnprocessedSamples() int {
	return s.td.input.frames() + s.tr.input.frames()
}

// Flush pushes the remaining buffered input through the pipeline by
// feeding silence, then trims the output to the length the input so far
// should produce. Output already available is kept.
func (s *Stretcher) Flush() {
	expected := max(int(s.expectedOut+0.5)-s.received, 0)
	silence := make([]float32, flushBlock*s.channels)
	limit := 200 + 4*(s.td.sampleReq+flushBlock-1)/flushBlock
	for i := 0; s.output.frames() < expected && i < limit; i++ {
		s.put(silence)
	}
	s.output.truncate(expected)
	s.td.clearInput()
	s.tr.clear()
}

// Clear discards all buffered input and output.
func (s *Stretcher) Clear() {
	s.td.clearInput()
	s.tr.clear()
	s.output.clear()
	s.expectedOut = 0
	s.received = 0
}
