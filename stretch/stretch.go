// Copyright 2024 The stext Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stretch changes the tempo, pitch and playback rate of encoded
// audio files.
package stretch

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"

	"github.com/goplus/stext/pkgs/audiofile"
	"github.com/goplus/stext/pkgs/tempo"
)

// Limits of the tempo and rate changes, in percent, and of the pitch shift.
// They match the factor range tempo.MinFactor to tempo.MaxFactor.
const (
	MinChange         = -90
	MaxChange         = 900
	MaxPitchSemiTones = 36
)

var (
	// ErrInvalidTempo is returned for a tempo change outside
	// [MinChange, MaxChange].
	ErrInvalidTempo = errors.New("stretch: tempo change must be between -90% and 900%")

	// ErrInvalidRate is returned for a rate change outside
	// [MinChange, MaxChange].
	ErrInvalidRate = errors.New("stretch: rate change must be between -90% and 900%")

	// ErrInvalidPitch is returned for a pitch shift of more than
	// MaxPitchSemiTones either way.
	ErrInvalidPitch = errors.New("stretch: pitch shift must be between -36 and 36 semitones")
)

// Speech settings, in milliseconds.
const (
	SpeechSequenceMS   = 40
	SpeechSeekWindowMS = 15
	SpeechOverlapMS    = 8
)

const batchFrames = 4096

// Options controls Process.
type Options struct {
	// TempoChange is the tempo change in percent; 100 doubles the tempo.
	TempoChange float64
	// PitchSemiTones shifts the pitch without changing the tempo.
	PitchSemiTones float64
	// RateChange is the playback rate change in percent.
	RateChange float64
	// Speech selects stretch settings tuned for speech instead of the
	// automatic ones.
	Speech bool

	// frames, when set, overrides the output length.
	frames func(in int) int
}

func inChangeRange(v float64) bool {
	return v >= MinChange && v <= MaxChange
}

// validate checks each option on its own. Combinations whose effective
// factors leave the tempo limits are rejected by the tempo package.
func (o *Options) validate() error {
	if !inChangeRange(o.TempoChange) {
		return fmt.Errorf("%w: %v", ErrInvalidTempo, o.TempoChange)
	}
	if !inChangeRange(o.RateChange) {
		return fmt.Errorf("%w: %v", ErrInvalidRate, o.RateChange)
	}
	if !(math.Abs(o.PitchSemiTones) <= MaxPitchSemiTones) {
		return fmt.Errorf("%w: %v", ErrInvalidPitch, o.PitchSemiTones)
	}
	return nil
}

// OutputFrames returns the number of frames Process produces for in input
// frames.
func (o *Options) OutputFrames(in int) int {
	if o.frames != nil {
		return o.frames(in)
	}
	factor := (1 + o.TempoChange/100) * (1 + o.RateChange/100)
	return int(math.Round(float64(in) / factor))
}

// Stretch changes the tempo of a WAV or MP3 file by tempo percent without
// changing its pitch, using settings tuned for speech. The result is a WAV
// file with the input's sample rate, channels, bit depth and iXML metadata,
// and exactly frames*100/(100+tempo) frames.
func Stretch(data []byte, tempo int) ([]byte, error) {
	// Range check first: 100+tempo must not overflow.
	if tempo < MinChange || tempo > MaxChange {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTempo, tempo)
	}
	return Process(data, Options{
		TempoChange: float64(tempo),
		Speech:      true,
		frames: func(in int) int {
			return in * 100 / (100 + tempo)
		},
	})
}

// Process applies opts to a WAV or MP3 file and returns the result as WAV.
func Process(data []byte, opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	f, err := audiofile.Load(data)
	if err != nil {
		return nil, fmt.Errorf("load audio: %w", err)
	}
	glog.V(1).Infof("input:\n%s", f.Summary())

	if err := process(f, &opts); err != nil {
		return nil, err
	}
	glog.V(1).Infof("output:\n%s", f.Summary())

	out, err := f.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode audio: %w", err)
	}
	return out, nil
}

func newStretcher(f *audiofile.File, opts *Options) (*tempo.Stretcher, error) {
	st, err := tempo.New(f.SampleRate, f.NumChannels())
	if err != nil {
		return nil, err
	}
	if err := st.SetTempoChange(opts.TempoChange); err != nil {
		return nil, err
	}
	if err := st.SetRateChange(opts.RateChange); err != nil {
		return nil, err
	}
	if err := st.SetPitchSemiTones(opts.PitchSemiTones); err != nil {
		return nil, err
	}
	if opts.Speech {
		for id, v := range map[tempo.Setting]int{
			tempo.SequenceMS:   SpeechSequenceMS,
			tempo.SeekWindowMS: SpeechSeekWindowMS,
			tempo.OverlapMS:    SpeechOverlapMS,
		} {
			if err := st.SetSetting(id, v); err != nil {
				return nil, err
			}
		}
	}
	return st, nil
}

// process replaces the samples of f with the processed ones.
func process(f *audiofile.File, opts *Options) error {
	st, err := newStretcher(f, opts)
	if err != nil {
		return fmt.Errorf("configure stretcher: %w", err)
	}
	channels := f.NumChannels()
	frames := f.NumSamplesPerChannel()
	target := opts.OutputFrames(frames)

	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, 0, target)
	}
	buf := make([]float32, batchFrames*channels)
	processed := 0
	receive := func() {
		for {
			n := st.ReceiveSamples(buf, batchFrames)
			if n == 0 {
				return
			}
			for i := 0; i < n; i++ {
				for c := 0; c < channels; c++ {
					out[c] = append(out[c], float64(buf[i*channels+c]))
				}
			}
			processed += n
			glog.V(2).Infof("Processed: %d", processed)
		}
	}

	for start := 0; start < frames; start += batchFrames {
		n := min(batchFrames, frames-start)
		for i := 0; i < n; i++ {
			for c := 0; c < channels; c++ {
				buf[i*channels+c] = float32(f.Samples[c][start+i])
			}
		}
		st.PutSamples(buf, n)
		receive()
	}
	st.Flush()
	receive()
	glog.Infof("Processed: %d", processed)

	f.Samples = out
	f.SetAudioBufferSize(channels, target)
	return nil
}
