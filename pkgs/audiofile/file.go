// Package audiofile loads audio files into per-channel float samples and
// writes them back as WAV.
package audiofile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for input that is neither WAV nor MP3,
	// or a WAV whose encoding is not linear PCM or IEEE float.
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")

	// ErrUnsupportedBitDepth is returned for bit depths other than 8, 16, 24
	// and 32.
	ErrUnsupportedBitDepth = errors.New("audiofile: unsupported bit depth")
)

// Format is the WAVE format category of the sample data.
type Format uint16

const (
	PCM        Format = 1
	IEEEFloat  Format = 3
	Extensible Format = 0xFFFE
)

func (f Format) String() string {
	switch f {
	case PCM:
		return "PCM"
	case IEEEFloat:
		return "IEEEFloat"
	case Extensible:
		return "Extensible"
	}
	return fmt.Sprintf("Format(%d)", uint16(f))
}

// File is an audio file held in memory. Samples are indexed
// [channel][frame] and normalised to [-1, 1].
type File struct {
	SampleRate int
	BitDepth   int
	Format     Format
	Samples    [][]float64

	// IXML is the content of the iXML chunk, if any.
	IXML string
}

// Load decodes a WAV or MP3 file.
func Load(data []byte) (*File, error) {
	switch {
	case isWAV(data):
		return decodeWAV(data)
	case isMP3(data):
		return decodeMP3(data)
	}
	return nil, ErrUnsupportedFormat
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}

func isMP3(data []byte) bool {
	if len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")) {
		return true
	}
	// MPEG audio frame sync.
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// NumChannels returns the number of channels.
func (f *File) NumChannels() int {
	return len(f.Samples)
}

// NumSamplesPerChannel returns the number of frames.
func (f *File) NumSamplesPerChannel() int {
	if len(f.Samples) == 0 {
		return 0
	}
	return len(f.Samples[0])
}

// LengthInSeconds returns the duration of the audio.
func (f *File) LengthInSeconds() float64 {
	if f.SampleRate == 0 {
		return 0
	}
	return float64(f.NumSamplesPerChannel()) / float64(f.SampleRate)
}

// SetAudioBufferSize resizes the sample buffer to channels x frames. Existing
// samples are kept where they fit; new space is silent.
func (f *File) SetAudioBufferSize(channels, frames int) {
	samples := make([][]float64, channels)
	for c := range samples {
		samples[c] = make([]float64, frames)
		if c < len(f.Samples) {
			copy(samples[c], f.Samples[c])
		}
	}
	f.Samples = samples
}

// Summary returns a human-readable description of the file.
func (f *File) Summary() string {
	var b strings.Builder
	b.WriteString("|======================================|\n")
	fmt.Fprintf(&b, "Num Channels: %d\n", f.NumChannels())
	fmt.Fprintf(&b, "Num Samples Per Channel: %d\n", f.NumSamplesPerChannel())
	fmt.Fprintf(&b, "Sample Rate: %d\n", f.SampleRate)
	fmt.Fprintf(&b, "Bit Depth: %d\n", f.BitDepth)
	fmt.Fprintf(&b, "Length in Seconds: %g\n", f.LengthInSeconds())
	b.WriteString("|======================================|")
	return b.String()
}
