package audiofile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

var ixmlID = [4]byte{'i', 'X', 'M', 'L'}

// chunkInfo is what decodeWAV needs from the RIFF chunk list besides the
// samples.
type chunkInfo struct {
	dataSize int
	ixml     string
}

// scanChunks walks the RIFF chunk list. The decoder reads sample data up
// to EOF, so the real data chunk size is needed to drop trailing chunks.
func scanChunks(data []byte) (info chunkInfo, err error) {
	r := bytes.NewReader(data)
	p := riff.New(r)
	if err = p.ParseHeaders(); err != nil {
		return info, err
	}
	info.dataSize = -1
	for {
		id, size, err := p.IDnSize()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return info, nil
			}
			return info, err
		}
		ch := &riff.Chunk{ID: id, Size: int(size) + int(size%2), R: r}
		switch id {
		case riff.DataFormatID:
			info.dataSize = int(size)
		case ixmlID:
			if ch.Size > len(data) {
				return info, fmt.Errorf("iXML chunk size %d exceeds file size", size)
			}
			buf := make([]byte, ch.Size)
			if _, err := io.ReadFull(ch, buf); err != nil {
				return info, fmt.Errorf("read iXML chunk: %w", err)
			}
			info.ixml = string(bytes.TrimRight(buf[:size], "\x00"))
			continue
		}
		ch.Drain()
	}
}

func decodeWAV(data []byte) (*File, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV header", ErrUnsupportedFormat)
	}
	format := Format(dec.WavAudioFormat)
	bitDepth := int(dec.BitDepth)
	switch format {
	case PCM, Extensible:
		format = PCM
		switch bitDepth {
		case 8, 16, 24, 32:
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
		}
	case IEEEFloat:
		if bitDepth != 32 {
			return nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedBitDepth, bitDepth)
		}
	default:
		return nil, fmt.Errorf("%w: WAV format %d", ErrUnsupportedFormat, uint16(format))
	}
	channels := int(dec.NumChans)
	if channels == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrUnsupportedFormat)
	}

	info, err := scanChunks(data)
	if err != nil {
		return nil, fmt.Errorf("scan WAV chunks: %w", err)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode WAV: %w", err)
	}

	frames := len(buf.Data) / channels
	if info.dataSize >= 0 {
		frames = min(frames, info.dataSize/(channels*(bitDepth/8)))
	}
	f := &File{
		SampleRate: int(dec.SampleRate),
		BitDepth:   bitDepth,
		Format:     format,
		IXML:       info.ixml,
	}
	f.SetAudioBufferSize(channels, frames)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			f.Samples[c][i] = toSample(buf.Data[i*channels+c], bitDepth, format)
		}
	}
	return f, nil
}

// Encode writes the file as WAV. 32-bit IEEE float input is written as
// float, everything else as linear PCM.
func (f *File) Encode() ([]byte, error) {
	switch f.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, f.BitDepth)
	}
	channels := f.NumChannels()
	if channels == 0 {
		return nil, errors.New("audiofile: no channels to encode")
	}
	format := PCM
	if f.Format == IEEEFloat && f.BitDepth == 32 {
		format = IEEEFloat
	}

	frames := f.NumSamplesPerChannel()
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: f.SampleRate},
		Data:           make([]int, frames*channels),
		SourceBitDepth: f.BitDepth,
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			buf.Data[i*channels+c] = fromSample(f.Samples[c][i], f.BitDepth, format)
		}
	}

	w := &writeSeeker{}
	enc := wav.NewEncoder(w, f.SampleRate, f.BitDepth, channels, int(format))
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("encode WAV: %w", err)
	}
	if f.IXML != "" {
		if err := writeIXML(enc, frames*channels*(f.BitDepth/8), f.IXML); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode WAV: %w", err)
	}
	return w.Bytes(), nil
}

// writeIXML appends an iXML chunk after the sample data, keeping both
// chunks word aligned.
func writeIXML(enc *wav.Encoder, dataSize int, ixml string) error {
	if dataSize%2 == 1 {
		if err := enc.AddLE(uint8(0)); err != nil {
			return err
		}
	}
	if err := enc.AddBE(ixmlID); err != nil {
		return fmt.Errorf("write iXML chunk id: %w", err)
	}
	if err := enc.AddLE(uint32(len(ixml))); err != nil {
		return fmt.Errorf("write iXML chunk size: %w", err)
	}
	if err := enc.AddBE([]byte(ixml)); err != nil {
		return fmt.Errorf("write iXML chunk: %w", err)
	}
	if len(ixml)%2 == 1 {
		return enc.AddLE(uint8(0))
	}
	return nil
}
