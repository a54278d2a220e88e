package audiofile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// decodeMP3 decodes to 16-bit stereo, the only output go-mp3 produces.
func decodeMP3(data []byte) (*File, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode MP3: %w", err)
	}

	const channels, frameSize = 2, 4
	frames := len(pcm) / frameSize
	f := &File{
		SampleRate: dec.SampleRate(),
		BitDepth:   16,
		Format:     PCM,
	}
	f.SetAudioBufferSize(channels, frames)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			v := int16(binary.LittleEndian.Uint16(pcm[i*frameSize+c*2:]))
			f.Samples[c][i] = toSample(int(v), 16, PCM)
		}
	}
	return f, nil
}
