package tempo

import "math"

// Automatic sequence and seek window lengths interpolate linearly between
// these tempo and millisecond bounds.
const (
	autoSeqTempoLow  = 0.5
	autoSeqTempoHigh = 2.0

	autoSeqAtMin = 90.0
	autoSeqAtMax = 40.0
	autoSeqK     = (autoSeqAtMax - autoSeqAtMin) / (autoSeqTempoHigh - autoSeqTempoLow)
	autoSeqC     = autoSeqAtMin - autoSeqK*autoSeqTempoLow

	autoSeekAtMin = 20.0
	autoSeekAtMax = 15.0
	autoSeekK     = (autoSeekAtMax - autoSeekAtMin) / (autoSeqTempoHigh - autoSeqTempoLow)
	autoSeekC     = autoSeekAtMin - autoSeekK*autoSeqTempoLow
)

// tdStretch changes tempo without changing pitch using waveform similarity
// overlap-add: the input is cut into sequences that are cross-faded at the
// offset where consecutive sequences correlate best.
type tdStretch struct {
	channels   int
	sampleRate int
	tempo      float64

	sequenceMS   int
	seekWindowMS int
	overlapMS    int
	autoSeq      bool
	autoSeek     bool

	overlapLength    int
	seekWindowLength int
	seekLength       int
	nominalSkip      float64
	skipFract        float64
	sampleReq        int
	isBeginning      bool

	mid   []float32
	frame []float32
	input *fifo
}

func newTDStretch(sampleRate, channels int) *tdStretch {
	td := &tdStretch{
		channels:    channels,
		sampleRate:  sampleRate,
		tempo:       1,
		autoSeq:     true,
		autoSeek:    true,
		overlapMS:   DefaultOverlapMS,
		isBeginning: true,
		frame:       make([]float32, channels),
		input:       newFIFO(channels),
	}
	td.setParameters(0, 0, DefaultOverlapMS)
	return td
}

// setParameters sets the sequence, seek window and overlap lengths in
// milliseconds. Zero sequence or seek window selects the automatic length
// for the current tempo; negative values leave the setting unchanged.
func (td *tdStretch) setParameters(sequenceMS, seekWindowMS, overlapMS int) {
	switch {
	case sequenceMS > 0:
		td.sequenceMS = sequenceMS
		td.autoSeq = false
	case sequenceMS == 0:
		td.autoSeq = true
	}
	switch {
	case seekWindowMS > 0:
		td.seekWindowMS = seekWindowMS
		td.autoSeek = false
	case seekWindowMS == 0:
		td.autoSeek = true
	}
	if overlapMS > 0 {
		td.overlapMS = overlapMS
	}
	td.calcOverlapLength()
	td.setTempo(td.tempo)
}

func (td *tdStretch) calcOverlapLength() {
	n := td.sampleRate * td.overlapMS / 1000
	n = max(n, 16)
	n -= n % 8
	if n != td.overlapLength {
		td.overlapLength = n
		td.mid = make([]float32, n*td.channels)
	}
}

func (td *tdStretch) calcSeqParameters() {
	if td.autoSeq {
		seq := autoSeqC + autoSeqK*td.tempo
		seq = math.Max(autoSeqAtMax, math.Min(seq, autoSeqAtMin))
		td.sequenceMS = int(seq + 0.5)
	}
	if td.autoSeek {
		seek := autoSeekC + autoSeekK*td.tempo
		seek = math.Max(autoSeekAtMax, math.Min(seek, autoSeekAtMin))
		td.seekWindowMS = int(seek + 0.5)
	}
	td.seekWindowLength = max(td.sampleRate*td.sequenceMS/1000, 2*td.overlapLength)
	td.seekLength = td.sampleRate * td.seekWindowMS / 1000
}

func (td *tdStretch) setTempo(tempo float64) {
	td.tempo = tempo
	td.calcSeqParameters()
	td.nominalSkip = tempo * float64(td.seekWindowLength-td.overlapLength)
	intSkip := int(td.nominalSkip + 0.5)
	td.sampleReq = max(intSkip+td.overlapLength, td.seekWindowLength) + td.seekLength
}

// process stretches as much buffered input as possible into dst.
func (td *tdStretch) process(dst *fifo) {
	ch := td.channels
	for td.input.frames() >= td.sampleReq {
		src := td.input.samples()
		offset := 0
		if !td.isBeginning {
			offset = td.seekBestOverlapPosition(src)
			td.overlap(dst, src[offset*ch:])
		} else {
			// The first sequence has nothing to cross-fade with; skip ahead
			// so the first output frame lines up with the first input frame.
			td.isBeginning = false
			skip := int(td.tempo*float64(td.overlapLength) + 0.5*float64(td.seekLength) + 0.5)
			td.skipFract -= float64(skip)
			if td.skipFract <= -td.nominalSkip {
				td.skipFract = -td.nominalSkip
			}
		}

		n := td.seekWindowLength - 2*td.overlapLength
		start := (offset + td.overlapLength) * ch
		dst.put(src[start : start+n*ch])
		copy(td.mid, src[start+n*ch:start+(n+td.overlapLength)*ch])

		td.skipFract += td.nominalSkip
		skip := int(td.skipFract)
		td.skipFract -= float64(skip)
		td.input.drop(skip)
	}
}

// overlap cross-fades the previous sequence tail in mid into src and
// appends the result to dst.
func (td *tdStretch) overlap(dst *fifo, src []float32) {
	ch := td.channels
	scale := 1 / float32(td.overlapLength)
	for i := 0; i < td.overlapLength; i++ {
		fIn := float32(i) * scale
		fOut := 1 - fIn
		for c := 0; c < ch; c++ {
			k := i*ch + c
			td.frame[c] = src[k]*fIn + td.mid[k]*fOut
		}
		dst.put(td.frame)
	}
}

// seekBestOverlapPosition returns the offset within the seek window where
// src best continues the previous sequence.
func (td *tdStretch) seekBestOverlapPosition(src []float32) int {
	ch := td.channels
	bestOffset := 0
	bestCorr := math.Inf(-1)
	for i := 0; i < max(td.seekLength, 1); i++ {
		corr := td.crossCorr(src[i*ch:])
		// Favour offsets near the middle of the seek window.
		tmp := float64(2*i-td.seekLength) / float64(max(td.seekLength, 1))
		corr = (corr + 0.1) * (1 - 0.25*tmp*tmp)
		if corr > bestCorr {
			bestCorr = corr
			bestOffset = i
		}
	}
	return bestOffset
}

// crossCorr returns the correlation of src against mid, weighted towards
// the middle of the overlap and normalised by the energy of src.
func (td *tdStretch) crossCorr(src []float32) float64 {
	ch := td.channels
	var corr, norm float64
	for i := 0; i < td.overlapLength; i++ {
		w := float64(i * (td.overlapLength - i))
		for c := 0; c < ch; c++ {
			k := i*ch + c
			s := float64(src[k])
			corr += s * float64(td.mid[k]) * w
			norm += s * s
		}
	}
	if norm < 1e-9 {
		norm = 1
	}
	return corr / math.Sqrt(norm)
}

func (td *tdStretch) clearInput() {
	td.input.clear()
	td.isBeginning = true
	td.skipFract = 0
	clear(td.mid)
}
