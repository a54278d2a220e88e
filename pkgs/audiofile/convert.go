package audiofile

import "math"

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// toSample converts a decoded integer sample to [-1, 1].
func toSample(v, bitDepth int, format Format) float64 {
	if format == IEEEFloat {
		return float64(math.Float32frombits(uint32(int32(v))))
	}
	switch bitDepth {
	case 8:
		return float64(v-128) / 128
	case 16:
		return float64(v) / 32768
	case 24:
		return float64(v) / 8388608
	case 32:
		return float64(v) / math.MaxInt32
	}
	return 0
}

// fromSample converts a sample to the integer the WAV encoder writes.
func fromSample(s float64, bitDepth int, format Format) int {
	if format == IEEEFloat {
		return int(int32(math.Float32bits(float32(s))))
	}
	switch bitDepth {
	case 8:
		return int(sampleToUnsignedByte(s))
	case 16:
		return int(sampleToSixteenBitInt(s))
	case 24:
		return int(sampleToTwentyFourBitInt(s))
	case 32:
		return int(sampleToThirtyTwoBitInt(s))
	}
	return 0
}

func sampleToUnsignedByte(s float64) uint8 {
	s = clamp(s, -1, 1)
	s = (s + 1) / 2
	return uint8(1 + s*254)
}

func sampleToSixteenBitInt(s float64) int16 {
	return int16(clamp(s, -1, 1) * 32767)
}

func sampleToTwentyFourBitInt(s float64) int32 {
	return int32(clamp(s, -1, 1) * 8388607)
}

// sampleToThirtyTwoBitInt saturates at full scale; scaling 1.0 by MaxInt32
// in floating point can overflow.
func sampleToThirtyTwoBitInt(s float64) int32 {
	switch {
	case s >= 1:
		return math.MaxInt32
	case s <= -1:
		return math.MinInt32 + 1
	}
	return int32(s * math.MaxInt32)
}
