package fusion

import (
	"encoding/binary"
	"math"
	"math/bits"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Encoding names a depth pixel format.
type Encoding string

const (
	Encoding16UC1  Encoding = "16UC1"
	Encoding32FC1  Encoding = "32FC1"
	EncodingMono16 Encoding = "mono16"
)

// BytesPerPixel returns the pixel width of e, or 0 when e is not supported.
func (e Encoding) BytesPerPixel() int {
	switch e {
	case Encoding16UC1, EncodingMono16:
		return 2
	case Encoding32FC1:
		return 4
	default:
		return 0
	}
}

// DepthFrame is a row-major depth image. Step is the row stride in bytes; zero
// means tightly packed.
type DepthFrame struct {
	Stamp     time.Time `json:"stamp"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Encoding  Encoding  `json:"encoding"`
	BigEndian bool      `json:"big_endian"`
	Step      int       `json:"step"`
	Data      []byte    `json:"data"`
}

// Validate checks the encoding and that Data covers every pixel.
func (f *DepthFrame) Validate() error {
	bpp := f.Encoding.BytesPerPixel()
	if bpp == 0 {
		return &FusionError{Stamp: f.Stamp, Encoding: f.Encoding, Wrapped: ErrUnsupportedEncoding}
	}
	if f.Width <= 0 || f.Height <= 0 {
		return &FusionError{Stamp: f.Stamp, Encoding: f.Encoding, Wrapped: ErrMalformedFrame}
	}
	// Dimensions are bounded by the buffer before any multiplication.
	n := len(f.Data)
	if f.Width > n/bpp || f.Height > n || f.Step > n {
		return &FusionError{Stamp: f.Stamp, Encoding: f.Encoding, Wrapped: ErrMalformedFrame}
	}
	row := f.Width * bpp
	step := f.stride()
	if step < row {
		return &FusionError{Stamp: f.Stamp, Encoding: f.Encoding, Wrapped: ErrMalformedFrame}
	}
	hi, need := bits.Mul64(uint64(step), uint64(f.Height-1))
	need, carry := bits.Add64(need, uint64(row), 0)
	if hi != 0 || carry != 0 || need > uint64(n) {
		return &FusionError{Stamp: f.Stamp, Encoding: f.Encoding, Wrapped: ErrMalformedFrame}
	}
	return nil
}

func (f *DepthFrame) stride() int {
	if f.Step > 0 {
		return f.Step
	}
	return f.Width * f.Encoding.BytesPerPixel()
}

func (f *DepthFrame) byteOrder() binary.ByteOrder {
	if f.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Meters returns the depth at pixel (x, y) in metres. It reports false for
// pixels outside the frame. The frame must have passed Validate.
func (f *DepthFrame) Meters(x, y int) (float64, bool) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0, false
	}
	bpp := f.Encoding.BytesPerPixel()
	off := y*f.stride() + x*bpp
	switch bpp {
	case 2:
		mm := f.byteOrder().Uint16(f.Data[off : off+2])
		return float64(mm) / 1000.0, true
	case 4:
		bits := f.byteOrder().Uint32(f.Data[off : off+4])
		return float64(math.Float32frombits(bits)), true
	}
	return 0, false
}

// Limits bounds the depth samples accepted into a patch average. A sample is
// valid when Min < v <= Max and v is finite.
type Limits struct {
	Min float64 `yaml:"depth_min"`
	Max float64 `yaml:"depth_max"`
}

func DefaultLimits() Limits {
	return Limits{Min: 0, Max: 10.0}
}

func (l Limits) valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > l.Min && v <= l.Max
}

// PatchDepth averages the valid samples in the square of side 2*halfWidth
// centred on (cx, cy), clipped to the frame. It returns (0, false) when the
// clipped patch is empty or holds no valid sample.
func PatchDepth(f *DepthFrame, cx, cy float64, halfWidth int, lim Limits) (float64, bool) {
	if math.IsNaN(cx) || math.IsNaN(cy) || halfWidth <= 0 {
		return 0, false
	}
	x0, x1, ok := clipSpan(cx, halfWidth, f.Width)
	if !ok {
		return 0, false
	}
	y0, y1, ok := clipSpan(cy, halfWidth, f.Height)
	if !ok {
		return 0, false
	}

	samples := make([]float64, 0, (x1-x0)*(y1-y0))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			v, ok := f.Meters(x, y)
			if ok && lim.valid(v) {
				samples = append(samples, v)
			}
		}
	}
	if len(samples) == 0 {
		return 0, false
	}
	return stat.Mean(samples, nil), true
}

// clipSpan returns [lo, hi) of the patch along one axis clipped to [0, size).
// The arithmetic stays in float64 so that huge centres cannot overflow int.
func clipSpan(c float64, half, size int) (int, int, bool) {
	base := math.Floor(c)
	lo := math.Max(0, base-float64(half))
	hi := math.Min(float64(size), base+float64(half))
	if lo >= hi {
		return 0, 0, false
	}
	return int(lo), int(hi), true
}
