package fusion

import (
	"encoding/binary"
	"math"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

// mono16Frame builds a 16UC1 frame filled with mm.
func mono16Frame(stamp time.Time, w, h int, mm uint16) *DepthFrame {
	data := make([]byte, w*h*2)
	for i := 0; i < w*h; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], mm)
	}
	return &DepthFrame{Stamp: stamp, Width: w, Height: h, Encoding: Encoding16UC1, Data: data}
}

func float32Frame(stamp time.Time, w, h int, m float32) *DepthFrame {
	data := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(m))
	}
	return &DepthFrame{Stamp: stamp, Width: w, Height: h, Encoding: Encoding32FC1, Data: data}
}

func setMono16(f *DepthFrame, x, y int, mm uint16) {
	binary.LittleEndian.PutUint16(f.Data[(y*f.Width+x)*2:], mm)
}
