package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/seekbot/internal/storage"
)

// Series names a column of a recorded run.
type Series string

const (
	SeriesDepth   Series = "depth"
	SeriesBBoxX   Series = "bbox_x"
	SeriesLinear  Series = "linear_x"
	SeriesAngular Series = "angular_z"
)

var AllSeries = []Series{SeriesDepth, SeriesBBoxX, SeriesLinear, SeriesAngular}

func (s Series) valid() bool {
	for _, known := range AllSeries {
		if s == known {
			return true
		}
	}
	return false
}

// Extract returns one value per tick. Ticks without a target, or without a
// valid depth for SeriesDepth, repeat the previous value so the chart stays
// continuous.
func Extract(rows []storage.TickRow, s Series) ([]float64, error) {
	if !s.valid() {
		return nil, fmt.Errorf("unknown series %q", s)
	}
	out := make([]float64, 0, len(rows))
	prev := math.NaN()
	for _, r := range rows {
		var v float64
		switch s {
		case SeriesDepth:
			if !r.Detected || !r.DepthValid {
				v = prev
			} else {
				v = r.Depth
			}
		case SeriesBBoxX:
			if !r.Detected {
				v = prev
			} else {
				v = r.BBoxX
			}
		case SeriesLinear:
			v = r.Linear
		case SeriesAngular:
			v = r.Angular
		}
		if !math.IsNaN(v) {
			prev = v
		}
		out = append(out, v)
	}

	// Leading gaps take the first known value.
	first := math.NaN()
	for _, v := range out {
		if !math.IsNaN(v) {
			first = v
			break
		}
	}
	for i := range out {
		if !math.IsNaN(out[i]) {
			break
		}
		out[i] = first
	}
	return out, nil
}

// Plot charts one series of a run. It returns "" when the series is empty or
// never defined.
func Plot(rows []storage.TickRow, s Series, width, height int) (string, error) {
	data, err := Extract(rows, s)
	if err != nil {
		return "", err
	}
	if len(data) == 0 || math.IsNaN(data[0]) {
		return "", nil
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s vs tick", s)),
	), nil
}
