package fusion

import "time"

// Detection is one bounding box reported by the perception pipeline.
type Detection struct {
	ClassID int     `json:"class_id"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Score   float64 `json:"score"`
}

// DetectionFrame is the detection list for one camera frame.
type DetectionFrame struct {
	Stamp      time.Time   `json:"stamp"`
	Detections []Detection `json:"detections"`
}

// Observation is the most recent fused sample for the goal's target class.
// BBoxX, BBoxY and DepthM are only meaningful when Detected is true.
type Observation struct {
	Stamp      time.Time
	BBoxX      float64
	BBoxY      float64
	DepthM     float64
	DepthValid bool
	Detected   bool
}
