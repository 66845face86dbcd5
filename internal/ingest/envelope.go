package ingest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/san-kum/seekbot/internal/fusion"
	"github.com/san-kum/seekbot/internal/servo"
)

var (
	ErrUnknownTopic = errors.New("unknown topic")
	ErrEmptyLine    = errors.New("empty line")
)

// Topics names the streams carried on the wire.
type Topics struct {
	Detections string `yaml:"detections"`
	Depth      string `yaml:"depth"`
	CmdVel     string `yaml:"cmd_vel"`
}

func DefaultTopics() Topics {
	return Topics{
		Detections: "detections_output",
		Depth:      "/depth/image_rect_raw",
		CmdVel:     "cmd_vel",
	}
}

// Sink consumes decoded sensor frames. *action.Server satisfies it.
type Sink interface {
	OnDetections(frame fusion.DetectionFrame)
	OnDepth(frame *fusion.DepthFrame) error
}

type header struct {
	Topic string `json:"topic"`
}

type detectionEnvelope struct {
	Topic string `json:"topic"`
	fusion.DetectionFrame
}

type depthEnvelope struct {
	Topic string `json:"topic"`
	fusion.DepthFrame
}

type cmdVelEnvelope struct {
	Topic string `json:"topic"`
	servo.Command
}

// EncodeDetections renders a detection frame as one wire line.
func EncodeDetections(topic string, frame fusion.DetectionFrame) ([]byte, error) {
	return encodeLine(detectionEnvelope{Topic: topic, DetectionFrame: frame})
}

// EncodeDepth renders a depth frame as one wire line. Data is base64 encoded.
func EncodeDepth(topic string, frame *fusion.DepthFrame) ([]byte, error) {
	return encodeLine(depthEnvelope{Topic: topic, DepthFrame: *frame})
}

// EncodeCommand renders a velocity command as one wire line.
func EncodeCommand(topic string, cmd servo.Command) ([]byte, error) {
	return encodeLine(cmdVelEnvelope{Topic: topic, Command: cmd})
}

func encodeLine(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Router decodes wire lines and dispatches them by topic.
type Router struct {
	topics Topics
	sink   Sink
}

func NewRouter(topics Topics, sink Sink) *Router {
	return &Router{topics: topics, sink: sink}
}

// Route decodes one line and hands the frame to the sink. The returned topic
// is empty when the header itself could not be read.
func (r *Router) Route(line []byte) (string, error) {
	if len(line) == 0 {
		return "", ErrEmptyLine
	}
	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return "", fmt.Errorf("decode header: %w", err)
	}

	switch h.Topic {
	case r.topics.Detections:
		var env detectionEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			return h.Topic, fmt.Errorf("decode %s: %w", h.Topic, err)
		}
		r.sink.OnDetections(env.DetectionFrame)
		return h.Topic, nil
	case r.topics.Depth:
		var env depthEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			return h.Topic, fmt.Errorf("decode %s: %w", h.Topic, err)
		}
		return h.Topic, r.sink.OnDepth(&env.DepthFrame)
	default:
		return h.Topic, fmt.Errorf("%w %q", ErrUnknownTopic, h.Topic)
	}
}
