package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

var tickHeader = []string{
	"tick", "time", "state", "detected", "bbox_x", "bbox_y",
	"depth", "depth_valid", "linear_x", "angular_z", "loss", "feedback",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata summarises one finished goal.
type RunMetadata struct {
	ID        string             `json:"id"`
	GoalID    string             `json:"goal_id"`
	Class     string             `json:"class"`
	ClassID   int                `json:"class_id"`
	Source    string             `json:"source"`
	Timestamp time.Time          `json:"timestamp"`
	Finished  time.Time          `json:"finished"`
	TickHz    float64            `json:"tick_hz"`
	Ticks     int                `json:"ticks"`
	Status    string             `json:"status"`
	Message   string             `json:"message"`
	Metrics   map[string]float64 `json:"metrics"`
}

// TickRow is one recorded controller tick. Time is seconds since the goal
// was accepted.
type TickRow struct {
	Tick       int     `json:"tick"`
	Time       float64 `json:"time"`
	State      string  `json:"state"`
	Detected   bool    `json:"detected"`
	BBoxX      float64 `json:"bbox_x"`
	BBoxY      float64 `json:"bbox_y"`
	Depth      float64 `json:"depth"`
	DepthValid bool    `json:"depth_valid"`
	Linear     float64 `json:"linear_x"`
	Angular    float64 `json:"angular_z"`
	Loss       string  `json:"loss"`
	Feedback   string  `json:"feedback"`
}

// Save writes meta and rows under a new run directory. An empty meta.ID is
// derived from the class and the acceptance time.
func (s *Store) Save(meta RunMetadata, rows []TickRow) (string, error) {
	if meta.ID == "" {
		meta.ID = RunID(meta.Class, meta.Timestamp, meta.GoalID)
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, ticksFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(tickHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// RunID names a run directory.
func RunID(class string, accepted time.Time, goalID string) string {
	suffix := goalID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if suffix == "" {
		return fmt.Sprintf("%s_%d", class, accepted.Unix())
	}
	return fmt.Sprintf("%s_%d_%s", class, accepted.Unix(), suffix)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTicks reads the tick rows of a run. Rows that fail to parse are skipped.
func (s *Store) LoadTicks(runID string) ([]TickRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TickRow{}, nil
	}

	rows := make([]TickRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row, err := parseRecord(record)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r TickRow) record() []string {
	return []string{
		strconv.Itoa(r.Tick),
		formatFloat(r.Time),
		r.State,
		strconv.FormatBool(r.Detected),
		formatFloat(r.BBoxX),
		formatFloat(r.BBoxY),
		formatFloat(r.Depth),
		strconv.FormatBool(r.DepthValid),
		formatFloat(r.Linear),
		formatFloat(r.Angular),
		r.Loss,
		r.Feedback,
	}
}

func parseRecord(record []string) (TickRow, error) {
	if len(record) != len(tickHeader) {
		return TickRow{}, fmt.Errorf("expected %d fields, got %d", len(tickHeader), len(record))
	}
	var (
		row    TickRow
		err    error
		floats [6]float64
		bools  [2]bool
	)
	if row.Tick, err = strconv.Atoi(record[0]); err != nil {
		return TickRow{}, err
	}
	for i, col := range []int{1, 4, 5, 6, 8, 9} {
		if floats[i], err = strconv.ParseFloat(record[col], 64); err != nil {
			return TickRow{}, err
		}
	}
	for i, col := range []int{3, 7} {
		if bools[i], err = strconv.ParseBool(record[col]); err != nil {
			return TickRow{}, err
		}
	}
	row.Time, row.BBoxX, row.BBoxY, row.Depth, row.Linear, row.Angular =
		floats[0], floats[1], floats[2], floats[3], floats[4], floats[5]
	row.Detected, row.DepthValid = bools[0], bools[1]
	row.State = record[2]
	row.Loss = record[10]
	row.Feedback = record[11]
	return row, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
