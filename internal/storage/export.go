package storage

import (
	"encoding/json"
	"io"
	"os"
)

// ExportData is a run in a single JSON document.
type ExportData struct {
	Metadata RunMetadata `json:"metadata"`
	Ticks    []TickRow   `json:"ticks"`
}

// Export writes a stored run as indented JSON to path, or to stdout when
// path is "-".
func (s *Store) Export(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	rows, err := s.LoadTicks(runID)
	if err != nil {
		return err
	}

	if path == "-" {
		return writeExport(os.Stdout, *meta, rows)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeExport(file, *meta, rows)
}

func writeExport(w io.Writer, meta RunMetadata, rows []TickRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Metadata: meta, Ticks: rows})
}
