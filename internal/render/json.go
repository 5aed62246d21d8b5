package render

import (
	"github.com/goccy/go-json"

	"github.com/mrsinham/echoreport/internal/report"
)

// JSON encodes rec with two-space indentation.
func JSON(rec report.Record) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, &RenderError{Format: FormatJSON, Err: err}
	}
	return append(data, '\n'), nil
}

// DecodeJSON reads a record previously written by JSON.
func DecodeJSON(data []byte) (report.Record, error) {
	var rec report.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return report.Record{}, err
	}
	return rec, nil
}
