// Package ale reads Avid Log Exchange files, both the database-style logs
// written by Media Composer and the production logs written by Silverstack
// and other on-set tools.
package ale

import (
	"encoding/json"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/diag"
)

const DefaultFieldDelimiter = "TABS"

type Heading struct {
	FieldDelimiter string            `json:"field_delim"`
	VideoFormat    string            `json:"video_format,omitempty"`
	AudioFormat    string            `json:"audio_format,omitempty"`
	FPS            string            `json:"fps,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Record is one Data row. It always holds exactly one value per column.
type Record struct {
	columns []string
	values  []string
}

func NewRecord(columns []string, values []string) Record {
	r := Record{columns: columns, values: make([]string, len(columns))}
	copy(r.values, values)
	return r
}

func (r Record) Get(column string) string {
	for i, c := range r.columns {
		if c == column {
			return r.values[i]
		}
	}
	return ""
}

// First returns the first non-empty value among the given column aliases.
func (r Record) First(columns ...string) string {
	for _, c := range columns {
		if v := r.Get(c); v != "" {
			return v
		}
	}
	return ""
}

func (r Record) Columns() []string { return r.columns }

func (r Record) Values() []string { return r.values }

func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

type Result struct {
	Heading     Heading   `json:"heading"`
	Columns     []string  `json:"columns"`
	Records     []Record  `json:"records"`
	RecordCount int       `json:"record_count"`
	Warnings    diag.List `json:"warnings"`
}

type section int

const (
	sectionNone section = iota
	sectionHeading
	sectionColumn
	sectionData
)

// Parse reads ALE text. Problems are reported as warnings and parsing
// continues with the next line.
func Parse(content string) *Result {
	result := &Result{
		Heading: Heading{FieldDelimiter: DefaultFieldDelimiter},
		Columns: []string{},
		Records: []Record{},
	}

	state := sectionNone
	content = strings.ReplaceAll(content, "\r\n", "\n")
	for i, line := range strings.Split(content, "\n") {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch trimmed {
		case "Heading":
			state = sectionHeading
			continue
		case "Column":
			state = sectionColumn
			continue
		case "Data":
			state = sectionData
			continue
		}

		switch state {
		case sectionHeading:
			key, value, _ := strings.Cut(trimmed, "\t")
			result.Heading.set(strings.TrimSpace(key), strings.TrimSpace(value))

		case sectionColumn:
			result.Columns = splitColumns(line)
			if len(result.Columns) == 0 {
				result.Warnings.Addf(lineNum, line, "empty column definition")
			}

		case sectionData:
			if len(result.Columns) == 0 {
				result.Warnings.Addf(lineNum, line, "data row before column definition")
				continue
			}
			values := strings.Split(line, "\t")
			if len(values) > len(result.Columns) {
				result.Warnings.Addf(lineNum, line, "row has %d values but only %d columns", len(values), len(result.Columns))
				values = values[:len(result.Columns)]
			}
			for j := range values {
				values[j] = strings.TrimSpace(values[j])
			}
			result.Records = append(result.Records, NewRecord(result.Columns, values))
		}
	}

	if len(result.Columns) == 0 {
		result.Warnings.Addf(0, "", "no column definition found in ALE file")
	}
	result.RecordCount = len(result.Records)
	return result
}

func (h *Heading) set(key, value string) {
	switch strings.ToUpper(key) {
	case "FIELD_DELIM":
		h.FieldDelimiter = value
	case "VIDEO_FORMAT":
		h.VideoFormat = value
	case "AUDIO_FORMAT":
		h.AudioFormat = value
	case "FPS":
		h.FPS = value
	default:
		if h.Extra == nil {
			h.Extra = make(map[string]string)
		}
		h.Extra[key] = value
	}
}

func splitColumns(line string) []string {
	columns := []string{}
	for _, c := range strings.Split(line, "\t") {
		if c = strings.TrimSpace(c); c != "" {
			columns = append(columns, c)
		}
	}
	return columns
}
