package main

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/interchange"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
)

// column is one field of a listing: its header, how to print it for a row,
// and whether it holds a count.
type column[T any] struct {
	header string
	value  func(T) string
	count  bool
	// wrap caps free-text columns on terminals; CSV output is never wrapped.
	wrap int
}

const notesWidth = 48

var shotColumns = []column[shot.Shot]{
	{header: "Code", value: func(s shot.Shot) string { return s.Code }},
	{header: "Clip", value: func(s shot.Shot) string { return s.ClipName }},
	{header: "Source In", value: func(s shot.Shot) string { return s.SourceIn }},
	{header: "Source Out", value: func(s shot.Shot) string { return s.SourceOut }},
	{header: "Record In", value: func(s shot.Shot) string { return s.RecordIn }},
	{header: "Record Out", value: func(s shot.Shot) string { return s.RecordOut }},
	{header: "Frames", value: func(s shot.Shot) string { return strconv.Itoa(s.DurationFrames) }, count: true},
	{header: "Notes", value: func(s shot.Shot) string { return s.VFXNotes }, wrap: notesWidth},
}

var countSheetColumns = []column[shot.CountSheet]{
	{header: "Code", value: func(c shot.CountSheet) string { return c.Code }},
	{header: "Cut", value: func(c shot.CountSheet) string { return strconv.Itoa(c.CutFrames) }, count: true},
	{header: "Head", value: func(c shot.CountSheet) string { return strconv.Itoa(c.HandleHead) }, count: true},
	{header: "Tail", value: func(c shot.CountSheet) string { return strconv.Itoa(c.HandleTail) }, count: true},
	{header: "Working", value: func(c shot.CountSheet) string { return strconv.Itoa(c.WorkingFrames) }, count: true},
	{header: "Scene/Take", value: func(c shot.CountSheet) string { return c.SceneTake }},
	{header: "Reposition", value: func(c shot.CountSheet) string { return c.Reposition }},
	{header: "Speed", value: func(c shot.CountSheet) string { return c.Speed }},
}

var mediaColumns = []column[sourcemedia.Record]{
	{header: "Clip", value: func(r sourcemedia.Record) string { return r.ClipName }},
	{header: "TC In", value: func(r sourcemedia.Record) string { return r.TCIn }},
	{header: "TC Out", value: func(r sourcemedia.Record) string { return r.TCOut }},
	{header: "Camera", value: func(r sourcemedia.Record) string { return firstNonEmpty(r.CameraID, r.Camera) }},
	{header: "Scene", value: func(r sourcemedia.Record) string { return r.Scene }},
	{header: "Take", value: func(r sourcemedia.Record) string { return r.Take }},
	{header: "Circled", value: func(r sourcemedia.Record) string { return yesNo(r.Circled) }},
	{header: "CDL", value: func(r sourcemedia.Record) string { return yesNo(r.CDL != nil) }},
}

// summaryField is one line of the source media summary.
type summaryField struct {
	name, value string
}

var summaryColumns = []column[summaryField]{
	{header: "Field", value: func(f summaryField) string { return f.name }},
	{header: "Value", value: func(f summaryField) string { return f.value }, wrap: notesWidth},
}

func summaryFields(s sourcemedia.Summary) []summaryField {
	return []summaryField{
		{"Clips", strconv.Itoa(s.TotalClips)},
		{"Shoot dates", strings.Join(s.ShootDates, ", ")},
		{"Cameras", strings.Join(s.Cameras, ", ")},
		{"Scenes", strings.Join(s.Scenes, ", ")},
		{"Total frames", strconv.Itoa(s.TotalDurationFrames)},
		{"With CDL", strconv.Itoa(s.WithCDL)},
		{"Circled", strconv.Itoa(s.Circled)},
	}
}

var matchColumns = []column[shotMatch]{
	{header: "Code", value: func(m shotMatch) string { return m.Code }},
	{header: "Clip", value: func(m shotMatch) string { return m.Clip }},
	{header: "Source Media", value: func(m shotMatch) string { return m.Media }},
	{header: "Strategy", value: func(m shotMatch) string { return string(m.Strategy) }},
}

var deliveryColumns = []column[delivery]{
	{header: "File", value: func(d delivery) string { return d.File }},
	{header: "Shots", value: func(d delivery) string { return strings.Join(d.Codes, " ") }},
}

// markerLine is either a shot with its merged notes or a marker that fell
// outside every shot.
type markerLine struct {
	code, unmatchedAt, notes string
}

var markerColumns = []column[markerLine]{
	{header: "Shot", value: func(l markerLine) string { return l.code }},
	{header: "Unmatched At", value: func(l markerLine) string { return l.unmatchedAt }},
	{header: "Notes", value: func(l markerLine) string { return l.notes }, wrap: notesWidth},
}

// parsedFile pairs a parse result with the frame rate it was read at.
type parsedFile struct {
	result *interchange.Result
	fps    float64
}

var parseColumns = []column[parsedFile]{
	{header: "File", value: func(p parsedFile) string { return p.result.Filename }},
	{header: "Format", value: func(p parsedFile) string { return string(p.result.Format) }},
	{header: "Records", value: func(p parsedFile) string { return strconv.Itoa(p.result.RecordCount()) }, count: true},
	{header: "FPS", value: func(p parsedFile) string { return strconv.FormatFloat(p.fps, 'f', -1, 64) }, count: true},
	{header: "Warnings", value: func(p parsedFile) string { return strconv.Itoa(len(p.result.Warnings)) }, count: true},
}

// correction is one CDL entry with the file it came from.
type correction struct {
	file  string
	entry cdl.Entry
}

var correctionColumns = []column[correction]{
	{header: "File", value: func(c correction) string { return c.file }},
	{header: "ID", value: func(c correction) string { return c.entry.ID }},
	{header: "Clip", value: func(c correction) string { return c.entry.Identifier() }},
	{header: "ASC_SOP", value: func(c correction) string { return cdl.FormatSOP(c.entry.Correction) }},
	{header: "ASC_SAT", value: func(c correction) string { return cdl.FormatSAT(c.entry.Saturation) }},
}

// renderTable draws items as a rounded table for terminals, or as CSV when
// csv is set.
func renderTable[T any](items []T, columns []column[T], csv bool) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.header
		align := text.AlignLeft
		if c.count {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
		if c.wrap > 0 && !csv {
			configs[i].WidthMax = c.wrap
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, item := range items {
		row := make(table.Row, len(columns))
		for i, c := range columns {
			row[i] = c.value(item)
		}
		tw.AppendRow(row)
	}

	if csv {
		return tw.RenderCSV()
	}
	return tw.Render()
}
