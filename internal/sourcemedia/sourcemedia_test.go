package sourcemedia

import (
	"testing"
)

const silverstackALE = "Heading\nFIELD_DELIM\tTABS\nVIDEO_FORMAT\t1080\nFPS\t23.976\n\n" +
	"Column\nName\tStart\tEnd\tASC_SOP\tASC_SAT\n\n" +
	"Data\nA001C001_230101.mov\t01:00:00:00\t01:00:02:00\t(1.0 1.0 1.0)(0.0 0.0 0.0)(1.0 1.0 1.0)\t1.0\n"

func TestImport_CDLAndDuration(t *testing.T) {
	records, warnings := Import(silverstackALE, Options{ProjectID: "p1"})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings.Strings())
	}
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	r := records[0]
	if r.FPS != 23.976 {
		t.Fatalf("FPS = %v", r.FPS)
	}
	if r.CDL == nil || r.CDL.Slope[0] != 1 || r.CDL.Slope[1] != 1 || r.CDL.Slope[2] != 1 || r.CDL.Saturation != 1 {
		t.Fatalf("CDL = %+v", r.CDL)
	}
	if r.DurationFrames == nil || *r.DurationFrames != 48 {
		t.Fatalf("DurationFrames = %v", r.DurationFrames)
	}
	if r.TCInFrames == nil || *r.TCInFrames != 3600*24 {
		t.Fatalf("TCInFrames = %v", r.TCInFrames)
	}
	if r.FileType != "mov" || r.ProjectID != "p1" {
		t.Fatalf("record = %+v", r)
	}
}

func TestImport_ARRIReport(t *testing.T) {
	input := "Heading\nFPS\t25\n\nColumn\n" +
		"Name\tReel_name\tCamera_index\tLens_type\tFrame_width\tFrame_height\tDate_camera\tCircled\tDuration\tFilter_note\n\n" +
		"Data\n" +
		"B003C002\tB003\tB\tCooke Anam/i 50mm\t3424\t2202\t20240311\tY\t00:00:04:00\tND.6\n" +
		"\tB003\tB\t\t\t\t\t\t\t\n"
	records, warnings := Import(input, Options{ProjectID: "p1", ShootDay: "12"})

	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v", warnings.Strings())
	}
	r := records[0]
	if r.Tape != "B003" || r.CameraRoll != "B003" || r.CameraID != "B" {
		t.Fatalf("identity = %+v", r)
	}
	if r.FocalLength != "50" || r.Resolution != "3424x2202" || r.ShootDate != "2024-03-11" || r.ShootDay != "12" {
		t.Fatalf("derived fields = %+v", r)
	}
	if !r.Circled {
		t.Fatalf("expected circled")
	}
	if r.DurationFrames == nil || *r.DurationFrames != 100 {
		t.Fatalf("DurationFrames = %v", r.DurationFrames)
	}
	if r.FileType != "" {
		t.Fatalf("FileType = %q", r.FileType)
	}
	if len(r.CustomMetadata) != 1 || r.CustomMetadata["Filter_note"] != "ND.6" {
		t.Fatalf("CustomMetadata = %v", r.CustomMetadata)
	}
}

func TestImport_CodecColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns string
		values  string
		want    string
	}{
		{name: "video codec", columns: "Video Codec\tCodec\tOriginal_video", values: "ProRes 4444\tH.264\tARRIRAW (3164p)", want: "ProRes 4444"},
		{name: "codec", columns: "Codec\tOriginal_video", values: "H.264\tARRIRAW (3164p)", want: "H.264"},
		{name: "ARRI original video", columns: "Original_video", values: "ARRIRAW (3164p)", want: "ARRIRAW (3164p)"},
		{name: "none", columns: "Scene", values: "12", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "Heading\nFPS\t24\n\nColumn\nName\t" + tt.columns + "\n\nData\nA001C001\t" + tt.values + "\n"
			records, _ := Import(input, Options{})
			if len(records) != 1 {
				t.Fatalf("records = %d", len(records))
			}
			if records[0].Codec != tt.want {
				t.Fatalf("Codec = %q, want %q", records[0].Codec, tt.want)
			}
		})
	}
}

func TestImport_IntegerDurationAndDefaultFPS(t *testing.T) {
	input := "Heading\n\nColumn\nClip Name\tDuration\n\nData\nC001\t120\n"
	records, _ := Import(input, Options{})
	if len(records) != 1 || records[0].FPS != 24 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].DurationFrames == nil || *records[0].DurationFrames != 120 {
		t.Fatalf("DurationFrames = %v", records[0].DurationFrames)
	}
	if records[0].CDL != nil {
		t.Fatalf("expected no CDL")
	}
}

func TestStore_UpsertLastWins(t *testing.T) {
	in := 100
	s := NewStore()
	added := s.Upsert(
		Record{ProjectID: "p", ClipName: "A", TCInFrames: &in, Scene: "1"},
		Record{ProjectID: "p", ClipName: "B"},
		Record{ProjectID: "p", ClipName: "A", TCInFrames: &in, Scene: "2"},
		Record{ProjectID: "q", ClipName: "A", TCInFrames: &in},
	)
	if added != 3 || s.Len() != 3 {
		t.Fatalf("added=%d len=%d", added, s.Len())
	}
	p := s.List("p")
	if len(p) != 2 || p[0].ClipName != "A" || p[0].Scene != "2" {
		t.Fatalf("List(p) = %+v", p)
	}
}

func TestSummarize(t *testing.T) {
	d1, d2 := 48, 24
	records, _ := Import(silverstackALE, Options{ProjectID: "p"})
	records = append(records,
		Record{Camera: "ALEXA", CameraID: "B", Scene: "12", ShootDate: "2024-03-11", DurationFrames: &d1},
		Record{CameraID: "A", Scene: "4", ShootDate: "2024-03-10", DurationFrames: &d2, Circled: true},
	)
	sum := Summarize(records)

	if sum.TotalClips != 3 || sum.WithCDL != 1 || sum.Circled != 1 {
		t.Fatalf("counts = %+v", sum)
	}
	if sum.TotalDurationFrames != 48+48+24 {
		t.Fatalf("TotalDurationFrames = %d", sum.TotalDurationFrames)
	}
	if got := sum.Cameras; len(got) != 3 || got[0] != "A" || got[1] != "ALEXA" || got[2] != "B" {
		t.Fatalf("Cameras = %v", got)
	}
	if got := sum.ShootDates; len(got) != 2 || got[0] != "2024-03-10" {
		t.Fatalf("ShootDates = %v", got)
	}
}
