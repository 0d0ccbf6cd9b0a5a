package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heimdex/heimdex-turnover/internal/config"
	"github.com/heimdex/heimdex-turnover/internal/matching"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
)

const testEDL = "TITLE: REEL1\nFCM: NON-DROP FRAME\n\n" +
	"001  A001C001 V     C        01:00:00:10 01:00:01:10 01:00:00:00 01:00:01:00\n" +
	"002  B001C002 V     C        05:00:00:00 05:00:02:00 01:00:01:00 01:00:03:00\n"

const testALE = "Heading\nFIELD_DELIM\tTABS\nVIDEO_FORMAT\t1080\nFPS\t24\n\n" +
	"Column\nName\tStart\tEnd\tCamera\tScene\n\n" +
	"Data\n" +
	"A001C001.mov\t01:00:00:00\t01:00:02:00\tA\t12\n" +
	"C001C001.mov\t07:00:00:00\t07:00:01:00\tC\t14\n"

const testMarkers = "M1\t01:00:00:12\tV1\tred\tremove boom\n" +
	"M2\t02:00:00:00\tV1\tblue\toff the cut\n"

const testCCC = `<?xml version="1.0" encoding="UTF-8"?>
<ColorCorrectionCollection xmlns="urn:ASC:CDL:v1.01">
  <ColorCorrection id="REEL1_002">
    <SOPNode>
      <Slope>1.1 1 0.9</Slope>
      <Offset>0 0 0</Offset>
      <Power>1 1 1</Power>
    </SOPNode>
    <SatNode><Saturation>0.8</Saturation></SatNode>
  </ColorCorrection>
</ColorCorrectionCollection>
`

type cliFiles struct {
	dir     string
	edl     string
	ale     string
	markers string
	ccc     string
}

func setupCLI(t *testing.T) cliFiles {
	t.Helper()
	t.Setenv(config.EnvDataDir, t.TempDir())
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv(config.EnvDefaultFPS, "")
	t.Setenv(config.EnvProjectID, "")

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	return cliFiles{
		dir:     dir,
		edl:     write("reel1.edl", testEDL),
		ale:     write("day1.ale", testALE),
		markers: write("markers.txt", testMarkers),
		ccc:     write("grades.ccc", testCCC),
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, stderr, err := runCLI(t, append(args, "--json")...)
	if err != nil {
		t.Fatalf("%v: %v (stderr %q)", args, err, stderr)
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
}

func TestParseCommand_CSVWhenPiped(t *testing.T) {
	files := setupCLI(t)

	out, _, err := runCLI(t, "parse", files.edl, files.ale)
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	if !strings.HasPrefix(strings.ToLower(out), "file,format,records,fps,warnings") {
		t.Fatalf("output is not CSV:\n%s", out)
	}
	if !strings.Contains(out, "reel1.edl,edl,2,") || !strings.Contains(out, "day1.ale,ale,2,24,") {
		t.Fatalf("unexpected rows:\n%s", out)
	}
}

func TestParseCommand_UnknownFormatFlag(t *testing.T) {
	files := setupCLI(t)

	if _, _, err := runCLI(t, "parse", "--format", "mp4", files.edl); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, _, err := runCLI(t, "parse", filepath.Join(files.dir, "missing.edl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestShotsCommand(t *testing.T) {
	files := setupCLI(t)

	var shots []shot.Shot
	runJSON(t, &shots, "shots", files.edl)
	if len(shots) != 2 || shots[0].Code != "REEL1_001" || shots[1].DurationFrames != 48 {
		t.Fatalf("shots = %+v", shots)
	}

	var sheets []shot.CountSheet
	runJSON(t, &sheets, "shots", files.edl, "--count-sheet", "--handles", "12")
	if len(sheets) != 2 || sheets[0].CutFrames != 24 || sheets[0].WorkingFrames != 48 {
		t.Fatalf("count sheets = %+v", sheets)
	}

	if _, _, err := runCLI(t, "shots", files.ale); err == nil {
		t.Fatal("an ALE is not a timeline")
	}
}

func TestMarkersCommand(t *testing.T) {
	files := setupCLI(t)

	var m matching.MarkerMatch
	runJSON(t, &m, "markers", files.markers, "--timeline", files.edl)
	if m.MatchedCount != 1 || m.Matches["REEL1_001"] != "remove boom" || len(m.Unmatched) != 1 {
		t.Fatalf("match = %+v", m)
	}

	if _, _, err := runCLI(t, "markers", files.markers); err == nil {
		t.Fatal("expected error without --timeline")
	}
}

func TestSourceMediaCommand(t *testing.T) {
	files := setupCLI(t)

	var records []sourcemedia.Record
	runJSON(t, &records, "source-media", files.ale, files.ale, "--project", "show-a")
	if len(records) != 2 || records[0].ProjectID != "show-a" {
		t.Fatalf("records = %+v", records)
	}

	var summary sourcemedia.Summary
	runJSON(t, &summary, "media", files.ale, "--summary")
	if summary.TotalClips != 2 || len(summary.Scenes) != 2 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestMatchCommand(t *testing.T) {
	files := setupCLI(t)

	var matches []shotMatch
	runJSON(t, &matches, "match", files.edl, "--ale", files.ale)
	if len(matches) != 2 {
		t.Fatalf("matches = %+v", matches)
	}
	if matches[0].Media != "A001C001.mov" || matches[0].Strategy != matching.StrategyTimecode {
		t.Fatalf("first match = %+v", matches[0])
	}
	if matches[1].Media != "" {
		t.Fatalf("second shot should not match: %+v", matches[1])
	}
}

func TestCDLCommand(t *testing.T) {
	files := setupCLI(t)

	out, _, err := runCLI(t, "cdl", files.ccc)
	if err != nil {
		t.Fatalf("cdl error = %v", err)
	}
	if !strings.Contains(out, "grades.ccc,REEL1_002,REEL1_002,") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestDeliveriesCommand(t *testing.T) {
	files := setupCLI(t)

	vendor := t.TempDir()
	for _, name := range []string{"REEL1_002_comp_v003.exr", "notes.pdf", ".DS_Store"} {
		os.WriteFile(filepath.Join(vendor, name), []byte("x"), 0644)
	}

	var out []delivery
	runJSON(t, &out, "deliveries", vendor, "--timeline", files.edl)
	if len(out) != 2 {
		t.Fatalf("deliveries = %+v", out)
	}
	for _, d := range out {
		switch d.File {
		case "REEL1_002_comp_v003.exr":
			if len(d.Codes) != 1 || d.Codes[0] != "REEL1_002" {
				t.Fatalf("codes = %v", d.Codes)
			}
		case "notes.pdf":
			if len(d.Codes) != 0 {
				t.Fatalf("codes = %v", d.Codes)
			}
		default:
			t.Fatalf("unexpected file %s", d.File)
		}
	}
}

func TestExportCommand(t *testing.T) {
	files := setupCLI(t)
	outDir := t.TempDir()

	out, _, err := runCLI(t, "export", "edl", files.edl, "--title", "Reel 1", "--out", outDir)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	path := filepath.Join(outDir, "Reel 1.edl")
	if !strings.Contains(out, path) {
		t.Fatalf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.HasPrefix(string(data), "TITLE: Reel 1") {
		t.Fatalf("file = %q, %v", data, err)
	}

	out, _, err = runCLI(t, "export", "ccc", files.edl, "--cdl", files.ccc)
	if err != nil {
		t.Fatalf("export ccc error = %v", err)
	}
	if !strings.Contains(out, `id="REEL1_002"`) || strings.Contains(out, `id="REEL1_001"`) {
		t.Fatalf("ccc output:\n%s", out)
	}

	if _, _, err := runCLI(t, "export", "aaf", files.edl); err == nil {
		t.Fatal("expected error for unknown export format")
	}
}

func TestVersionCommand(t *testing.T) {
	setupCLI(t)

	out, _, err := runCLI(t, "version")
	if err != nil || !strings.HasPrefix(out, "turnover "+config.Version) {
		t.Fatalf("version = %q, %v", out, err)
	}
}
