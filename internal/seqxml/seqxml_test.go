package seqxml

import (
	"strings"
	"testing"
)

const premiereXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE xmeml>
<xmeml version="4">
  <project>
    <name>Turnover</name>
    <children>
      <sequence id="sequence-7" explodedTracks="true">
        <name>REEL1_v12</name>
        <duration>240</duration>
        <rate><timebase>24</timebase><ntsc>TRUE</ntsc></rate>
        <media>
          <video>
            <format>
              <samplecharacteristics><width>4096</width><height>2160</height></samplecharacteristics>
            </format>
            <track>
              <clipitem id="clipitem-1">
                <name>006_050_bg1_v1</name>
                <duration>480</duration>
                <rate><timebase>24</timebase><ntsc>TRUE</ntsc></rate>
                <start>0</start>
                <end>48</end>
                <in>100</in>
                <out>148</out>
                <file id="file-1">
                  <name>A001C003_220101_R1AB.mov</name>
                  <pathurl>file://localhost/Volumes/RAID/A001C003_220101_R1AB.mov</pathurl>
                  <rate><timebase>24</timebase><ntsc>TRUE</ntsc></rate>
                  <timecode>
                    <string>14:22:10:05</string>
                    <frame>1241285</frame>
                    <reel><name>A001</name></reel>
                  </timecode>
                </file>
                <filter>
                  <effect>
                    <name>Basic Motion</name>
                    <effectid>basic</effectid>
                    <parameter><parameterid>scale</parameterid><name>Scale</name><value>110</value></parameter>
                    <parameter><parameterid>rotation</parameterid><name>Rotation</name><value>0</value></parameter>
                    <parameter><parameterid>center</parameterid><name>Center</name><value><horiz>0.05</horiz><vert>-0.02</vert></value></parameter>
                  </effect>
                </filter>
                <filter>
                  <effect>
                    <name>Time Remapping</name>
                    <effectid>timeremap</effectid>
                    <parameter><parameterid>variablespeed</parameterid><name>variablespeed</name><value>0</value></parameter>
                    <parameter><parameterid>speed</parameterid><name>speed</name><value>100</value></parameter>
                    <parameter><parameterid>reverse</parameterid><name>reverse</name><value>FALSE</value></parameter>
                  </effect>
                </filter>
                <logginginfo><scene>6</scene><shottake>3</shottake><description>wide</description></logginginfo>
                <labels><label2>Iris</label2></labels>
                <colorinfo><asc_sop>(1.1 1.0 0.9)(0 0 0)(1 1 1)</asc_sop><asc_sat>0.8</asc_sat></colorinfo>
              </clipitem>
              <clipitem id="clipitem-2">
                <name>006_060_fg_v1</name>
                <start>48</start>
                <end>96</end>
                <in>10</in>
                <out>58</out>
                <file id="file-1"/>
                <filter>
                  <effect>
                    <name>Time Remapping</name>
                    <effectid>timeremap</effectid>
                    <parameter><name>speed</name><value>50</value></parameter>
                    <parameter><name>reverse</name><value>TRUE</value></parameter>
                  </effect>
                </filter>
                <filter>
                  <effect>
                    <name>Basic Motion</name>
                    <effectid>basic</effectid>
                    <parameter><name>Scale</name><value>100</value></parameter>
                  </effect>
                </filter>
                <colorinfo><asc_sop>(1 1 1)(0 0 0)(1 1 1)</asc_sop></colorinfo>
              </clipitem>
              <clipitem id="clipitem-3">
                <start>96</start>
                <end>120</end>
              </clipitem>
            </track>
          </video>
        </media>
      </sequence>
    </children>
  </project>
</xmeml>
<!-- Adobe Premiere Pro -->
`

func TestParse_Sequence(t *testing.T) {
	result := Parse(premiereXML)

	if result.Format != FormatPremiere {
		t.Fatalf("Format = %q", result.Format)
	}
	if result.Version != "4" {
		t.Fatalf("Version = %q", result.Version)
	}
	if len(result.Sequences) != 1 {
		t.Fatalf("expected 1 sequence, got %d", len(result.Sequences))
	}
	seq := result.Sequences[0]
	if seq.ID != "sequence-7" || seq.Name != "REEL1_v12" || seq.Duration != 240 {
		t.Fatalf("sequence header = %+v", seq)
	}
	if seq.FPS < 23.97 || seq.FPS > 23.98 {
		t.Fatalf("FPS = %v, want 23.976", seq.FPS)
	}
	if seq.Width != 4096 || seq.Height != 2160 {
		t.Fatalf("frame size = %dx%d", seq.Width, seq.Height)
	}
	if len(seq.Clips) != 2 || result.TotalClips != 2 {
		t.Fatalf("clips = %d total = %d", len(seq.Clips), result.TotalClips)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "missing name") {
		t.Fatalf("warnings = %v", result.Warnings.Strings())
	}
}

func TestParse_ClipMetadata(t *testing.T) {
	clip := Parse(premiereXML).Sequences[0].Clips[0]

	if clip.Name != "006_050_bg1_v1" || clip.SourceFileName != "A001C003_220101_R1AB.mov" {
		t.Fatalf("names = %q / %q", clip.Name, clip.SourceFileName)
	}
	if clip.Start != 0 || clip.End != 48 || clip.In != 100 || clip.Out != 148 || clip.Duration != 480 {
		t.Fatalf("timing = %+v", clip)
	}
	if clip.SourceTimecode != "14:22:10:05" || clip.SourceTimecodeFrame == nil || *clip.SourceTimecodeFrame != 1241285 {
		t.Fatalf("source timecode = %q / %v", clip.SourceTimecode, clip.SourceTimecodeFrame)
	}
	if clip.ReelName != "A001" || clip.Scene != "6" || clip.Take != "3" || clip.Label != "Iris" || clip.Description != "wide" {
		t.Fatalf("logging = %+v", clip)
	}

	if !clip.HasReposition || clip.Transform.Scale != 110 || clip.Transform.PositionX != 0.05 || clip.Transform.PositionY != -0.02 {
		t.Fatalf("transform = %+v", clip.Transform)
	}
	if clip.HasSpeedChange {
		t.Fatalf("100%% time remap effect should not flag a speed change: %+v", clip.Speed)
	}
	if !clip.HasCDL || clip.CDL.Slope[0] != 1.1 || clip.CDL.Saturation != 0.8 {
		t.Fatalf("cdl = %+v", clip.CDL)
	}
	if result := Parse(premiereXML); result.ClipsWithReposition != 1 || result.ClipsWithSpeedChange != 1 || result.ClipsWithCDL != 1 {
		t.Fatalf("stats reposition=%d speed=%d cdl=%d", result.ClipsWithReposition, result.ClipsWithSpeedChange, result.ClipsWithCDL)
	}
}

func TestParse_FileReferenceAndSpeed(t *testing.T) {
	clip := Parse(premiereXML).Sequences[0].Clips[1]

	if clip.SourceFileName != "A001C003_220101_R1AB.mov" || clip.ReelName != "A001" {
		t.Fatalf("file reference not resolved: %+v", clip)
	}
	if !clip.HasSpeedChange || clip.Speed.Ratio != 0.5 || !clip.Speed.Reverse || clip.Speed.TimeRemapping {
		t.Fatalf("speed = %+v", clip.Speed)
	}
	if clip.HasReposition {
		t.Fatalf("identity motion flagged as reposition: %+v", clip.Transform)
	}
	if clip.HasCDL || clip.CDL == nil {
		t.Fatalf("identity grade should parse without flagging: %+v", clip.CDL)
	}
}

func TestParse_RateMismatchIsSpeedChange(t *testing.T) {
	input := `<xmeml version="5"><sequence><name>S</name><rate><timebase>24</timebase></rate><media><video><track>
<clipitem id="c1"><name>shot</name><rate><timebase>24</timebase></rate>
<file id="f1"><name>a.mov</name><rate><timebase>48</timebase></rate></file></clipitem>
</track></video></media></sequence></xmeml>`
	result := Parse(input)

	if result.Format != FormatFCP7 {
		t.Fatalf("plain xmeml format = %q", result.Format)
	}
	clip := result.Sequences[0].Clips[0]
	if !clip.HasSpeedChange || clip.Speed.Ratio != 2 {
		t.Fatalf("speed = %+v", clip.Speed)
	}
}

func TestParse_Malformed(t *testing.T) {
	result := Parse(`<xmeml version="5"><sequence><name>ok</name></sequence><sequence><name>broken`)

	if len(result.Sequences) != 1 || result.Sequences[0].Name != "ok" {
		t.Fatalf("sequences = %+v", result.Sequences)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning for truncated XML")
	}
	if result.Sequences[0].Width != 1920 || result.Sequences[0].FPS != 24 {
		t.Fatalf("defaults = %+v", result.Sequences[0])
	}
}
