package seqxml

import "strings"

// xmeml element shapes shared by Final Cut Pro 7, Premiere Pro and Resolve
// exports. Numeric fields are kept as text so one bad value does not abort
// decoding of the whole sequence.

type xRate struct {
	Timebase string `xml:"timebase"`
	NTSC     string `xml:"ntsc"`
}

type xSequence struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name"`
	Duration string `xml:"duration"`
	Rate     xRate  `xml:"rate"`
	Media    struct {
		Video struct {
			Format struct {
				Samples struct {
					Width  string `xml:"width"`
					Height string `xml:"height"`
				} `xml:"samplecharacteristics"`
			} `xml:"format"`
			Tracks []xTrack `xml:"track"`
		} `xml:"video"`
	} `xml:"media"`
}

type xTrack struct {
	ClipItems []xClipItem `xml:"clipitem"`
}

type xClipItem struct {
	ID       string      `xml:"id,attr"`
	Name     string      `xml:"name"`
	Duration string      `xml:"duration"`
	Rate     *xRate      `xml:"rate"`
	Start    string      `xml:"start"`
	End      string      `xml:"end"`
	In       string      `xml:"in"`
	Out      string      `xml:"out"`
	File     *xFile      `xml:"file"`
	Filters  []xFilter   `xml:"filter"`
	Logging  *xLogging   `xml:"logginginfo"`
	Film     *xFilmData  `xml:"filmdata"`
	Labels   *xLabels    `xml:"labels"`
	Color    *xColorInfo `xml:"colorinfo"`
}

type xFile struct {
	ID       string      `xml:"id,attr"`
	Name     string      `xml:"name"`
	PathURL  string      `xml:"pathurl"`
	Rate     *xRate      `xml:"rate"`
	Timecode *xTimecode  `xml:"timecode"`
	Logging  *xLogging   `xml:"logginginfo"`
	Film     *xFilmData  `xml:"filmdata"`
	Color    *xColorInfo `xml:"colorinfo"`
}

func (f *xFile) defined() bool {
	return f != nil && (f.Name != "" || f.PathURL != "" || f.Timecode != nil)
}

type xTimecode struct {
	Rate   *xRate `xml:"rate"`
	String string `xml:"string"`
	Frame  string `xml:"frame"`
	Reel   struct {
		Name string `xml:"name"`
	} `xml:"reel"`
}

type xLogging struct {
	Scene       string `xml:"scene"`
	ShotTake    string `xml:"shottake"`
	Description string `xml:"description"`
}

type xFilmData struct {
	CameraRoll string `xml:"cameraroll"`
}

type xLabels struct {
	Label2 string `xml:"label2"`
}

type xColorInfo struct {
	SOP string `xml:"asc_sop"`
	SAT string `xml:"asc_sat"`
}

type xFilter struct {
	Effect xEffect `xml:"effect"`
}

type xEffect struct {
	Name       string       `xml:"name"`
	EffectID   string       `xml:"effectid"`
	Parameters []xParameter `xml:"parameter"`
}

func (e xEffect) ident() (name, id string) {
	return strings.ToLower(strings.TrimSpace(e.Name)), strings.ToLower(strings.TrimSpace(e.EffectID))
}

type xParameter struct {
	ID        string      `xml:"parameterid"`
	Name      string      `xml:"name"`
	Value     *xValue     `xml:"value"`
	Keyframes []xKeyframe `xml:"keyframe"`
}

type xKeyframe struct {
	Value *xValue `xml:"value"`
}

type xValue struct {
	Text  string `xml:",chardata"`
	Horiz string `xml:"horiz"`
	Vert  string `xml:"vert"`
}

// label is the lower-cased parameter name, falling back to parameterid.
func (p xParameter) label() string {
	if p.Name != "" {
		return strings.ToLower(strings.TrimSpace(p.Name))
	}
	return strings.ToLower(strings.TrimSpace(p.ID))
}

// value returns the static value, or the first keyframe when the parameter
// is animated.
func (p xParameter) value() *xValue {
	if p.Value != nil {
		return p.Value
	}
	for _, k := range p.Keyframes {
		if k.Value != nil {
			return k.Value
		}
	}
	return nil
}
