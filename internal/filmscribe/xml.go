package filmscribe

import "strings"

type fsHead struct {
	Title          string  `xml:"Title"`
	Tracks         string  `xml:"Tracks"`
	EventCount     string  `xml:"EventCount"`
	EditRate       string  `xml:"EditRate"`
	MasterDuration fsPoint `xml:"MasterDuration"`
}

type fsTimecode struct {
	Type  string `xml:"Type,attr"`
	Value string `xml:",chardata"`
}

// fsPoint is any element carrying typed Timecode children and a Frame.
type fsPoint struct {
	Timecodes []fsTimecode `xml:"Timecode"`
	Frame     string       `xml:"Frame"`
}

func (p fsPoint) timecode(typ string) string {
	for _, tc := range p.Timecodes {
		if tc.Type == typ {
			return strings.TrimSpace(tc.Value)
		}
	}
	return ""
}

type fsCustom struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
}

type fsSource struct {
	ClipName  string       `xml:"ClipName"`
	TapeName  string       `xml:"TapeName"`
	Customs   []fsCustom   `xml:"Custom"`
	Timecodes []fsTimecode `xml:"Timecode"`
	Start     fsPoint      `xml:"Start"`
	End       fsPoint      `xml:"End"`
}

func (s fsSource) custom(name string) string {
	for _, c := range s.Customs {
		if c.Name == name {
			return strings.TrimSpace(c.Value)
		}
	}
	return ""
}

type fsMaster struct {
	fsPoint
	Start fsPoint `xml:"Start"`
	End   fsPoint `xml:"End"`
}

type fsEvent struct {
	Num      string      `xml:"Num,attr"`
	Type     string      `xml:"Type,attr"`
	Length   string      `xml:"Length,attr"`
	Master   fsMaster    `xml:"Master"`
	Sources  []fsSource  `xml:"Source"`
	Comments []fsComment `xml:"Comment"`
}

type fsComment struct {
	Type     string   `xml:"Type,attr"`
	Master   fsMaster `xml:"Master"`
	Text     string   `xml:"Text"`
	ClipName string   `xml:"ClipName"`
	Color    string   `xml:"Color"`
	Source   fsSource `xml:"Source"`
}
