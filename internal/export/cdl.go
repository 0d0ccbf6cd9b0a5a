package export

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/shot"
)

const ascNamespace = "urn:ASC:CDL:v1.01"

type xmlCorrection struct {
	XMLName     xml.Name `xml:"ColorCorrection"`
	Xmlns       string   `xml:"xmlns,attr,omitempty"`
	ID          string   `xml:"id,attr,omitempty"`
	Description string   `xml:"Description,omitempty"`
	Slope       string   `xml:"SOPNode>Slope"`
	Offset      string   `xml:"SOPNode>Offset"`
	Power       string   `xml:"SOPNode>Power"`
	Saturation  string   `xml:"SatNode>Saturation"`
}

type xmlDecisionList struct {
	XMLName   xml.Name        `xml:"ColorDecisionList"`
	Xmlns     string          `xml:"xmlns,attr"`
	Decisions []xmlCorrection `xml:"ColorDecision>ColorCorrection"`
}

type xmlCollection struct {
	XMLName     xml.Name        `xml:"ColorCorrectionCollection"`
	Xmlns       string          `xml:"xmlns,attr"`
	Corrections []xmlCorrection `xml:"ColorCorrection"`
}

// EntriesFromShots collects the grades of shots that carry one, keyed by shot code.
func EntriesFromShots(shots []shot.Shot) []cdl.Entry {
	var entries []cdl.Entry
	for _, s := range shots {
		if s.CDL == nil {
			continue
		}
		entries = append(entries, cdl.Entry{ID: s.Code, Description: s.ClipName, Correction: *s.CDL})
	}
	return entries
}

// GenerateCDL writes a ColorDecisionList with one ColorDecision per entry.
func GenerateCDL(title string, entries []cdl.Entry) string {
	doc := xmlDecisionList{Xmlns: ascNamespace}
	for _, e := range entries {
		doc.Decisions = append(doc.Decisions, correction(e, ""))
	}
	header := xml.Header
	if title != "" {
		header += fmt.Sprintf("<!-- Project: %s -->\n", strings.ReplaceAll(title, "--", "- -"))
	}
	return marshalXML(header, doc)
}

// GenerateCC writes a single standalone ColorCorrection.
func GenerateCC(e cdl.Entry) string {
	return marshalXML(xml.Header, correction(e, ascNamespace))
}

func GenerateCCC(entries []cdl.Entry) string {
	doc := xmlCollection{Xmlns: ascNamespace}
	for _, e := range entries {
		doc.Corrections = append(doc.Corrections, correction(e, ""))
	}
	return marshalXML(xml.Header, doc)
}

func correction(e cdl.Entry, xmlns string) xmlCorrection {
	return xmlCorrection{
		Xmlns:       xmlns,
		ID:          e.ID,
		Description: e.Description,
		Slope:       triplet(e.Slope),
		Offset:      triplet(e.Offset),
		Power:       triplet(e.Power),
		Saturation:  fmt.Sprintf("%.6f", e.Saturation),
	}
}

func triplet(t cdl.Triplet) string {
	return fmt.Sprintf("%.6f %.6f %.6f", t[0], t[1], t[2])
}

func marshalXML(header string, v any) string {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return header + string(out) + "\n"
}
