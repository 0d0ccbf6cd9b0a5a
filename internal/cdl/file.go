package cdl

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/diag"
)

type FileFormat string

const (
	FormatCDL     FileFormat = "cdl"
	FormatCC      FileFormat = "cc"
	FormatCCC     FileFormat = "ccc"
	FormatUnknown FileFormat = "unknown"
)

// Entry is one ColorCorrection element of a CDL file.
type Entry struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	Correction
}

// Identifier prefers the description, which Resolve and Silverstack fill
// with the clip name, over the id attribute.
func (e Entry) Identifier() string {
	if e.Description != "" {
		return e.Description
	}
	if e.ID != "" {
		return e.ID
	}
	return "Unknown"
}

// MatchesClip reports a case-insensitive containment in either direction.
func (e Entry) MatchesClip(clipName string) bool {
	id := strings.ToLower(e.Identifier())
	clip := strings.ToLower(strings.TrimSpace(clipName))
	if clip == "" {
		return false
	}
	return strings.Contains(id, clip) || strings.Contains(clip, id)
}

type FileResult struct {
	Format   FileFormat `json:"format"`
	Entries  []Entry    `json:"entries"`
	Warnings diag.List  `json:"warnings"`
}

// ByID indexes entries by id attribute, falling back to the identifier.
func (r *FileResult) ByID() map[string]Entry {
	out := make(map[string]Entry, len(r.Entries))
	for _, e := range r.Entries {
		key := e.ID
		if key == "" {
			key = e.Identifier()
		}
		out[key] = e
	}
	return out
}

// Find returns the first entry matching clipName.
func (r *FileResult) Find(clipName string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.MatchesClip(clipName) {
			return e, true
		}
	}
	return Entry{}, false
}

// nestedDescription keys a Description found below the ColorCorrection's
// direct children, such as one inside SOPNode.
const nestedDescription = "nested:Description"

type block struct {
	id          string
	description string
	text        map[string]string
	seen        map[string]bool
}

// ParseFile reads .cdl, .cc and .ccc documents. Namespace prefixes are
// ignored. Blocks without a complete slope/offset/power set are reported and
// skipped.
func ParseFile(content string) *FileResult {
	result := &FileResult{Format: FormatUnknown, Entries: []Entry{}}

	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = false

	var (
		current *block
		field   string
		blocks  int
		depth   int
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				result.Warnings.Addf(0, "", "malformed XML: %v", err)
			}
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if result.Format == FormatUnknown {
				result.Format = rootFormat(name)
			}
			if name == "ColorCorrection" {
				current = &block{text: map[string]string{}, seen: map[string]bool{}}
				depth = 0
				for _, a := range t.Attr {
					if a.Name.Local == "id" {
						current.id = strings.TrimSpace(a.Value)
					}
				}
				continue
			}
			if current != nil {
				depth++
				field = name
				if name == "Description" && depth > 1 {
					// Only the first nested description is kept, as a
					// fallback for blocks without their own.
					field = nestedDescription
					if current.seen[field] {
						field = ""
						continue
					}
				}
				current.seen[field] = true
			}
		case xml.CharData:
			if current != nil && field != "" {
				current.text[field] += string(t)
			}
		case xml.EndElement:
			if t.Name.Local == "ColorCorrection" && current != nil {
				blocks++
				if entry, ok := current.entry(blocks, &result.Warnings); ok {
					result.Entries = append(result.Entries, entry)
				}
				current = nil
			} else if current != nil && depth > 0 {
				depth--
			}
			field = ""
		}
	}

	switch {
	case result.Format == FormatUnknown:
		result.Warnings.Addf(0, "", "no ColorDecisionList, ColorCorrectionCollection or ColorCorrection element found")
	case blocks == 0:
		result.Warnings.Addf(0, "", "no ColorCorrection elements found")
	}
	return result
}

func rootFormat(name string) FileFormat {
	switch name {
	case "ColorDecisionList":
		return FormatCDL
	case "ColorCorrectionCollection":
		return FormatCCC
	case "ColorCorrection":
		return FormatCC
	}
	return FormatUnknown
}

func (b *block) entry(n int, warnings *diag.List) (Entry, bool) {
	desc := strings.TrimSpace(b.text["Description"])
	if desc == "" {
		desc = strings.TrimSpace(b.text[nestedDescription])
	}
	entry := Entry{ID: b.id, Description: desc}
	entry.Saturation = 1

	ok := true
	for _, f := range []struct {
		name string
		dst  *Triplet
	}{
		{"Slope", &entry.Slope},
		{"Offset", &entry.Offset},
		{"Power", &entry.Power},
	} {
		t, valid := parseTriplet(b.text[f.name])
		if !valid {
			warnings.Addf(0, "", "block %d: invalid or missing %s values", n, f.name)
			ok = false
			continue
		}
		*f.dst = t
	}

	if b.seen["Saturation"] {
		if v, valid := ParseSAT(b.text["Saturation"]); valid {
			entry.Saturation = v
		} else {
			warnings.Addf(0, "", "block %d: invalid Saturation value, using 1.0", n)
		}
	}
	return entry, ok
}

func parseTriplet(s string) (Triplet, bool) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return Triplet{}, false
	}
	var t Triplet
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Triplet{}, false
		}
		t[i] = v
	}
	return t, true
}
