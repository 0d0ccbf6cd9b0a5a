// Package cdl decodes ASC Color Decision List values, both the inline
// ASC_SOP/ASC_SAT tokens found in ALE columns and XML .cdl/.cc/.ccc files.
package cdl

import (
	"regexp"
	"strconv"
	"strings"
)

type Triplet [3]float64

// Correction is one slope/offset/power grade with saturation.
type Correction struct {
	Slope      Triplet `json:"slope"`
	Offset     Triplet `json:"offset"`
	Power      Triplet `json:"power"`
	Saturation float64 `json:"saturation"`
}

func Identity() Correction {
	return Correction{
		Slope:      Triplet{1, 1, 1},
		Offset:     Triplet{0, 0, 0},
		Power:      Triplet{1, 1, 1},
		Saturation: 1,
	}
}

// IsIdentity reports whether applying the grade leaves the image unchanged.
func (c Correction) IsIdentity() bool {
	return c == Identity()
}

const number = `([\d.+-]+)`

var sopPattern = regexp.MustCompile(
	`\(\s*` + number + `\s+` + number + `\s+` + number + `\s*\)\s*` +
		`\(\s*` + number + `\s+` + number + `\s+` + number + `\s*\)\s*` +
		`\(\s*` + number + `\s+` + number + `\s+` + number + `\s*\)`)

// ParseSOP reads "(sR sG sB)(oR oG oB)(pR pG pB)". Saturation on the
// returned value is 1.
func ParseSOP(s string) (Correction, bool) {
	m := sopPattern.FindStringSubmatch(s)
	if m == nil {
		return Correction{}, false
	}

	var vals [9]float64
	for i := range vals {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return Correction{}, false
		}
		vals[i] = v
	}
	return Correction{
		Slope:      Triplet{vals[0], vals[1], vals[2]},
		Offset:     Triplet{vals[3], vals[4], vals[5]},
		Power:      Triplet{vals[6], vals[7], vals[8]},
		Saturation: 1,
	}, true
}

func ParseSAT(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatSOP is the inverse of ParseSOP. Values are written with the fewest
// digits that read back to the same float.
func FormatSOP(c Correction) string {
	return "(" + formatTriplet(c.Slope) + ")(" + formatTriplet(c.Offset) + ")(" + formatTriplet(c.Power) + ")"
}

func FormatSAT(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTriplet(t Triplet) string {
	return strconv.FormatFloat(t[0], 'f', -1, 64) + " " +
		strconv.FormatFloat(t[1], 'f', -1, 64) + " " +
		strconv.FormatFloat(t[2], 'f', -1, 64)
}

// FromColumns combines ASC_SOP and ASC_SAT text. A saturation-only grade is
// an identity SOP with that saturation. ok is false when neither parses.
func FromColumns(sop, sat string) (Correction, bool) {
	c, hasSOP := ParseSOP(sop)
	s, hasSAT := ParseSAT(sat)
	switch {
	case hasSOP && hasSAT:
		c.Saturation = s
		return c, true
	case hasSOP:
		return c, true
	case hasSAT:
		c = Identity()
		c.Saturation = s
		return c, true
	}
	return Correction{}, false
}
