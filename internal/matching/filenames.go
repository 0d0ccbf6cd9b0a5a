package matching

import (
	"regexp"
	"strconv"
	"strings"
)

var numericCode = regexp.MustCompile(`^(\d+)_(\d+)$`)

// CodesInFilename returns the shot codes that appear in a delivered file's
// name, ignoring case. Numeric codes such as 004_0060 also match with their
// leading zeros dropped or added, so 4_60 and 0004_00060 both hit.
func CodesInFilename(filename string, codes []string) []string {
	lower := strings.ToLower(filename)
	var out []string
	for _, code := range codes {
		if codeInName(lower, strings.ToLower(code)) {
			out = append(out, code)
		}
	}
	return out
}

func codeInName(name, code string) bool {
	if code == "" {
		return false
	}
	if strings.Contains(name, code) {
		return true
	}
	if trimmed := strings.TrimLeft(code, "0"); trimmed != "" && strings.Contains(name, trimmed) {
		return true
	}

	m := numericCode.FindStringSubmatch(code)
	if m == nil {
		return false
	}
	scene, err1 := strconv.Atoi(m[1])
	seq, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return false
	}
	re, err := regexp.Compile(`0*` + strconv.Itoa(scene) + `_0*` + strconv.Itoa(seq))
	if err != nil {
		return false
	}
	return re.MatchString(name)
}
