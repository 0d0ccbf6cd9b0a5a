package ale

import "strings"

// Column aliases seen across Avid, Silverstack and Resolve logs.
var (
	ClipNameColumns = []string{"Name", "Clip Name", "ImageFileName", "Video Clip Name Of Source"}
	CircledColumns  = []string{"Circled", "Circled Take"}
)

func ClipName(r Record) string {
	return r.First(ClipNameColumns...)
}

// IsCircled accepts Y, Yes, Circled and True in any case.
func IsCircled(r Record) bool {
	switch strings.ToLower(strings.TrimSpace(r.First(CircledColumns...))) {
	case "y", "yes", "circled", "true":
		return true
	}
	return false
}

func SceneTake(r Record) (scene, take string) {
	return r.Get("Scene"), r.Get("Take")
}
