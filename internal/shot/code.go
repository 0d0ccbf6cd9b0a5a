package shot

import (
	"fmt"
	"strings"
)

// CodeInput carries the identifiers an event offers for naming its shot.
// Index is 0-based within the timeline; Total is the number of shots built
// from that timeline.
type CodeInput struct {
	ClipName string
	Title    string
	Reel     string
	Index    int
	Total    int
}

// Code derives a shot code. The first non-empty rule wins:
//  1. the clip-name annotation,
//  2. the timeline title, suffixed with a 3-digit 1-based index when the
//     timeline has more than one shot,
//  3. the reel or tape name,
//  4. SHOT_NNN.
func Code(in CodeInput) string {
	if name := strings.TrimSpace(in.ClipName); name != "" {
		return name
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		if in.Total > 1 {
			return fmt.Sprintf("%s_%03d", title, in.Index+1)
		}
		return title
	}
	if reel := strings.TrimSpace(in.Reel); reel != "" {
		return reel
	}
	return fmt.Sprintf("SHOT_%03d", in.Index+1)
}
