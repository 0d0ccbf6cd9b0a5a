package matching

import (
	"path"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
)

type Strategy string

const (
	StrategyExact     Strategy = "exact"
	StrategyBaseName  Strategy = "basename"
	StrategySubstring Strategy = "substring"
	StrategyTimecode  Strategy = "timecode"
)

// ClipRef is what a timeline knows about the media behind a clip.
type ClipRef struct {
	Name           string `json:"name"`
	SourceFileName string `json:"source_file_name,omitempty"`
	SourceFrame    *int   `json:"source_frame,omitempty"`
}

// LookupName prefers the source file name over the display name.
func (c ClipRef) LookupName() string {
	if c.SourceFileName != "" {
		return c.SourceFileName
	}
	return c.Name
}

func RefOf(s shot.Shot) ClipRef {
	return ClipRef{Name: s.ClipName, SourceFileName: s.SourceFileName, SourceFrame: s.SourceFrame}
}

type Match struct {
	Record   sourcemedia.Record `json:"record"`
	Strategy Strategy           `json:"strategy"`
}

// MatchClip finds the source media behind a clip. Strategies run in order and
// the first hit wins: exact name, name without extension, containment either
// way, then the clip's source frame inside a record's timecode span.
func MatchClip(ref ClipRef, media []sourcemedia.Record) (Match, bool) {
	name := ref.LookupName()

	if name != "" {
		for _, r := range media {
			if r.ClipName == name {
				return Match{Record: r, Strategy: StrategyExact}, true
			}
		}

		base := stripExt(name)
		for _, r := range media {
			if stripExt(r.ClipName) == base {
				return Match{Record: r, Strategy: StrategyBaseName}, true
			}
		}

		if base != "" {
			for _, r := range media {
				other := stripExt(r.ClipName)
				if other == "" {
					continue
				}
				if strings.Contains(r.ClipName, base) || strings.Contains(base, other) {
					return Match{Record: r, Strategy: StrategySubstring}, true
				}
			}
		}
	}

	if ref.SourceFrame != nil {
		frame := *ref.SourceFrame
		for _, r := range media {
			if r.TCInFrames == nil || r.TCOutFrames == nil {
				continue
			}
			if frame >= *r.TCInFrames && frame <= *r.TCOutFrames {
				return Match{Record: r, Strategy: StrategyTimecode}, true
			}
		}
	}
	return Match{}, false
}

// MatchClips runs MatchClip for each ref, keyed by display name. Unmatched
// clips map to nil.
func MatchClips(refs []ClipRef, media []sourcemedia.Record) map[string]*Match {
	out := make(map[string]*Match, len(refs))
	for _, ref := range refs {
		if m, ok := MatchClip(ref, media); ok {
			out[ref.Name] = &m
		} else {
			out[ref.Name] = nil
		}
	}
	return out
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
