package sourcemedia

import (
	"sort"
	"sync"
)

// Store is an in-memory upsert set keyed by Record.Key. A later record with
// the same key replaces the earlier one in place, keeping insertion order.
type Store struct {
	mu      sync.RWMutex
	records []Record
	index   map[Key]int
}

func NewStore() *Store {
	return &Store{index: make(map[Key]int)}
}

// Upsert adds or replaces records and returns how many were new.
func (s *Store) Upsert(records ...Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, r := range records {
		k := r.Key()
		if i, ok := s.index[k]; ok {
			s.records[i] = r
			continue
		}
		s.index[k] = len(s.records)
		s.records = append(s.records, r)
		added++
	}
	return added
}

// List returns the records of one project, or all records when projectID is
// empty.
func (s *Store) List(projectID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if projectID == "" || r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Dedup collapses records sharing a key, last one wins, first position kept.
func Dedup(records []Record) []Record {
	s := NewStore()
	s.Upsert(records...)
	return s.List("")
}

type Summary struct {
	TotalClips          int      `json:"total_clips"`
	ShootDates          []string `json:"shoot_dates"`
	Cameras             []string `json:"cameras"`
	Scenes              []string `json:"scenes"`
	TotalDurationFrames int      `json:"total_duration_frames"`
	WithCDL             int      `json:"with_cdl"`
	Circled             int      `json:"circled"`
}

// Summarize collects distinct dates, cameras and scenes, each sorted.
// Cameras include both the camera model and the camera letter.
func Summarize(records []Record) Summary {
	dates := map[string]bool{}
	cameras := map[string]bool{}
	scenes := map[string]bool{}

	sum := Summary{TotalClips: len(records)}
	for _, r := range records {
		if r.ShootDate != "" {
			dates[r.ShootDate] = true
		}
		if r.Camera != "" {
			cameras[r.Camera] = true
		}
		if r.CameraID != "" {
			cameras[r.CameraID] = true
		}
		if r.Scene != "" {
			scenes[r.Scene] = true
		}
		if r.DurationFrames != nil {
			sum.TotalDurationFrames += *r.DurationFrames
		}
		if r.CDL != nil {
			sum.WithCDL++
		}
		if r.Circled {
			sum.Circled++
		}
	}
	sum.ShootDates = sortedKeys(dates)
	sum.Cameras = sortedKeys(cameras)
	sum.Scenes = sortedKeys(scenes)
	return sum
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
