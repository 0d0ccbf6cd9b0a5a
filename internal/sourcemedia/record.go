// Package sourcemedia builds the camera-original clip records that shots are
// linked back to, from ALE logs written by dailies and DIT tools.
package sourcemedia

import "github.com/heimdex/heimdex-turnover/internal/cdl"

// Record is one camera-original clip. The key (ProjectID, ClipName,
// TCInFrames) identifies a clip within a project.
type Record struct {
	ID        string `json:"id,omitempty"`
	ProjectID string `json:"project_id"`

	ClipName string `json:"clip_name"`
	Tape     string `json:"tape,omitempty"`
	UUID     string `json:"uuid,omitempty"`

	TCIn           string  `json:"tc_in,omitempty"`
	TCOut          string  `json:"tc_out,omitempty"`
	TCInFrames     *int    `json:"tc_in_frames,omitempty"`
	TCOutFrames    *int    `json:"tc_out_frames,omitempty"`
	FPS            float64 `json:"fps"`
	DurationFrames *int    `json:"duration_frames,omitempty"`

	FilePath   string `json:"file_path,omitempty"`
	FileType   string `json:"file_type,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Codec      string `json:"codec,omitempty"`

	Camera        string `json:"camera,omitempty"`
	CameraID      string `json:"camera_id,omitempty"`
	CameraRoll    string `json:"camera_roll,omitempty"`
	Lens          string `json:"lens,omitempty"`
	FocalLength   string `json:"focal_length,omitempty"`
	FocusDistance string `json:"focus_distance,omitempty"`
	FStop         string `json:"f_stop,omitempty"`
	TStop         string `json:"t_stop,omitempty"`
	ISO           string `json:"iso,omitempty"`
	Shutter       string `json:"shutter,omitempty"`
	SensorFPS     string `json:"sensor_fps,omitempty"`
	WhiteBalance  string `json:"white_balance,omitempty"`

	Scene    string `json:"scene,omitempty"`
	Take     string `json:"take,omitempty"`
	Circled  bool   `json:"circled"`
	DayNight string `json:"day_night,omitempty"`
	IntExt   string `json:"int_ext,omitempty"`
	Location string `json:"location,omitempty"`

	Director string `json:"director,omitempty"`
	DOP      string `json:"dop,omitempty"`

	SoundRoll string `json:"sound_roll,omitempty"`
	SoundTC   string `json:"sound_tc,omitempty"`

	Colorspace string          `json:"colorspace,omitempty"`
	Look       string          `json:"look,omitempty"`
	LUT        string          `json:"lut,omitempty"`
	CDL        *cdl.Correction `json:"cdl,omitempty"`

	ShootDate string `json:"shoot_date,omitempty"`
	ShootDay  string `json:"shoot_day,omitempty"`
	ALESource string `json:"ale_source,omitempty"`

	CustomMetadata map[string]string `json:"custom_metadata,omitempty"`
}

// Key is the dedup identity of a record.
type Key struct {
	ProjectID  string
	ClipName   string
	TCInFrames int
	HasTCIn    bool
}

func (r Record) Key() Key {
	k := Key{ProjectID: r.ProjectID, ClipName: r.ClipName}
	if r.TCInFrames != nil {
		k.TCInFrames, k.HasTCIn = *r.TCInFrames, true
	}
	return k
}
