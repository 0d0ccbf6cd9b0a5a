package sourcemedia

import "github.com/heimdex/heimdex-turnover/internal/ale"

// synonym maps one record field to the ALE columns that may carry it,
// checked in order. Adding a vendor alias is a one-line change here.
type synonym struct {
	field   string
	columns []string
	target  func(r *Record) *string
}

var synonyms = []synonym{
	{"tape", []string{"Tape", "Reel", "Reel_name"}, func(r *Record) *string { return &r.Tape }},
	{"uuid", []string{"UUID", "Clip UID", "UMI", "Uuid"}, func(r *Record) *string { return &r.UUID }},
	{"tc_in", []string{"Start", "Start TC", "SRC Start TC"}, func(r *Record) *string { return &r.TCIn }},
	{"tc_out", []string{"End", "End TC", "SRC End TC"}, func(r *Record) *string { return &r.TCOut }},
	{"file_path", []string{"Filepath", "Source File Path", "Source File"}, func(r *Record) *string { return &r.FilePath }},
	{"file_type", []string{"File Type", "Filetype"}, func(r *Record) *string { return &r.FileType }},
	{"codec", []string{"Video Codec", "Codec", "Original_video"}, func(r *Record) *string { return &r.Codec }},
	{"camera", []string{"Camera", "Camera Type", "Camera Model", "Camera_model", "Manufacturer"}, func(r *Record) *string { return &r.Camera }},
	{"camera_id", []string{"Camera ID", "Camera Label", "Cam", "Camera_index"}, func(r *Record) *string { return &r.CameraID }},
	{"camera_roll", []string{"Camera Roll", "Roll", "Reel", "Reel_name"}, func(r *Record) *string { return &r.CameraRoll }},
	{"lens", []string{"Lens", "Lens Type", "Lens_type"}, func(r *Record) *string { return &r.Lens }},
	{"focal_length", []string{"Focal Length", "Focal Length (mm)"}, func(r *Record) *string { return &r.FocalLength }},
	{"focus_distance", []string{"Focus Distance", "Focus Dist"}, func(r *Record) *string { return &r.FocusDistance }},
	{"f_stop", []string{"F-Stop", "Aperture"}, func(r *Record) *string { return &r.FStop }},
	{"t_stop", []string{"T-Stop"}, func(r *Record) *string { return &r.TStop }},
	{"iso", []string{"ISO", "EI", "ASA", "Exposure_index"}, func(r *Record) *string { return &r.ISO }},
	{"shutter", []string{"Shutter", "Shutter Angle", "Shutter Speed", "Shutter_angle"}, func(r *Record) *string { return &r.Shutter }},
	{"sensor_fps", []string{"Sensor FPS", "Project FPS", "Capture FPS", "Sensor_fps"}, func(r *Record) *string { return &r.SensorFPS }},
	{"white_balance", []string{"White Balance", "WB", "Color Temp", "White_balance"}, func(r *Record) *string { return &r.WhiteBalance }},
	{"scene", []string{"Scene", "Slate"}, func(r *Record) *string { return &r.Scene }},
	{"take", []string{"Take", "Tk"}, func(r *Record) *string { return &r.Take }},
	{"day_night", []string{"Day/Night", "D/N"}, func(r *Record) *string { return &r.DayNight }},
	{"int_ext", []string{"Int/Ext", "I/E"}, func(r *Record) *string { return &r.IntExt }},
	{"location", []string{"Location", "Set"}, func(r *Record) *string { return &r.Location }},
	{"director", []string{"Director"}, func(r *Record) *string { return &r.Director }},
	{"dop", []string{"DP", "DOP", "Cinematographer"}, func(r *Record) *string { return &r.DOP }},
	{"sound_roll", []string{"Sound Roll", "Audio Roll"}, func(r *Record) *string { return &r.SoundRoll }},
	{"sound_tc", []string{"Sound TC", "Audio TC"}, func(r *Record) *string { return &r.SoundTC }},
	{"colorspace", []string{"Colorspace", "Color Space", "Gamma"}, func(r *Record) *string { return &r.Colorspace }},
	{"look", []string{"Look", "LUT", "Look Info", "Look_name"}, func(r *Record) *string { return &r.Look }},
	{"lut", []string{"LUT Name", "Applied LUT", "Lut_file_name"}, func(r *Record) *string { return &r.LUT }},
	{"shoot_date", []string{"Shoot Date", "Date"}, func(r *Record) *string { return &r.ShootDate }},
	{"shoot_day", []string{"Shoot Day", "Day"}, func(r *Record) *string { return &r.ShootDay }},
}

// Columns read by the importer outside the synonym table.
var (
	sopColumns      = []string{"ASC_SOP", "ASC SOP"}
	satColumns      = []string{"ASC_SAT", "ASC SAT"}
	widthColumns    = []string{"Resolution Width", "Image Width", "Width", "Frame_width"}
	heightColumns   = []string{"Resolution Height", "Image Height", "Height", "Frame_height"}
	formatColumns   = []string{"Original_video", "Resolution", "Format"}
	durationColumns = []string{"Duration"}
	lensTypeColumn  = "Lens_type"
	arriDateColumn  = "Date_camera"
)

// Camera report columns that are understood but not mapped to a field; they
// stay out of CustomMetadata.
var recognizedOnly = []string{
	"Camera_sn", "Lens_sn", "Focus_distance_unit", "Operator", "Production", "Company", "Project_fps",
	"Look_burned_in", "Look_intensity", "Look_user_lut", "Time_camera",
	"Nd_filterdensity", "Texture", "Cc_shift", "Enhanced_sensitivity_mode", "Sup_version",
	"Image_orientation", "Image_sharpness", "Image_detail", "Image_denoising",
	"Storage_sn", "User_info1", "User_info2", "FPS", "Tracks", "Clip", "Audio_format", "Audio_sr", "Audio_bit",
}

var knownColumns = func() map[string]bool {
	known := make(map[string]bool)
	add := func(cols ...string) {
		for _, c := range cols {
			known[c] = true
		}
	}
	for _, s := range synonyms {
		add(s.columns...)
	}
	add(ale.ClipNameColumns...)
	add(ale.CircledColumns...)
	add(sopColumns...)
	add(satColumns...)
	add(widthColumns...)
	add(heightColumns...)
	add(formatColumns...)
	add(durationColumns...)
	add(lensTypeColumn, arriDateColumn)
	add(recognizedOnly...)
	return known
}()
