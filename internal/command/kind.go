package command

import "fmt"

// Kind is a camera command action.
type Kind string

// Known command kinds.
const (
	KindGetStatus       Kind = "get_status"
	KindStartRecord     Kind = "start_record"
	KindStopRecord      Kind = "stop_record"
	KindListVideos      Kind = "list_videos"
	KindUploadFile      Kind = "upload_file"
	KindGetUploadStatus Kind = "get_upload_status"
)

// Kinds lists every supported kind.
var Kinds = []Kind{
	KindGetStatus,
	KindStartRecord,
	KindStopRecord,
	KindListVideos,
	KindUploadFile,
	KindGetUploadStatus,
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// runStateByKind lists the commands whose successful result implies a run
// state. Consulted only when the result carries no run_state of its own.
var runStateByKind = map[Kind]string{
	KindStartRecord: "recording",
	KindStopRecord:  "stopped",
}

// ImpliedRunState returns the run state a successful k leaves the camera in.
func ImpliedRunState(k Kind) (string, bool) {
	s, ok := runStateByKind[k]
	return s, ok
}

// describe returns the task description recorded when k is issued.
func describe(k Kind, p Params) string {
	switch k {
	case KindGetStatus:
		return "status query sent"
	case KindStartRecord:
		return fmt.Sprintf("start recording sent (scene: %s)", p.PreName)
	case KindStopRecord:
		return "stop recording sent"
	case KindListVideos:
		return "video list query sent"
	case KindUploadFile:
		return fmt.Sprintf("file upload sent (%d files)", len(p.FileNames))
	case KindGetUploadStatus:
		return "upload progress query sent"
	default:
		return string(k) + " sent"
	}
}
