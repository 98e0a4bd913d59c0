package command

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Params carries the action-specific fields of a command. Only the fields
// relevant to the kind are sent.
type Params struct {
	// PreName labels a recording (start_record); it becomes part of the
	// file name on the camera.
	PreName string `json:"pre_name,omitempty"`

	// list_videos filters. MinSize defaults to 0.
	MinSize   int64  `json:"min_size,omitempty"`
	MaxSize   *int64 `json:"max_size,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	// FileNames selects files for upload_file and get_upload_status.
	FileNames []string `json:"file_name_list,omitempty"`
}

// Validate checks that k's required parameters are present.
func (p Params) Validate(k Kind) error {
	switch k {
	case KindStartRecord:
		if strings.TrimSpace(p.PreName) == "" {
			return fmt.Errorf("%w: start_record requires pre_name", ErrInvalidParams)
		}
	case KindUploadFile:
		if len(p.FileNames) == 0 {
			return fmt.Errorf("%w: upload_file requires at least one file name", ErrInvalidParams)
		}
	case KindListVideos:
		if p.MinSize < 0 || (p.MaxSize != nil && *p.MaxSize < p.MinSize) {
			return fmt.Errorf("%w: list_videos size range", ErrInvalidParams)
		}
	}
	return nil
}

type listVideosParams struct {
	MinSize   int64  `json:"min_size"`
	MaxSize   *int64 `json:"max_size,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

type fileListParams struct {
	FileNames []string `json:"file_name_list,omitempty"`
}

// wireCommand is the JSON published on {namespace}/{transportId}/cmd.
type wireCommand struct {
	Action    Kind   `json:"action"`
	RequestID string `json:"request_id"`
	PreName   string `json:"pre_name,omitempty"`
	Params    any    `json:"params,omitempty"`
}

// encode builds the wire payload for k.
func encode(k Kind, correlationID string, p Params) ([]byte, error) {
	msg := wireCommand{Action: k, RequestID: correlationID}
	switch k {
	case KindStartRecord:
		msg.PreName = p.PreName
	case KindListVideos:
		msg.Params = listVideosParams{
			MinSize:   p.MinSize,
			MaxSize:   p.MaxSize,
			StartTime: p.StartTime,
			EndTime:   p.EndTime,
		}
	case KindUploadFile, KindGetUploadStatus:
		// get_upload_status always sends params, empty when no files are named.
		msg.Params = fileListParams{FileNames: p.FileNames}
	}
	return json.Marshal(msg)
}
