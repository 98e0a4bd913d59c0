package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/borncrazy123/CamLink/internal/command"
	"github.com/borncrazy123/CamLink/internal/device"
	"github.com/borncrazy123/CamLink/internal/infrastructure/mqtt"
	"github.com/borncrazy123/CamLink/internal/task"
)

// commandRequest is the body of POST /devices/{id}/commands.
type commandRequest struct {
	Action    string         `json:"action"`
	Params    command.Params `json:"params"`
	RequestID string         `json:"request_id,omitempty"`
}

// commandResponse reports an accepted command. Results arrive later and
// are read from /responses/{request_id} or /tasks/{request_id}.
type commandResponse struct {
	Accepted  bool   `json:"accepted"`
	RequestID string `json:"request_id"`
	DeviceID  string `json:"device_id"`
	Action    string `json:"action"`
}

func (s *Server) handleIssueCommand(w http.ResponseWriter, r *http.Request) {
	if s.commands == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "command publishing is not configured")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	corr, err := s.commands.Issue(r.Context(), id, command.Kind(req.Action), req.Params, req.RequestID)
	if err != nil {
		status, code := commandErrorStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("issuing command failed", "device_id", id, "action", req.Action, "error", err)
		}
		writeJSON(w, status, Error{Status: status, Code: code, Message: err.Error(), RequestID: corr})
		return
	}

	writeJSON(w, http.StatusAccepted, commandResponse{
		Accepted:  true,
		RequestID: corr,
		DeviceID:  id,
		Action:    req.Action,
	})
}

// commandErrorStatus maps publisher errors to HTTP status and error code.
func commandErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, command.ErrUnsupportedCommand), errors.Is(err, command.ErrInvalidParams):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, device.ErrDeviceNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, task.ErrTaskExists):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, command.ErrCircuitOpen),
		errors.Is(err, mqtt.ErrNotConnected),
		errors.Is(err, mqtt.ErrConnectionFailed),
		errors.Is(err, mqtt.ErrPublishFailed):
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
