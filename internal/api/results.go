package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/borncrazy123/CamLink/internal/device"
	"github.com/borncrazy123/CamLink/internal/media"
	"github.com/borncrazy123/CamLink/internal/task"
)

func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	corr := chi.URLParam(r, "requestID")
	resp, ok := s.responses.Get(corr)
	if !ok {
		writeNotFound(w, "no response for request "+corr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteResponse evicts one cached result ahead of its TTL.
func (s *Server) handleDeleteResponse(w http.ResponseWriter, r *http.Request) {
	corr := chi.URLParam(r, "requestID")
	if !s.responses.Delete(corr) {
		writeNotFound(w, "no response for request "+corr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListDeviceResponses returns the device's cached results, newest first.
func (s *Server) handleListDeviceResponses(w http.ResponseWriter, r *http.Request) {
	responses := s.responses.ListByDevice(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]any{"responses": responses, "count": len(responses)})
}

func (s *Server) handleGetVideos(w http.ResponseWriter, r *http.Request) {
	corr := chi.URLParam(r, "requestID")
	list, ok := s.videos.Get(corr)
	if !ok {
		writeNotFound(w, "no video list for request "+corr)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetLatestVideos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	list, ok := s.videos.GetLatest(id)
	if !ok {
		writeNotFound(w, "no video list for device "+id)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetUploads returns the device's upload progress. A device with no
// reports yields an empty file map rather than 404.
func (s *Server) handleGetUploads(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.uploads.Snapshot(id)
	if !ok {
		p = media.UploadProgress{DeviceID: id, Files: map[string]float64{}}
	}
	writeJSON(w, http.StatusOK, p)
}

// handleGetFileUpload returns one file's upload fraction.
func (s *Server) handleGetFileUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	file := chi.URLParam(r, "file")
	progress, ok := s.uploads.GetFileProgress(id, file)
	if !ok {
		writeNotFound(w, "no upload progress for "+file)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"file_name": file,
		"progress":  progress,
	})
}

func (s *Server) handleClearCompletedUploads(w http.ResponseWriter, r *http.Request) {
	n := s.uploads.ClearCompleted(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]any{"cleared": n})
}

// handleListTasks returns tasks newest first.
//
// Query parameters:
//   - device_id: hardware ID (resolved to the client ID)
//   - client_id: transport ID
//   - state: calling, success or failed
//   - kind: command action
//   - limit: maximum rows (default 100, capped at 1000)
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	f := task.Filter{
		ClientID: q.Get("client_id"),
		State:    q.Get("state"),
		Kind:     q.Get("kind"),
		Limit:    limit,
	}
	if f.State != "" && !task.ValidState(f.State) {
		writeBadRequest(w, "unknown state "+f.State)
		return
	}
	if id := q.Get("device_id"); id != "" {
		clientID, err := s.devices.Repository().TransportID(r.Context(), id)
		if err != nil {
			if errors.Is(err, device.ErrDeviceNotFound) {
				writeNotFound(w, "unknown device "+id)
				return
			}
			writeInternalError(w, "failed to resolve device")
			return
		}
		f.ClientID = clientID
	}

	tasks, err := s.tasks.List(r.Context(), f)
	if err != nil {
		s.logger.Error("listing tasks failed", "error", err)
		writeInternalError(w, "failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks, "count": len(tasks)})
}

// defaultPendingAge is the older_than used when the query omits it.
const defaultPendingAge = time.Minute

// handlePendingTasks lists tasks still calling after older_than (a Go
// duration such as "90s"), newest first. Unlike /tasks?state=calling it
// leaves out commands that were only just sent.
func (s *Server) handlePendingTasks(w http.ResponseWriter, r *http.Request) {
	olderThan := defaultPendingAge
	if raw := r.URL.Query().Get("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			writeBadRequest(w, "older_than must be a non-negative duration")
			return
		}
		olderThan = d
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	tasks, err := s.tasks.Pending(r.Context(), olderThan, limit)
	if err != nil {
		s.logger.Error("listing pending tasks failed", "error", err)
		writeInternalError(w, "failed to list pending tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks":      tasks,
		"count":      len(tasks),
		"older_than": olderThan.String(),
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	corr := chi.URLParam(r, "requestID")
	t, err := s.tasks.Get(r.Context(), corr)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			writeNotFound(w, "no task for request "+corr)
			return
		}
		writeInternalError(w, "failed to load task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
