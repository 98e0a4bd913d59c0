package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/borncrazy123/CamLink/internal/device"
)

// registerDeviceRequest is the body of POST /devices.
type registerDeviceRequest struct {
	HardwareID      string `json:"hardware_id"`
	ClientID        string `json:"client_id"`
	Hotel           string `json:"hotel"`
	Location        string `json:"location"`
	WiFiName        string `json:"wifi_name"`
	FirmwareVersion string `json:"firmware_version"`
}

// handleListDevices returns registered devices from the store.
//
// Query parameters:
//   - limit: maximum rows (default 100, capped at 1000)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	devices, err := s.devices.Repository().List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing devices failed", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d := &device.Device{
		HardwareID:      req.HardwareID,
		ClientID:        req.ClientID,
		Hotel:           req.Hotel,
		Location:        req.Location,
		WiFiName:        req.WiFiName,
		FirmwareVersion: req.FirmwareVersion,
	}
	if err := s.devices.Register(r.Context(), d); err != nil {
		switch {
		case errors.Is(err, device.ErrInvalidDevice):
			writeBadRequest(w, err.Error())
		case errors.Is(err, device.ErrDeviceExists):
			writeConflict(w, err.Error())
		default:
			s.logger.Error("registering device failed", "hardware_id", req.HardwareID, "error", err)
			writeInternalError(w, "failed to register device")
		}
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// handleListStatus returns every cached device status.
func (s *Server) handleListStatus(w http.ResponseWriter, _ *http.Request) {
	statuses := s.status.List()
	writeJSON(w, http.StatusOK, map[string]any{"statuses": statuses, "count": len(statuses)})
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, ok := s.status.Get(id)
	if !ok {
		writeNotFound(w, "no status for device "+id)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// parseLimit reads ?limit=. It writes a 400 and returns false when the
// value is not a positive integer.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeBadRequest(w, "limit must be a positive integer")
		return 0, false
	}
	return n, true
}
