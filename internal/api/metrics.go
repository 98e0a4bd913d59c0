package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/borncrazy123/CamLink/internal/device"
)

var (
	cameraOnlineDesc = prometheus.NewDesc(
		"camlink_camera_online", "Camera connection status (1 online, 0 otherwise).", []string{"device_id"}, nil,
	)
	cameraRecordingDesc = prometheus.NewDesc(
		"camlink_camera_recording", "Camera run state (1 recording, 0 otherwise).", []string{"device_id"}, nil,
	)
	cameraBatteryDesc = prometheus.NewDesc(
		"camlink_camera_battery_ratio", "Last reported battery level as a 0-1 fraction.", []string{"device_id"}, nil,
	)
	cameraStorageDesc = prometheus.NewDesc(
		"camlink_camera_storage_left", "Last reported remaining storage.", []string{"device_id"}, nil,
	)
	cameraSignalDesc = prometheus.NewDesc(
		"camlink_camera_signal_strength", "Last reported network signal strength.", []string{"device_id"}, nil,
	)
	cameraLastUpdateDesc = prometheus.NewDesc(
		"camlink_camera_last_update_timestamp_seconds", "Unix time of the last status update.", []string{"device_id"}, nil,
	)
	camerasDesc = prometheus.NewDesc(
		"camlink_cameras", "Cameras with a cached status, by connection status.", []string{"status"}, nil,
	)
	wsClientsDesc = prometheus.NewDesc(
		"camlink_websocket_clients", "Connected WebSocket clients.", nil, nil,
	)
)

// StatusCollector exposes the status cache as Prometheus gauges at scrape
// time.
type StatusCollector struct {
	status *device.StatusCache
	hub    *Hub
}

// NewStatusCollector creates a collector over status. hub may be nil.
func NewStatusCollector(status *device.StatusCache, hub *Hub) *StatusCollector {
	return &StatusCollector{status: status, hub: hub}
}

// Describe implements prometheus.Collector.
func (c *StatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cameraOnlineDesc
	ch <- cameraRecordingDesc
	ch <- cameraBatteryDesc
	ch <- cameraStorageDesc
	ch <- cameraSignalDesc
	ch <- cameraLastUpdateDesc
	ch <- camerasDesc
	ch <- wsClientsDesc
}

// Collect implements prometheus.Collector.
func (c *StatusCollector) Collect(ch chan<- prometheus.Metric) {
	counts := map[string]float64{}
	for _, s := range c.status.List() {
		id := s.DeviceID
		ch <- prometheus.MustNewConstMetric(cameraOnlineDesc, prometheus.GaugeValue, boolGauge(s.Status == device.StatusOnline), id)
		ch <- prometheus.MustNewConstMetric(cameraRecordingDesc, prometheus.GaugeValue, boolGauge(s.RunState == device.RunStateRecording), id)
		if s.Battery != nil {
			ch <- prometheus.MustNewConstMetric(cameraBatteryDesc, prometheus.GaugeValue, *s.Battery, id)
		}
		if s.LeftStorage != nil {
			ch <- prometheus.MustNewConstMetric(cameraStorageDesc, prometheus.GaugeValue, float64(*s.LeftStorage), id)
		}
		if s.Signal != nil {
			ch <- prometheus.MustNewConstMetric(cameraSignalDesc, prometheus.GaugeValue, float64(*s.Signal), id)
		}
		ch <- prometheus.MustNewConstMetric(cameraLastUpdateDesc, prometheus.GaugeValue, float64(s.LastUpdate.Unix()), id)

		st := s.Status
		if st == "" {
			st = "unknown"
		}
		counts[st]++
	}
	for st, n := range counts {
		ch <- prometheus.MustNewConstMetric(camerasDesc, prometheus.GaugeValue, n, st)
	}
	if c.hub != nil {
		ch <- prometheus.MustNewConstMetric(wsClientsDesc, prometheus.GaugeValue, float64(c.hub.ClientCount()))
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
