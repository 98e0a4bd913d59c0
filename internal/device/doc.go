// Package device holds camera identity and status.
//
// Cameras have two identities: a stable hardware ID used by callers and
// storage, and a transport client ID used in MQTT topics. Registry maps
// between them; StatusCache keeps the latest status per hardware ID; the
// Repository persists both in the devices table.
//
// Status updates are partial. A StatusFields value only carries the fields
// a report or inference actually produced:
//
//	cache.Update("HW-001", device.StatusFields{
//	    RunState: device.Ptr(device.RunStateRecording),
//	    Status:   device.Ptr(device.StatusOnline),
//	})
package device
