// Package influxdb records camera status history in InfluxDB.
//
// The client implements the router's status sink: every status the router
// applies and every command result it sees become points in the
// camera_status and camera_command measurements, tagged by device_id.
// The in-memory caches only hold the latest state; InfluxDB keeps the
// history for dashboards.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.SetOnError(func(err error) { log.Warn("influx write", "error", err) })
//
// Writes are non-blocking and batched by batch_size and flush_interval.
// Connection and health check errors are returned directly.
package influxdb
