// Package mqtt provides the broker transport for CamLink.
//
// CamLink talks to cameras only through MQTT. Each role (command publisher,
// response router) holds its own session so a stalled subscriber cannot
// hold up outbound commands:
//
//	CamLink publisher → camera/{transportId}/cmd → camera
//	camera → camera/{transportId}/{resp|state|upload_file_status} → CamLink router
//
// # Reconnection
//
// ConnectWithRetry retries forever at a fixed interval plus random jitter.
// After the first success paho auto-reconnects at the same interval and
// restores subscriptions. EnsureConnected gives a publisher one bounded
// synchronous attempt when it finds the session down.
//
// # Usage
//
//	c := mqtt.New(cfg.MQTT, mqtt.RoleRouter)
//	c.SetLogger(logger)
//	if err := c.ConnectWithRetry(ctx); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	topics := mqtt.Topics{Namespace: cfg.MQTT.Namespace}
//	err := c.Subscribe(topics.AllResponses(), 1, handler)
package mqtt
