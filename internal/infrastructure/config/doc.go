// Package config handles loading and validating CamLink configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Optional .env files for local development
//   - Overriding with CAMLINK_* environment variables
//   - Validation of required fields
//
// Broker credentials and the InfluxDB token should be supplied through the
// environment rather than committed config files.
//
// Usage:
//
//	cfg, err := config.Load("configs/camlink.yaml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.MQTT.Namespace)
package config
