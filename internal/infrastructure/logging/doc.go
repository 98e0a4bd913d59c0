// Package logging provides structured logging for CamLink.
//
// The Logger type offers a small key/value API (Debug, Info, Warn, Error,
// With) on top of zerolog, so components can depend on a narrow interface
// while the process shares one configured sink.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("router subscribed", "topics", 3)
//	logger.Error("store update failed", "error", err)
//
// Never log broker passwords or the InfluxDB token.
package logging
