// Package api provides the HTTP surface of CamLink.
//
// It is plumbing over the engine: POST /api/v1/devices/{id}/commands hands
// a command to the publisher and returns its request_id at once; results
// are read back later from the response, video, upload and task endpoints,
// or pushed live over /api/v1/ws. /metrics exposes the router counters and
// a collector over the status cache.
//
// When api.auth.jwt_secret is set every /api/v1 route except health and
// the stream requires a bearer token (see package auth). The stream takes
// the token as ?token=.
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
