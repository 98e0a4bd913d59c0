// Package command issues camera commands and caches their results.
//
// Publisher.Issue validates a command, resolves the camera's client ID,
// publishes {"action": ..., "request_id": ...} on
// {namespace}/{clientID}/cmd and registers a calling task. The request id
// (correlation id) returned by Issue is how callers later find the
// camera's answer in the ResponseCache or the task tracker.
//
//	id, err := pub.Issue(ctx, "HW-001", command.KindStartRecord,
//	    command.Params{PreName: "702"}, "")
//
// When the broker session is down, Issue makes one bounded reconnect
// attempt. A Breaker stops those attempts for a cooldown period after
// repeated failures so callers fail fast with ErrCircuitOpen.
package command
