package router

import "errors"

// Reasons a message is dropped. Handle logs each once and moves on.
var (
	// ErrMalformedTopic is returned for topics outside
	// {namespace}/{clientID}/{resp|state|upload_file_status}.
	ErrMalformedTopic = errors.New("router: malformed topic")

	// ErrUnresolvedDevice is returned when the topic's client ID belongs
	// to no registered device.
	ErrUnresolvedDevice = errors.New("router: unresolved device")

	// ErrMalformedMessage is returned for payloads that are not a JSON
	// object or lack a field their message kind requires.
	ErrMalformedMessage = errors.New("router: malformed message")

	// ErrPersistence wraps store failures. In-memory updates made before
	// the failure are kept.
	ErrPersistence = errors.New("router: persistence failed")
)
