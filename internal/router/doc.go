// Package router is the inbound half of CamLink: the single consumer of
// camera messages.
//
// The router subscribes to the response, state and upload status channels
// of every camera ("{ns}/+/resp", "{ns}/+/state", "{ns}/+/upload_file_status").
// For each message it:
//
//  1. parses the topic and resolves the client ID to the hardware ID,
//  2. decodes the JSON object,
//  3. classifies it by shape,
//  4. dispatches it to the caches, the task tracker and the devices table.
//
// Classification is ordered; the first match wins:
//
//	upload_file_status channel       -> upload report
//	has "videos"                     -> video list
//	has "file_list_upload_progress"  -> upload query result
//	has "result"                     -> command result
//	anything else                    -> status report
//
// A successful start_record or stop_record result implies run_state
// recording or stopped and status online. Status fields carried in the
// result itself override the implied ones.
//
// Messages from unknown devices, with malformed topics or with payloads
// that are not JSON objects are dropped before any cache is touched. Store
// failures never roll back the in-memory update; Handle logs and counts
// them.
package router
