package router

import "github.com/borncrazy123/CamLink/internal/infrastructure/mqtt"

// MessageKind is the classified shape of an inbound message.
type MessageKind string

// Message kinds, in classification order.
const (
	KindUploadReport  MessageKind = "upload_report"
	KindVideoList     MessageKind = "video_list"
	KindUploadQuery   MessageKind = "upload_query"
	KindCommandResult MessageKind = "command_result"
	KindStatusReport  MessageKind = "status_report"
)

type classifier struct {
	kind  MessageKind
	match func(channel string, doc document) bool
}

// classifiers is evaluated top to bottom and the first match wins. Payload
// shapes overlap (a video listing also carries "result"), so the order is
// part of the protocol.
var classifiers = []classifier{
	{KindUploadReport, func(channel string, _ document) bool { return channel == mqtt.ChannelUploadStatus }},
	{KindVideoList, func(_ string, doc document) bool { return doc.has(keyVideos) }},
	{KindUploadQuery, func(_ string, doc document) bool { return doc.has(keyUploadQuery) }},
	{KindCommandResult, func(_ string, doc document) bool { return doc.has(keyResult) }},
	{KindStatusReport, func(string, document) bool { return true }},
}

// Classify returns the kind of a decoded message received on channel.
func classify(channel string, doc document) MessageKind {
	for _, c := range classifiers {
		if c.match(channel, doc) {
			return c.kind
		}
	}
	return KindStatusReport
}
