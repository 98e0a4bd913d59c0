// Package media caches what cameras report about their recordings: the
// result of each video listing and per-file upload progress.
//
// Both caches are fed by the router and read by the API. Reads return
// copies.
package media
