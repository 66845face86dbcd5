// Package ingest receives sensor frames over TCP as newline-delimited JSON
// envelopes and routes them to the goal server by topic.
package ingest
