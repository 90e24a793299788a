// Package api exposes the assistant over HTTP. Answers stream to the
// client as Server-Sent Events so the word-by-word pacing of the terminal
// client carries over to web consumers. Gap analysis accepts multipart
// document uploads and rejects invalid files before a turn starts.
package api
