// Package activity records the outcome of every document share.
//
// A Recorder receives one Event per Copy & Email or direct send. LogRecorder
// writes events to slog, OpenSearchRecorder indexes them into the
// "dealdocs-activity" index and Async batches writes in the background.
package activity
