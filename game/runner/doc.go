// Package runner provides the server clock for realtime sessions.
//
// A Runner ticks every realtime round at a fixed interval (20 Hz by default)
// with the wall-clock time that actually passed, then hands the IDs of the
// rounds that changed to its publishers, typically the websocket hub.
package runner
