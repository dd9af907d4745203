// Package server exposes chlorinator snapshots over HTTP and WebSocket.
//
// The server owns a gather loop: at a fixed interval it runs one data
// gathering cycle against the device, keeps the merged snapshot as the
// latest state, and pushes a JSON rendition to every connected WebSocket
// subscriber. Plain HTTP clients can poll the same JSON from /snapshot.
//
// The device session layer is injected as a GatherFunc, so the server works
// identically against real hardware and the emulator.
package server
