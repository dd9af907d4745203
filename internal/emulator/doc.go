// Package emulator provides in-memory chlorinators for demos and tests.
//
// Both device types implement the transport interfaces from pkg/ble, so a
// Session drives them exactly like real hardware: the same handshake, the
// same encryption, the same packet layouts. Actions written to an emulated
// device mutate its state, so a follow-up data gather reflects them.
//
// The emulators are not firmware models. Timers don't fire, chemistry
// doesn't drift and the cell never wears out; they hold a plausible pool
// steady and apply the actions they are sent.
package emulator
