// Package service implements the business logic behind the enigma CLI and
// HTTP API.
//
// CipherService coordinates the rotor machine, the repository and the event
// bus. It builds machines from stored or ad hoc settings, advances persisted
// sessions one message at a time, and imports and exports key sheets.
//
// # Event System
//
// Every state change is published on EventBus so connected clients can follow
// along over Server-Sent Events. Event types cover saved and deleted settings,
// session activity, key sheet imports and configuration reloads.
//
// # Streams
//
// Process drives a machine from a keyboard to a lampboard. It is what
// `enigma cipher` runs on stdin.
package service
