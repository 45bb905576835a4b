// Package repository defines the data access interface for the enigma
// server.
//
// Three kinds of records are persisted:
//
// - Named settings, keyed by a unique name and carrying a content fingerprint
// - Sessions, a settings snapshot plus the current rotor positions
// - Messages, a journal of the text typed into a session and the output
//
// The machine engine itself holds no persisted state; a session is resumed by
// rebuilding the machine from its snapshot at the stored positions.
//
// # SQLite Implementation
//
// The sqlite subpackage implements Repository on modernc.org/sqlite (pure Go,
// no cgo). Recording a message and advancing the session positions happen in
// one transaction, so a journal entry never disagrees with the session state.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
