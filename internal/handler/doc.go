// Package handler implements the HTTP layer of the enigma API.
//
// CipherHandler exposes stateless enciphering, the wheel catalog, stored
// settings, cipher sessions and key sheet import/export as JSON over a
// net/http ServeMux. Register adds its routes to a mux.
//
// Errors are returned as {error, details} with a status derived from the
// service error: 404 for missing settings or sessions, 400 for invalid
// machines, unknown symbols and malformed bodies, 500 otherwise.
//
// Middleware (Chain, Recover, CORS, Logger, Instrument) wraps the mux.
package handler
