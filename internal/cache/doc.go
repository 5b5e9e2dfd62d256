// Package cache provides an in-memory memo for raw model responses.
//
// Entries are keyed by a SHA-256 hash of the backend, model, generation
// parameters and prompt text. The cache lives only for one run; repeated
// chunks within that run (identical headers across files, vendored copies)
// are sent to the model once.
package cache
