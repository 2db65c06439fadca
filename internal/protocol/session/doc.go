// Package session owns the per-exchange transport bounds shared by the
// name-server and file-server clients.
//
// Ownership boundary:
// - exchange timeout and agent identity
// - response decode limits
// - deadline binding and timeout classification
package session
