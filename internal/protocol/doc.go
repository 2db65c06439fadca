// Package protocol owns wire contract and parsing primitives.
//
// Ownership boundary:
// - whereis: name-server datagram query and reply grammar
// - fsp: FSP/1.0 request line, response header, and length-framed body
// - session: per-exchange timeout, agent, and limits
package protocol
