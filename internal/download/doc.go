// Package download owns one fileget invocation.
//
// Ownership boundary:
// - session state: name server, hostname, resource path, resolved address
// - single-resource and wildcard orchestration
// - per-file destination paths
//
// Lifecycle order:
// - resolve (exactly once) -> fetch index (wildcard only) -> fetch -> write
//
// - fetches run one at a time in index order.
//
// - a server-reported failure for one wildcard entry is recorded and skipped;
// every other error ends the run.
package download
