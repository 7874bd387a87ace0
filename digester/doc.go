// Package digester computes SHA-256 digests of files and byte slices so
// downloads can skip rewriting templates that did not change.
package digester
