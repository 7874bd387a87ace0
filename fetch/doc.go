// Package fetch downloads page templates from a Source into a local
// directory.
//
// Source abstracts where template bytes come from. Implementations exist
// for plain HTTP, GitHub, GitLab and Kubernetes ConfigMaps in
// sub-packages. SourceFunc lets plain functions satisfy the interface.
//
// Download fetches a set of files concurrently, each under its own fixed
// timeout, and leaves files whose content did not change untouched.
package fetch
