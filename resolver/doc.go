// Package resolver turns a template location into a local directory the
// engine can read pages from.
//
// Local directories are used in place. Remote locations (the stock
// template set, HTTP base URLs, GitHub and GitLab repositories, Kubernetes
// ConfigMaps) are downloaded with fetch.Download into a destination
// directory first.
package resolver
