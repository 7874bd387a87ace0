// Package github implements a fetch.Source that reads templates from a
// GitHub repository (cloud or enterprise) through the contents API.
// Configure with a Config containing the repository owner and name, and
// optionally a directory, a ref and an access token. Set EnterpriseHost
// for GitHub Enterprise installations.
package github
