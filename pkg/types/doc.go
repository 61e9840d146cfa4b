// Package types defines the entities exchanged with the bookstore API, the
// client-side query and cart state, configuration, the credential store
// interface, and the standard errors shared by the storefront packages.
package types
