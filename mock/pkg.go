// Package mock runs an HTTP image host serving the artifacts of a synthetic
// catalog the way cdimage does: a HEAD of an artifact answers with a
// Last-Modified header, and a GET of SHA256SUMS under the same prefix returns
// the checksum listing. Params support breaking individual artifacts to
// exercise failure paths.
package mock
