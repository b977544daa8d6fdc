package mock

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

// sums is the checksum listing filename served under the URL prefix.
const sums = "SHA256SUMS"

// Params supports different configurations for the mock image server.
type Params struct {
	// MissingFromSums lists artifacts omitted from the checksum listing.
	MissingFromSums map[string]bool
	// FailFiles lists artifacts answered with HTTP 500.
	FailFiles map[string]bool
	// FailSums makes the checksum listing itself answer with HTTP 500.
	FailSums bool
	// NoLastModified suppresses the Last-Modified header on HEAD responses.
	NoLastModified bool
	// LastModified is the timestamp advertised for every artifact. Zero
	// means a fixed default.
	LastModified time.Time
}

// ServerInfo describes a running mock image server to its test.
type ServerInfo struct {
	// URLPrefix is the base under which the artifacts and the checksum
	// listing are served, with a trailing slash.
	URLPrefix string
	// Hashes maps each artifact filename to the hash published for it in
	// the checksum listing.
	Hashes map[string]string
	// Version is the Last-Modified timestamp in the 8-digit date form the
	// manifest builder produces.
	Version string
}

// ImageServer runs a mock image host publishing the passed artifact files.
func ImageServer(files []string) (*httptest.Server, ServerInfo) {
	return ImageServerWithParams(files, Params{})
}

// ImageServerWithParams is ImageServer with explicit Params.
func ImageServerWithParams(files []string, params Params) (*httptest.Server, ServerInfo) {
	modified := params.LastModified
	if modified.IsZero() {
		modified = time.Date(2024, 3, 9, 11, 30, 0, 0, time.UTC)
	}
	hashes := make(map[string]string)
	for _, file := range files {
		// content-address the filename - stable and unique per artifact
		hashes[file] = digest.FromString(file).Encoded()
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Base(r.URL.Path)
		if name == sums {
			if params.FailSums {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			var listing strings.Builder
			for _, file := range files {
				if params.MissingFromSums[file] {
					continue
				}
				fmt.Fprintf(&listing, "%s *%s\n", hashes[file], file)
			}
			w.Write([]byte(listing.String()))
			return
		}
		if _, exists := hashes[name]; !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if params.FailFiles[name] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !params.NoLastModified {
			w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
		}
		if r.Method == http.MethodHead {
			return
		}
		w.Write([]byte(name))
	}))
	info := ServerInfo{
		URLPrefix: server.URL + "/images/",
		Hashes:    hashes,
		Version:   modified.Format("20060102"),
	}
	return server, info
}
