// Package download provides the downloader capability used by the manifest
// builder to probe artifact timestamps and retrieve checksum listings from
// the image host.
package download

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// Downloader retrieves content and metadata from an image host. Both
// operations fail with a *download.Error on network or HTTP errors.
// Implementations must be safe for use from multiple goroutines.
type Downloader interface {
	// LastModified returns the last-modified timestamp of the resource at
	// 'url'. A host that does not advertise a timestamp yields the zero
	// time - that is the sentinel, not an error.
	LastModified(url string) (time.Time, error)
	// Download retrieves the resource at 'url' as text.
	Download(url string) (string, error)
}

// Error is the download failure condition: a network or HTTP error talking
// to the image host.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to download from %q: %s", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPDownloader implements Downloader over plain HTTP(S).
type HTTPDownloader struct {
	client *resty.Client
}

// NewHTTPDownloader creates an HTTPDownloader whose requests time out after
// the passed duration. A zero timeout means no timeout.
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	return &HTTPDownloader{
		client: resty.New().SetTimeout(timeout),
	}
}

// LastModified issues a HEAD request for 'url' and parses the Last-Modified
// response header. A missing or unparseable header yields the zero time.
func (d *HTTPDownloader) LastModified(url string) (time.Time, error) {
	resp, err := d.client.R().Head(url)
	if err != nil {
		return time.Time{}, &Error{URL: url, Err: err}
	}
	if resp.IsError() {
		return time.Time{}, &Error{URL: url, Err: fmt.Errorf("server returned %s", resp.Status())}
	}
	header := resp.Header().Get("Last-Modified")
	if header == "" {
		return time.Time{}, nil
	}
	modified, err := http.ParseTime(header)
	if err != nil {
		log.Warnf("unparseable Last-Modified header %q from %s", header, url)
		return time.Time{}, nil
	}
	return modified, nil
}

// Download issues a GET request for 'url' and returns the body as text.
func (d *HTTPDownloader) Download(url string) (string, error) {
	resp, err := d.client.R().Get(url)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	if resp.IsError() {
		return "", &Error{URL: url, Err: fmt.Errorf("server returned %s", resp.Status())}
	}
	return resp.String(), nil
}
