package host

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"imagehost/impl/download"
	"imagehost/impl/support"
	"imagehost/mock"
)

// countingDownloader counts manifest builds by observing checksum downloads.
type countingDownloader struct {
	inner download.Downloader
	sums  atomic.Int64
}

func (d *countingDownloader) LastModified(url string) (time.Time, error) {
	return d.inner.LastModified(url)
}

func (d *countingDownloader) Download(url string) (string, error) {
	d.sums.Add(1)
	return d.inner.Download(url)
}

// The refresher fetches immediately on start, before the first tick.
func TestRefresherImmediateFetch(t *testing.T) {
	server, info := mock.ImageServer(testFiles)
	defer server.Close()
	h := newTestHost(info.URLPrefix, support.NewStatic(NoRemote), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewRefresher(h, time.Hour).Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second * 5)
	for {
		if _, err := h.AllImagesFor(NoRemote, false); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.FailNow()
		}
		time.Sleep(time.Millisecond * 10)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second * 5):
		t.Fail()
	}
}

// A short TTL drives repeated fetches.
func TestRefresherPeriodic(t *testing.T) {
	server, info := mock.ImageServer(testFiles)
	defer server.Close()
	dl := &countingDownloader{inner: download.NewHTTPDownloader(time.Second * 5)}
	h := New(Opts{
		Arch:       "x86_64",
		Catalog:    testCatalog(info.URLPrefix),
		Downloader: dl,
		Support:    support.NewStatic(NoRemote),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewRefresher(h, time.Millisecond*50).Run(ctx)

	// one cycle downloads the listing once per catalog entry, so anything
	// beyond that count proves a second cycle ran
	deadline := time.Now().Add(time.Second * 5)
	for dl.sums.Load() <= int64(len(testFiles)) {
		if time.Now().After(deadline) {
			t.FailNow()
		}
		time.Sleep(time.Millisecond * 10)
	}
}
