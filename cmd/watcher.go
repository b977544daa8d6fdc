package main

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"time"

	"imagehost/impl/catalog"
	"imagehost/impl/host"

	log "github.com/sirupsen/logrus"

	"github.com/fsnotify/fsnotify"
)

var (
	waitFor = 100 * time.Millisecond
	mu      sync.Mutex
	timers  = make(map[string]*time.Timer)
)

// watchCatalog creates a file system notifier on the catalog file's
// directory. When the file is rewritten, the catalog is reloaded into the
// host and an immediate refresh is triggered, so catalog edits take effect
// without waiting for the TTL or restarting the server.
//
// fsnotify can emanate many messages during creation of a single file. The
// approach implemented in the code to address that uses time-based event
// deduplication based on:
//
// https://github.com/fsnotify/fsnotify/blob/main/cmd/fsnotify/dedup.go
func watchCatalog(ctx context.Context, catalogFile string, h *host.Host) {
	log.Debug("initializing watcher for " + catalogFile)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Errorf("unable to create a catalog watcher: %s", err)
		return
	}
	defer watcher.Close()

	// watch the directory - editors typically replace the file, which would
	// drop a watch set on the file itself
	if err := watcher.Add(filepath.Dir(catalogFile)); err != nil {
		log.Errorf("unable to watch catalog directory: %s", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("catalog watcher error: %s", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(catalogFile) {
				continue
			}

			mu.Lock()
			t, exists := timers[event.Name]
			mu.Unlock()

			// No timer yet, so create one.
			if !exists {
				t = time.AfterFunc(math.MaxInt64, func() {
					reloadCatalog(catalogFile, h)
				})
				t.Stop()
				mu.Lock()
				timers[event.Name] = t
				mu.Unlock()
			}
			t.Reset(waitFor)
		}
	}
}

// reloadCatalog parses the catalog file, swaps it into the host and runs a
// refresh cycle. A file that fails to parse leaves the current catalog in
// place.
func reloadCatalog(catalogFile string, h *host.Host) {
	cat, err := catalog.Load(catalogFile)
	if err != nil {
		log.Errorf("not reloading the catalog: %s", err)
		return
	}
	log.Infof("catalog file changed - reloading and refreshing")
	h.ReloadCatalog(cat)
	h.FetchManifests()
}
