// Package host implements the image host core: a mutex-guarded cache of
// per-remote manifests, the query layer resolving releases and aliases
// against it, and the refresh cycle that rebuilds manifests from the static
// catalog.
package host

import (
	"fmt"

	"sync"

	"imagehost/impl/catalog"
	"imagehost/impl/download"
	"imagehost/impl/manifest"
	"imagehost/impl/metrics"
	"imagehost/impl/support"

	log "github.com/sirupsen/logrus"
)

// NoRemote is the name of the single synthetic remote this host serves.
const NoRemote = ""

// Query identifies an image by release name or alias within a remote.
type Query struct {
	Release string
	Remote  string
}

// RemoteImage pairs a remote name with one of its image records.
type RemoteImage struct {
	Remote string             `json:"remote"`
	Info   manifest.ImageInfo `json:"info"`
}

// RemoteUnknownError means the cache holds no manifest for a remote - either
// it was queried before the first successful refresh or the last refresh
// failed and there was nothing to keep. Distinct from the support layer's
// "unsupported": unsupported is a policy answer, unknown means no data.
type RemoteUnknownError struct {
	Remote string
}

func (e *RemoteUnknownError) Error() string {
	return fmt.Sprintf("remote %q is unknown or unreachable", e.Remote)
}

// Opts carries the capability set injected into a Host.
type Opts struct {
	// Arch selects the catalog slice this host serves.
	Arch string
	// Catalog is the static artifact table.
	Catalog catalog.Catalog
	// Downloader fetches artifact metadata. Must be safe for concurrent use.
	Downloader download.Downloader
	// Support answers remote/alias support questions.
	Support support.Support
	// OnUpdateFailure is invoked (not raised) when a refresh fails. May be
	// nil, in which case failures are logged.
	OnUpdateFailure func(msg string)
}

// Host serves image metadata for the synthetic remote. All methods are safe
// for concurrent use; the manifests map is the only mutable shared state and
// every access goes through the single mutex.
type Host struct {
	arch            string
	downloader      download.Downloader
	support         support.Support
	onUpdateFailure func(string)
	remotes         []string

	mu        sync.Mutex
	catalog   catalog.Catalog
	manifests map[string]*manifest.Manifest
}

// New creates a Host from the passed capability set.
func New(opts Opts) *Host {
	return &Host{
		arch:            opts.Arch,
		downloader:      opts.Downloader,
		support:         opts.Support,
		onUpdateFailure: opts.OnUpdateFailure,
		remotes:         []string{NoRemote},
		catalog:         opts.Catalog,
		manifests:       make(map[string]*manifest.Manifest),
	}
}

// SupportedRemotes returns the remote names this host recognizes.
func (h *Host) SupportedRemotes() []string {
	return append([]string(nil), h.remotes...)
}

// InfoFor resolves a query to an image record. The support check runs first,
// before any lock is taken or the cache consulted. A release that matches no
// record is not an error - the second return is false.
func (h *Host) InfoFor(q Query) (manifest.ImageInfo, bool, error) {
	if err := h.support.CheckAliasSupported(q.Release, q.Remote); err != nil {
		return manifest.ImageInfo{}, false, err
	}
	m, err := h.manifestFrom(q.Remote)
	if err != nil {
		return manifest.ImageInfo{}, false, err
	}
	info, ok := m.Lookup(q.Release)
	return info, ok, nil
}

// AllInfoFor wraps InfoFor: with a single remote the result always has zero
// or one entries.
func (h *Host) AllInfoFor(q Query) ([]RemoteImage, error) {
	info, ok, err := h.InfoFor(q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []RemoteImage{{Remote: q.Remote, Info: info}}, nil
}

// AllImagesFor returns every record in the remote's manifest whose alias set
// verifies as supported. The allowUnsupported arg is accepted for interface
// symmetry with other hosts and does not change the filtering here.
func (h *Host) AllImagesFor(remote string, allowUnsupported bool) ([]manifest.ImageInfo, error) {
	m, err := h.manifestFrom(remote)
	if err != nil {
		return nil, err
	}
	images := []manifest.ImageInfo{}
	for _, info := range m.Products {
		if info.IsZero() {
			continue
		}
		if h.support.VerifiesImageSupported(info.Aliases, remote) {
			images = append(images, info)
		}
	}
	return images, nil
}

// ForEachEntry invokes the action for every supported record of every cached
// remote. The cache lock is held for the full iteration, so the action must
// not call back into the host.
func (h *Host) ForEachEntry(action func(remote string, info manifest.ImageInfo) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for remote, m := range h.manifests {
		for _, info := range m.Products {
			if info.IsZero() {
				continue
			}
			if !h.support.VerifiesImageSupported(info.Aliases, remote) {
				continue
			}
			if err := action(remote, info); err != nil {
				return err
			}
		}
	}
	return nil
}

// FetchManifests runs one refresh cycle. An unsupported remote is skipped
// silently - nothing to do, not an error. A build failure is reported
// through the failure sink and leaves the cache untouched, so the previous
// manifest (if any) stays authoritative. A successful build is swapped in
// whole under lock - readers never observe a partially built manifest.
func (h *Host) FetchManifests() {
	for _, remote := range h.remotes {
		if err := h.support.CheckRemoteSupported(remote); err != nil {
			log.Debugf("skipping unsupported remote %q", remote)
			continue
		}
		h.mu.Lock()
		entries := h.catalog.EntriesFor(h.arch)
		h.mu.Unlock()
		m, err := manifest.Build(entries, h.downloader)
		if err != nil {
			metrics.IncManifestRefreshFailures()
			h.reportUpdateFailure(err.Error())
			continue
		}
		h.mu.Lock()
		h.manifests[remote] = m
		h.mu.Unlock()
		metrics.IncManifestRefreshes()
		log.Infof("refreshed manifest for remote %q: %d images", remote, len(m.Products))
	}
}

// Clear drops all cached manifests.
func (h *Host) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.manifests = make(map[string]*manifest.Manifest)
}

// ReloadCatalog replaces the catalog. Already cached manifests are not
// rebuilt - the next refresh uses the new entries.
func (h *Host) ReloadCatalog(c catalog.Catalog) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.catalog = c
}

// manifestFrom returns the cached manifest for the remote. The returned
// manifest is immutable; a concurrent refresh replaces the cache entry
// wholesale rather than mutating it, so readers holding the old value are
// unaffected.
func (h *Host) manifestFrom(remote string) (*manifest.Manifest, error) {
	if err := h.support.CheckRemoteSupported(remote); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.manifests[remote]
	if !ok {
		return nil, &RemoteUnknownError{Remote: remote}
	}
	return m, nil
}

func (h *Host) reportUpdateFailure(msg string) {
	if h.onUpdateFailure != nil {
		h.onUpdateFailure(msg)
		return
	}
	log.Warnf("manifest update failure: %s", msg)
}
