package manifest

import (
	"strings"

	"imagehost/impl/catalog"
	"imagehost/impl/download"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// sumsFile is the checksum listing published next to every artifact. The
// listing format is one line per artifact: <hash><space><filename>, trailing
// whitespace tolerated.
const sumsFile = "SHA256SUMS"

// versionFormat renders the artifact's last-modified timestamp as the
// 8-digit date that serves as the record version.
const versionFormat = "20060102"

// baseImageInfo holds the per-artifact metadata retrieved from the image
// host. It is consumed immediately by the builder and not retained.
type baseImageInfo struct {
	lastModified string
	hash         string
}

// baseImageInfoFor fetches the metadata for one artifact: the last-modified
// timestamp of the image itself and its hash from the checksum listing. A
// listing with no line for the artifact leaves the hash empty - the record
// is still built, just unverifiable.
func baseImageInfoFor(dl download.Downloader, imageURL, hashURL, imageFile string) (baseImageInfo, error) {
	modified, err := dl.LastModified(imageURL)
	if err != nil {
		return baseImageInfo{}, err
	}
	sums, err := dl.Download(hashURL)
	if err != nil {
		return baseImageInfo{}, err
	}
	var hash string
	for _, line := range strings.Split(sums, "\n") {
		if strings.HasSuffix(strings.TrimSpace(line), imageFile) {
			hash = strings.Split(line, " ")[0]
			break
		}
	}
	if hash == "" {
		log.Warnf("no checksum for %q in %s", imageFile, hashURL)
	}
	return baseImageInfo{
		lastModified: modified.Format(versionFormat),
		hash:         hash,
	}, nil
}

// Build produces the manifest for one remote by fanning one fetch goroutine
// out per catalog entry. Entries must already be in their final (sorted)
// order: each goroutine writes its record into the slot pre-assigned from
// that order, so no two workers ever touch the same element and no lock is
// needed for the writes. The join returns the first fetch error after all
// workers are observed - one failed artifact aborts the whole build.
func Build(entries []catalog.ArtifactSpec, dl download.Downloader) (*Manifest, error) {
	products := make([]ImageInfo, len(entries))
	var group errgroup.Group
	for i, entry := range entries {
		i, entry := i, entry
		group.Go(func() error {
			imageURL := entry.URLPrefix + entry.Filename
			base, err := baseImageInfoFor(dl, imageURL, entry.URLPrefix+sumsFile, entry.Filename)
			if err != nil {
				return err
			}
			products[i] = ImageInfo{
				Aliases:       entry.Aliases,
				OS:            entry.OS,
				Release:       entry.Release,
				ReleaseTitle:  entry.ReleaseString,
				Supported:     true,
				ImageLocation: imageURL,
				ID:            base.hash,
				Version:       base.lastModified,
				Verified:      true,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	// the index is built only after the join, so it never reflects a
	// partially written product list
	return New(products), nil
}
