// Package manifest builds and represents the image manifest for one remote:
// the image records fetched for each catalog artifact plus an index resolving
// record ids and aliases to records.
package manifest

import "reflect"

// ImageInfo is one image record in a remote's manifest. The ID is the
// artifact's integrity hash from the SHA256SUMS listing (it doubles as the
// record's stable identifier) and Version is the artifact's last-modified
// date. Records are created once by the builder and never mutated.
type ImageInfo struct {
	Aliases        []string `json:"aliases"`
	OS             string   `json:"os"`
	Release        string   `json:"release"`
	ReleaseTitle   string   `json:"releaseTitle"`
	Supported      bool     `json:"supported"`
	ImageLocation  string   `json:"imageLocation"`
	ID             string   `json:"id"`
	StreamLocation string   `json:"streamLocation,omitempty"`
	Version        string   `json:"version"`
	Size           int64    `json:"size"`
	Verified       bool     `json:"verified"`
}

// IsZero reports whether the record is an unwritten placeholder slot rather
// than the result of a fetch. Placeholder slots keep their build-order
// position in the product list but are excluded from the index and from
// enumeration - callers iterating Products directly must filter them.
func (i ImageInfo) IsZero() bool {
	return reflect.DeepEqual(i, ImageInfo{})
}

// Manifest owns the image records built for one remote. The records index
// maps every record id and alias to an offset into Products; it never holds
// pointers, so rebuilding Products can never leave the index dangling. Every
// key in the index resolves to a non-placeholder record.
type Manifest struct {
	Products []ImageInfo
	records  map[string]int
}

// New builds a Manifest owning the passed records and an index over them.
// Placeholder (zero-valued) records keep their slot in Products but get no
// index entries. If two records share an alias the later one wins - a catalog
// authoring constraint, not detected as an error.
func New(products []ImageInfo) *Manifest {
	m := &Manifest{
		Products: products,
		records:  make(map[string]int),
	}
	for i, product := range products {
		if product.IsZero() {
			continue
		}
		m.records[product.ID] = i
		for _, alias := range product.Aliases {
			m.records[alias] = i
		}
	}
	return m
}

// Lookup resolves an alias or record id to its image record.
func (m *Manifest) Lookup(name string) (ImageInfo, bool) {
	i, ok := m.records[name]
	if !ok {
		return ImageInfo{}, false
	}
	return m.Products[i], true
}
