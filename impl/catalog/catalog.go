// Package catalog holds the static, per-architecture table of image artifacts
// published by the synthetic image source. The catalog is pure data: it is
// parsed (or defaulted) once at startup and never mutated afterwards.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ArtifactSpec describes one catalog-declared image artifact. The filename is
// the key under which the artifact is published; the URL prefix is the base
// under which both the artifact and its SHA256SUMS listing live.
type ArtifactSpec struct {
	Filename      string   `yaml:"filename"`
	URLPrefix     string   `yaml:"urlPrefix"`
	Aliases       []string `yaml:"aliases"`
	OS            string   `yaml:"os"`
	Release       string   `yaml:"release"`
	ReleaseString string   `yaml:"releaseString"`
}

// Catalog maps an architecture name (e.g. "x86_64") to the artifacts
// published for it.
type Catalog map[string][]ArtifactSpec

// Default returns the built-in catalog: the Ubuntu Core stable images served
// from cdimage.ubuntu.com.
func Default() Catalog {
	return Catalog{
		"x86_64": {
			{
				Filename:      "ubuntu-core-16-amd64.img.xz",
				URLPrefix:     "https://cdimage.ubuntu.com/ubuntu-core/16/stable/current/",
				Aliases:       []string{"core", "core16"},
				OS:            "Ubuntu",
				Release:       "core-16",
				ReleaseString: "Core 16",
			},
			{
				Filename:      "ubuntu-core-18-amd64.img.xz",
				URLPrefix:     "https://cdimage.ubuntu.com/ubuntu-core/18/stable/current/",
				Aliases:       []string{"core18"},
				OS:            "Ubuntu",
				Release:       "core-18",
				ReleaseString: "Core 18",
			},
			{
				Filename:      "ubuntu-core-20-amd64.img.xz",
				URLPrefix:     "https://cdimage.ubuntu.com/ubuntu-core/20/stable/current/",
				Aliases:       []string{"core20"},
				OS:            "Ubuntu",
				Release:       "core-20",
				ReleaseString: "Core 20",
			},
			{
				Filename:      "ubuntu-core-22-amd64.img.xz",
				URLPrefix:     "https://cdimage.ubuntu.com/ubuntu-core/22/stable/current/",
				Aliases:       []string{"core22"},
				OS:            "Ubuntu",
				Release:       "core-22",
				ReleaseString: "Core 22",
			},
		},
	}
}

// Load parses a catalog from the yaml file referenced by the 'path' arg. The
// file holds a mapping from architecture to a list of artifact specs:
//
//	---
//	x86_64:
//	  - filename: ubuntu-core-22-amd64.img.xz
//	    urlPrefix: https://cdimage.ubuntu.com/ubuntu-core/22/stable/current/
//	    aliases: [core22]
//	    os: Ubuntu
//	    release: core-22
//	    releaseString: Core 22
func Load(path string) (Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("unable to stat catalog file: %s", path)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %s", path)
	}
	c, err := Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("error parsing catalog file: %s, the error was: %s", path, err)
	}
	return c, nil
}

// Parse parses the yaml input into a Catalog and validates that every entry
// carries the fields the metadata fetcher needs.
func Parse(catalogBytes []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogBytes, &c); err != nil {
		return nil, err
	}
	for arch, entries := range c {
		for _, entry := range entries {
			if entry.Filename == "" || entry.URLPrefix == "" {
				return nil, fmt.Errorf("catalog entry for arch %q needs both filename and urlPrefix", arch)
			}
		}
	}
	return c, nil
}

// EntriesFor returns the artifacts published for the passed architecture,
// sorted by filename. The sort fixes the slot assignment used by the manifest
// builder so concurrent builds index records deterministically. The returned
// slice is a copy - callers cannot mutate the catalog through it.
func (c Catalog) EntriesFor(arch string) []ArtifactSpec {
	entries := append([]ArtifactSpec(nil), c[arch]...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Filename < entries[j].Filename
	})
	return entries
}
