package manifest

import (
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"imagehost/impl/catalog"
	"imagehost/impl/download"
	"imagehost/mock"

	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetOutput(io.Discard)
}

var testFiles = []string{
	"ubuntu-core-16-amd64.img.xz",
	"ubuntu-core-18-amd64.img.xz",
	"ubuntu-core-20-amd64.img.xz",
	"ubuntu-core-22-amd64.img.xz",
}

func testEntries(urlPrefix string) []catalog.ArtifactSpec {
	c := catalog.Default()
	entries := c.EntriesFor("x86_64")
	for i := range entries {
		entries[i].URLPrefix = urlPrefix
	}
	return entries
}

func TestBuild(t *testing.T) {
	server, info := mock.ImageServer(testFiles)
	defer server.Close()
	entries := testEntries(info.URLPrefix)

	m, err := Build(entries, download.NewHTTPDownloader(time.Second*5))
	if err != nil {
		t.FailNow()
	}
	if len(m.Products) != 4 {
		t.FailNow()
	}
	for i, product := range m.Products {
		if product.IsZero() {
			t.FailNow()
		}
		if product.ID != info.Hashes[entries[i].Filename] {
			t.Fail()
		}
		if product.Version != info.Version {
			t.Fail()
		}
		if product.ImageLocation != entries[i].URLPrefix+entries[i].Filename {
			t.Fail()
		}
		if !product.Supported || !product.Verified {
			t.Fail()
		}
	}
	// every declared alias and every id resolves through the index
	for i, entry := range entries {
		for _, alias := range entry.Aliases {
			got, ok := m.Lookup(alias)
			if !ok || !reflect.DeepEqual(got, m.Products[i]) {
				t.Fail()
			}
		}
		if got, ok := m.Lookup(m.Products[i].ID); !ok || !reflect.DeepEqual(got, m.Products[i]) {
			t.Fail()
		}
	}
}

// Two aliases declared for the same artifact resolve to the same record.
func TestAliasesShareRecord(t *testing.T) {
	server, info := mock.ImageServer(testFiles)
	defer server.Close()

	m, err := Build(testEntries(info.URLPrefix), download.NewHTTPDownloader(time.Second*5))
	if err != nil {
		t.FailNow()
	}
	core, ok1 := m.Lookup("core")
	core16, ok2 := m.Lookup("core16")
	if !ok1 || !ok2 {
		t.FailNow()
	}
	if !reflect.DeepEqual(core, core16) {
		t.Fail()
	}
}

// One failing artifact aborts the whole build.
func TestBuildOneFailureAborts(t *testing.T) {
	server, info := mock.ImageServerWithParams(testFiles, mock.Params{
		FailFiles: map[string]bool{"ubuntu-core-18-amd64.img.xz": true},
	})
	defer server.Close()

	_, err := Build(testEntries(info.URLPrefix), download.NewHTTPDownloader(time.Second*5))
	if err == nil {
		t.FailNow()
	}
	var dlErr *download.Error
	if !errors.As(err, &dlErr) {
		t.Fail()
	}
}

// An artifact missing from the checksum listing still yields a record, with
// an empty id.
func TestBuildMissingChecksumLine(t *testing.T) {
	server, info := mock.ImageServerWithParams(testFiles, mock.Params{
		MissingFromSums: map[string]bool{"ubuntu-core-20-amd64.img.xz": true},
	})
	defer server.Close()
	entries := testEntries(info.URLPrefix)

	m, err := Build(entries, download.NewHTTPDownloader(time.Second*5))
	if err != nil {
		t.FailNow()
	}
	core20, ok := m.Lookup("core20")
	if !ok {
		t.FailNow()
	}
	if core20.ID != "" {
		t.Fail()
	}
	if core20.Version != info.Version {
		t.Fail()
	}
}

// Rebuilding against unchanged remote responses is idempotent.
func TestBuildIdempotent(t *testing.T) {
	server, info := mock.ImageServer(testFiles)
	defer server.Close()
	entries := testEntries(info.URLPrefix)
	dl := download.NewHTTPDownloader(time.Second * 5)

	m1, err := Build(entries, dl)
	if err != nil {
		t.FailNow()
	}
	m2, err := Build(entries, dl)
	if err != nil {
		t.FailNow()
	}
	if !reflect.DeepEqual(m1.Products, m2.Products) {
		t.Fail()
	}
}

// A host advertising no timestamp produces the zero-time version string.
func TestBuildNoLastModified(t *testing.T) {
	server, info := mock.ImageServerWithParams(testFiles, mock.Params{NoLastModified: true})
	defer server.Close()

	m, err := Build(testEntries(info.URLPrefix), download.NewHTTPDownloader(time.Second*5))
	if err != nil {
		t.FailNow()
	}
	if m.Products[0].Version != "00010101" {
		t.Fail()
	}
}
