// Package support defines the remote/alias support capability consumed by
// the image host. The host never decides support itself - it asks an
// injected Support implementation.
package support

import (
	"fmt"
	"slices"
)

// UnsupportedRemoteError means a remote name is not recognized by this host.
type UnsupportedRemoteError struct {
	Remote string
}

func (e *UnsupportedRemoteError) Error() string {
	return fmt.Sprintf("remote %q is not supported", e.Remote)
}

// UnsupportedAliasError means an alias is not available for a remote on this
// platform.
type UnsupportedAliasError struct {
	Alias  string
	Remote string
}

func (e *UnsupportedAliasError) Error() string {
	return fmt.Sprintf("alias %q is not supported on remote %q", e.Alias, e.Remote)
}

// Support answers whether remotes and aliases are usable on this platform.
type Support interface {
	// CheckRemoteSupported fails with *UnsupportedRemoteError if the remote
	// is not recognized.
	CheckRemoteSupported(remote string) error
	// CheckAliasSupported fails if either the remote or the alias is not
	// usable.
	CheckAliasSupported(alias string, remote string) error
	// VerifiesImageSupported reports whether an image with the passed alias
	// set is usable on the remote.
	VerifiesImageSupported(aliases []string, remote string) bool
}

// Static is a fixed Support policy: a set of recognized remotes and an
// optional set of aliases excluded on this platform.
type Static struct {
	Remotes            []string
	UnsupportedAliases map[string]bool
}

// NewStatic returns a Static policy recognizing the passed remotes with no
// excluded aliases.
func NewStatic(remotes ...string) *Static {
	return &Static{Remotes: remotes}
}

func (s *Static) CheckRemoteSupported(remote string) error {
	if !slices.Contains(s.Remotes, remote) {
		return &UnsupportedRemoteError{Remote: remote}
	}
	return nil
}

func (s *Static) CheckAliasSupported(alias string, remote string) error {
	if err := s.CheckRemoteSupported(remote); err != nil {
		return err
	}
	if s.UnsupportedAliases[alias] {
		return &UnsupportedAliasError{Alias: alias, Remote: remote}
	}
	return nil
}

func (s *Static) VerifiesImageSupported(aliases []string, remote string) bool {
	for _, alias := range aliases {
		if s.UnsupportedAliases[alias] {
			return false
		}
	}
	return true
}
