// Package vaultclient implements the secret-storage port: read(path) ->
// Secret, for DB credentials and the raw PEM material used for TLS and
// issuer signing. Writes are the setup CLI's concern. A file-backed
// implementation suffices for local/dev; a real backend (Vault, KMS)
// implements the same Port interface.
package vaultclient

import (
	"os"
	"path/filepath"
	"vcauthority/pkg/apierror"
)

// Secret is the opaque payload read(path) returns.
type Secret struct {
	Path  string
	Value []byte
}

// Port is the secret-storage contract. Internal packages depend on this
// interface, never on a concrete backend.
type Port interface {
	Read(path string) (*Secret, error)
}

// FileVault is a Port backed by files under a root directory, for local/dev
// deployments; a production deployment swaps in a real vault/KMS backend
// behind the same interface.
type FileVault struct {
	root string
}

// NewFileVault builds a Port rooted at dir.
func NewFileVault(dir string) *FileVault {
	return &FileVault{root: dir}
}

// Read reads path relative to the vault root.
func (v *FileVault) Read(path string) (*Secret, error) {
	full := filepath.Join(v.root, filepath.Clean(path))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, apierror.Newf(apierror.Module, "read secret %q: %s", path, err)
	}
	return &Secret{Path: path, Value: data}, nil
}

var _ Port = (*FileVault)(nil)
