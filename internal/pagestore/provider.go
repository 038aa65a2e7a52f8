// Package pagestore defines the wiki page storage abstraction.
package pagestore

// Provider is the interface for page storage operations. The default
// implementation writes local .wiki files; a remote wiki backend can be
// substituted behind the same interface.
type Provider interface {
	// Exists reports whether a page is stored at path.
	Exists(path string) bool
	// Read returns the raw bytes of the page at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the page at path.
	Delete(path string) error
	// List returns every stored page path.
	List() ([]string, error)
}
