// Package files maps request targets to file contents under a serving root.
package files

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultIndex is served for the target "/".
const DefaultIndex = "index.html"

var (
	ErrNotFound      = errors.New("file not found")
	ErrInvalidTarget = errors.New("invalid request target")
)

// Resolver reads files confined to a single directory. Every lookup goes
// through an [os.Root], so neither ".." segments nor symlinks can reach
// outside of it.
type Resolver struct {
	dir   string
	index string
	root  *os.Root
}

// New opens dir as the serving root. index is the document returned for
// "/"; an empty index falls back to DefaultIndex.
func New(dir, index string) (*Resolver, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve serving root %q: %w", dir, err)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("open serving root %q: %w", abs, err)
	}

	if index == "" {
		index = DefaultIndex
	}
	return &Resolver{
		dir:   abs,
		index: index,
		root:  root,
	}, nil
}

// Dir returns the absolute serving root.
func (r *Resolver) Dir() string {
	return r.dir
}

// Close releases the handle on the serving root.
func (r *Resolver) Close() error {
	return r.root.Close()
}

// Resolve returns the full contents of the file named by target.
//
// ErrNotFound covers every case where no content can be produced: a
// missing or unreadable file, a directory, or an empty file.
// ErrInvalidTarget is returned when target cannot be percent-decoded.
func (r *Resolver) Resolve(target string) ([]byte, error) {
	name, err := r.Name(target)
	if err != nil {
		return nil, err
	}
	return r.ReadFile(name)
}

// Name converts target into a slash-separated name relative to the
// serving root.
func (r *Resolver) Name(target string) (string, error) {
	if i := strings.IndexAny(target, "?#"); i != -1 {
		target = target[:i]
	}

	decoded, err := url.PathUnescape(target)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidTarget, err)
	}
	if strings.IndexByte(decoded, 0) != -1 {
		return "", ErrInvalidTarget
	}

	if decoded == "/" || decoded == "" {
		return r.index, nil
	}

	// Cleaning against "/" drops every ".." that would climb above the root.
	cleaned := path.Clean("/" + decoded)
	name := strings.TrimPrefix(cleaned, "/")
	if name == "" {
		return r.index, nil
	}
	return name, nil
}

// ReadFile reads name, relative to the serving root, into memory.
func (r *Resolver) ReadFile(name string) ([]byte, error) {
	f, err := r.root.Open(filepath.FromSlash(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, nil
}
