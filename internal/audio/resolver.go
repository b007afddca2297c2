package audio

import (
	"fmt"
	"os"
	"path/filepath"
)

// audioSubdir is the second conventional location searched for resources
const audioSubdir = "Audio"

// Resolver maps logical resource names to files under a resource directory.
// For each extension in order it looks for <dir>/<name>.<ext>, then
// <dir>/Audio/<name>.<ext>.
type Resolver struct {
	dir string
}

// NewResolver creates a Resolver rooted at dir
func NewResolver(dir string) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve returns the path of the first matching file, or an error wrapping
// ErrResourceNotFound
func (r *Resolver) Resolve(res Resource) (string, error) {
	for _, ext := range res.Extensions {
		file := res.Name + "." + ext
		for _, candidate := range []string{
			filepath.Join(r.dir, file),
			filepath.Join(r.dir, audioSubdir, file),
		} {
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s and %s)", ErrResourceNotFound, res,
		r.dir, filepath.Join(r.dir, audioSubdir))
}

// Dir returns the resource root
func (r *Resolver) Dir() string {
	return r.dir
}
