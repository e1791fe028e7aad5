package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UploadDir confines file-based uploads to one directory.
type UploadDir struct {
	root string
}

// NewUploadDir creates a guard for root. The directory does not need to
// exist yet.
func NewUploadDir(root string) (*UploadDir, error) {
	if root == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory: %w", err)
	}
	return &UploadDir{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute upload directory.
func (u *UploadDir) Root() string {
	return u.root
}

// Resolve returns the absolute path of name, which may be relative to the
// upload directory. Paths escaping the directory, directly or through a
// symlink, are rejected.
func (u *UploadDir) Resolve(name string) (string, error) {
	name = strings.ReplaceAll(name, "\x00", "")
	if name == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(name) {
		name = filepath.Join(u.root, name)
	}
	path := filepath.Clean(name)

	if !within(u.root, path) {
		return "", fmt.Errorf("path is outside configured directory: %s", name)
	}

	// Symlinks only matter once both ends exist.
	realRoot, err := filepath.EvalSymlinks(u.root)
	if err != nil {
		return path, nil
	}
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !within(realRoot, realPath) {
		return "", fmt.Errorf("path is outside configured directory: %s", name)
	}

	return path, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
