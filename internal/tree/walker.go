package tree

import (
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Walker performs the filesystem side of tree building: a depth-bounded
// directory walk and a zero-depth file listing.
type Walker interface {
	// Walk returns the absolute paths of root and every directory below
	// it, descending at most depth levels.
	Walk(root string, depth int) ([]string, error)
	Lister
}

// FSWalker walks a filesystem through the afero abstraction so tests can
// run against an in-memory filesystem.
type FSWalker struct {
	fs afero.Fs
}

// NewFSWalker returns a walker over the OS filesystem.
func NewFSWalker() *FSWalker {
	return &FSWalker{fs: afero.NewOsFs()}
}

// NewFSWalkerWithFs returns a walker over the given filesystem.
func NewFSWalkerWithFs(fs afero.Fs) *FSWalker {
	return &FSWalker{fs: fs}
}

// Walk returns root plus all directories up to depth levels below it.
// Unreadable subdirectories are skipped; only a failure to read the root
// itself is an error.
func (w *FSWalker) Walk(root string, depth int) ([]string, error) {
	root = filepath.Clean(root)

	if _, err := w.fs.Stat(root); err != nil {
		return nil, err
	}

	paths := []string{root}
	if err := w.walkLevel(root, depth, &paths, true); err != nil {
		return nil, err
	}
	return paths, nil
}

func (w *FSWalker) walkLevel(dir string, remaining int, paths *[]string, isRoot bool) error {
	if remaining <= 0 {
		return nil
	}

	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		if isRoot {
			return err
		}
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		sub := filepath.Join(dir, name)
		*paths = append(*paths, sub)
		if err := w.walkLevel(sub, remaining-1, paths, false); err != nil {
			return err
		}
	}
	return nil
}

// ListFiles returns the names of regular files directly inside dir,
// sorted.
func (w *FSWalker) ListFiles(dir string) ([]string, error) {
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
