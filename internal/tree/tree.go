// Package tree rebuilds a directory tree from the flat path list produced
// by a depth-bounded walk, distinguishing nodes the walk never explored
// from nodes it explored and found empty.
package tree

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sgrant/p4view/internal/provider"
)

// DirEntry is one directory node. Children semantics carry the
// exploration state: nil means the node sits at the depth boundary and
// has not been explored yet; an empty slice means the walk looked inside
// and found no subdirectories.
type DirEntry struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Children []*DirEntry `json:"children"`
	Files    []string    `json:"files,omitempty"`
}

// Build reconstructs the tree under root from the flat list of absolute
// directory paths returned by a depth-bounded walk. Relative paths are
// resolved against root; the root itself is dropped. Sibling order is
// case-sensitive by name.
//
// A node whose depth is strictly inside the walk bound was visited by the
// walk, so a missing grouping entry means it is confirmed empty; a node
// sitting exactly at the bound was never looked into and keeps nil
// children.
func Build(root string, paths []string, depth int) []*DirEntry {
	root = filepath.Clean(root)

	groups := make(map[string][]string)
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		p = filepath.Clean(p)
		if p == root {
			continue
		}
		parent := filepath.Dir(p)
		groups[parent] = append(groups[parent], p)
	}

	return buildChildren(root, groups, 1, depth)
}

func buildChildren(parent string, groups map[string][]string, level, depth int) []*DirEntry {
	paths, ok := groups[parent]
	if !ok {
		return nil
	}

	children := make([]*DirEntry, 0, len(paths))
	for _, p := range paths {
		node := &DirEntry{Name: filepath.Base(p), Path: p}
		if kids := buildChildren(p, groups, level+1, depth); kids != nil {
			node.Children = kids
		} else if level < depth {
			// The walk visited inside this directory and found no
			// subdirectories.
			node.Children = []*DirEntry{}
		}
		children = append(children, node)
	}

	sort.Slice(children, func(i, j int) bool {
		return strings.Compare(children[i].Name, children[j].Name) < 0
	})
	return children
}

// Lister returns the file names directly inside a directory
// (zero-depth listing).
type Lister interface {
	ListFiles(dir string) ([]string, error)
}

// AttachFiles fans out one listing call per node, including nested ones,
// and joins them all before returning. Sibling ordering between calls is
// not guaranteed; each goroutine writes only its own node. A per-node
// listing failure degrades that node to "no files" rather than aborting
// the tree.
func AttachFiles(nodes []*DirEntry, lister Lister) {
	var all []*DirEntry
	var collect func([]*DirEntry)
	collect = func(entries []*DirEntry) {
		for _, e := range entries {
			all = append(all, e)
			collect(e.Children)
		}
	}
	collect(nodes)

	var wg sync.WaitGroup
	for _, node := range all {
		wg.Add(1)
		go func(n *DirEntry) {
			defer wg.Done()
			files, err := lister.ListFiles(n.Path)
			if err != nil {
				return
			}
			n.Files = files
		}(node)
	}
	wg.Wait()
}

// Explore walks root to the requested depth, rebuilds the tree, and
// attaches file listings. Only a failure of the root walk itself aborts
// with an error result.
func Explore(root string, depth int, walker Walker) provider.Result[[]*DirEntry] {
	paths, err := walker.Walk(root, depth)
	if err != nil {
		return provider.Fail[[]*DirEntry](err.Error())
	}

	nodes := Build(root, paths, depth)
	AttachFiles(nodes, walker)
	return provider.Ok(nodes)
}

// WorkspaceRoot resolves the filesystem directory mapped to the user's
// client workspace. This is the one bootstrap call that goes through the
// provider rather than the filesystem.
func WorkspaceRoot(ctx context.Context, p provider.Provider) provider.Result[string] {
	res := p.RunInfoCommand(ctx, "")
	if !res.Success {
		return provider.Fail[string](res.Error)
	}
	if res.Data.ClientRoot == "" {
		return provider.Fail[string]("no client root in server info")
	}
	return provider.Ok(res.Data.ClientRoot)
}
