package tree

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/sgrant/p4view/internal/provider"
	"github.com/sgrant/p4view/internal/ztag"
)

var ctx = context.Background()

func findChild(entries []*DirEntry, name string) *DirEntry {
	for _, e := range entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func TestBuild_DistinguishesEmptyFromUnexplored(t *testing.T) {
	root := filepath.Join("/", "ws")
	paths := []string{
		root,
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "Main"),
		filepath.Join(root, "empty"),
	}

	nodes := Build(root, paths, 2)
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 top-level nodes, got %d", len(nodes))
	}

	src := findChild(nodes, "src")
	if src == nil {
		t.Fatal("Missing src node")
	}
	if len(src.Children) != 1 || src.Children[0].Name != "Main" {
		t.Fatalf("Unexpected src children: %+v", src.Children)
	}

	// Main sits at the depth boundary and was never looked into.
	if src.Children[0].Children != nil {
		t.Errorf("Expected nil children at the depth boundary, got %+v", src.Children[0].Children)
	}

	// empty was visited at level 1 and yielded nothing.
	empty := findChild(nodes, "empty")
	if empty == nil {
		t.Fatal("Missing empty node")
	}
	if empty.Children == nil {
		t.Error("Expected confirmed-empty marker, got nil children")
	}
	if len(empty.Children) != 0 {
		t.Errorf("Expected no children, got %+v", empty.Children)
	}
}

func TestBuild_SiblingsSortedByName(t *testing.T) {
	root := filepath.Join("/", "ws")
	paths := []string{
		filepath.Join(root, "zebra"),
		filepath.Join(root, "Apple"),
		filepath.Join(root, "apple"),
	}

	nodes := Build(root, paths, 1)
	if len(nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(nodes))
	}
	// Case-sensitive order puts uppercase first.
	want := []string{"Apple", "apple", "zebra"}
	for i, name := range want {
		if nodes[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, nodes[i].Name)
		}
	}
}

func TestBuild_ResolvesRelativePaths(t *testing.T) {
	root := filepath.Join("/", "ws")
	nodes := Build(root, []string{"src", filepath.Join("src", "lib")}, 2)

	src := findChild(nodes, "src")
	if src == nil {
		t.Fatal("Missing src node")
	}
	if src.Path != filepath.Join(root, "src") {
		t.Errorf("Expected resolved path, got %s", src.Path)
	}
	if lib := findChild(src.Children, "lib"); lib == nil {
		t.Error("Missing nested lib node")
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	if nodes := Build("/ws", nil, 2); nodes != nil {
		t.Errorf("Expected nil for no paths, got %+v", nodes)
	}
	// Root alone means the walk found nothing beneath it.
	if nodes := Build("/ws", []string{"/ws"}, 2); nodes != nil {
		t.Errorf("Expected nil when only the root was seen, got %+v", nodes)
	}
}

type fakeLister struct {
	files  map[string][]string
	failOn string
}

func (f *fakeLister) ListFiles(dir string) ([]string, error) {
	if dir == f.failOn {
		return nil, errors.New("permission denied")
	}
	return f.files[dir], nil
}

func TestAttachFiles(t *testing.T) {
	root := filepath.Join("/", "ws")
	nodes := Build(root, []string{
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "lib"),
		filepath.Join(root, "docs"),
	}, 2)

	lister := &fakeLister{files: map[string][]string{
		filepath.Join(root, "src"):        {"main.go"},
		filepath.Join(root, "src", "lib"): {"util.go", "util_test.go"},
	}}
	AttachFiles(nodes, lister)

	src := findChild(nodes, "src")
	if len(src.Files) != 1 || src.Files[0] != "main.go" {
		t.Errorf("Unexpected src files: %v", src.Files)
	}
	lib := findChild(src.Children, "lib")
	if len(lib.Files) != 2 {
		t.Errorf("Expected nested node listed too, got %v", lib.Files)
	}
	docs := findChild(nodes, "docs")
	if docs.Files != nil {
		t.Errorf("Expected no files for docs, got %v", docs.Files)
	}
}

func TestAttachFiles_FailureDegradesToNoFiles(t *testing.T) {
	root := filepath.Join("/", "ws")
	nodes := Build(root, []string{
		filepath.Join(root, "ok"),
		filepath.Join(root, "broken"),
	}, 1)

	lister := &fakeLister{
		files:  map[string][]string{filepath.Join(root, "ok"): {"a.txt"}},
		failOn: filepath.Join(root, "broken"),
	}
	AttachFiles(nodes, lister)

	if ok := findChild(nodes, "ok"); len(ok.Files) != 1 {
		t.Errorf("Expected ok node listed, got %v", ok.Files)
	}
	if broken := findChild(nodes, "broken"); broken.Files != nil {
		t.Errorf("Expected failure to degrade to no files, got %v", broken.Files)
	}
}

func newMemWalker(t *testing.T) (*FSWalker, string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	root := filepath.Join("/", "ws")
	for _, dir := range []string{
		filepath.Join(root, "src", "lib", "deep"),
		filepath.Join(root, "docs"),
		filepath.Join(root, "empty"),
	} {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	for _, file := range []string{
		filepath.Join(root, "README.md"),
		filepath.Join(root, "src", "main.go"),
		filepath.Join(root, "src", "lib", "util.go"),
	} {
		if err := afero.WriteFile(fs, file, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return NewFSWalkerWithFs(fs), root
}

func TestFSWalker_WalkDepthBound(t *testing.T) {
	walker, root := newMemWalker(t)

	paths, err := walker.Walk(root, 2)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	want := map[string]bool{
		root:                              true,
		filepath.Join(root, "docs"):       true,
		filepath.Join(root, "empty"):      true,
		filepath.Join(root, "src"):        true,
		filepath.Join(root, "src", "lib"): true,
	}
	if len(paths) != len(want) {
		t.Fatalf("Expected %d paths, got %d: %v", len(want), len(paths), paths)
	}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("Unexpected path %s", p)
		}
	}
}

func TestFSWalker_WalkMissingRoot(t *testing.T) {
	walker := NewFSWalkerWithFs(afero.NewMemMapFs())
	if _, err := walker.Walk("/nope", 2); err == nil {
		t.Error("Expected error for missing root")
	}
}

func TestFSWalker_ListFiles(t *testing.T) {
	walker, root := newMemWalker(t)

	files, err := walker.ListFiles(filepath.Join(root, "src"))
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 1 || files[0] != "main.go" {
		t.Errorf("Unexpected files: %v", files)
	}

	files, err = walker.ListFiles(filepath.Join(root, "empty"))
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no files, got %v", files)
	}
}

func TestExplore(t *testing.T) {
	walker, root := newMemWalker(t)

	res := Explore(root, 2, walker)
	if !res.Success {
		t.Fatalf("Explore failed: %s", res.Error)
	}

	src := findChild(res.Data, "src")
	if src == nil {
		t.Fatal("Missing src node")
	}
	if len(src.Files) != 1 || src.Files[0] != "main.go" {
		t.Errorf("Expected files attached, got %v", src.Files)
	}

	// lib sits at the boundary with deep below it unexplored.
	lib := findChild(src.Children, "lib")
	if lib == nil {
		t.Fatal("Missing lib node")
	}
	if lib.Children != nil {
		t.Errorf("Expected unexplored boundary node, got %+v", lib.Children)
	}

	empty := findChild(res.Data, "empty")
	if empty == nil || empty.Children == nil || len(empty.Children) != 0 {
		t.Errorf("Expected confirmed-empty node, got %+v", empty)
	}
}

func TestExplore_WalkFailure(t *testing.T) {
	walker := NewFSWalkerWithFs(afero.NewMemMapFs())
	res := Explore("/nope", 2, walker)
	if res.Success {
		t.Error("Expected failure for missing root")
	}
}

type infoProvider struct {
	result provider.Result[ztag.ServerInfo]
}

func (f *infoProvider) GetSubmittedChanges(ctx context.Context, maxCount int, depotPath string) provider.Result[[]ztag.ChangelistInfo] {
	return provider.Ok([]ztag.ChangelistInfo{})
}

func (f *infoProvider) GetPendingChanges(ctx context.Context, user string) provider.Result[[]ztag.ChangelistInfo] {
	return provider.Ok([]ztag.ChangelistInfo{})
}

func (f *infoProvider) GetCurrentUser(ctx context.Context) provider.Result[string] {
	return provider.Ok("alice")
}

func (f *infoProvider) RunInfoCommand(ctx context.Context, address string) provider.Result[ztag.ServerInfo] {
	return f.result
}

func (f *infoProvider) Login(ctx context.Context, address, username, password string) provider.Result[string] {
	return provider.Ok("T")
}

func (f *infoProvider) Logout(ctx context.Context, address, username string) provider.Result[bool] {
	return provider.Ok(true)
}

func (f *infoProvider) ValidateTicket(ctx context.Context, address, username, ticket string) provider.Result[bool] {
	return provider.Ok(true)
}

func (f *infoProvider) GetTickets(ctx context.Context) provider.Result[[]ztag.Ticket] {
	return provider.Ok([]ztag.Ticket{})
}

func TestWorkspaceRoot(t *testing.T) {
	p := &infoProvider{result: provider.Ok(ztag.ServerInfo{ClientRoot: "/home/alice/ws"})}
	res := WorkspaceRoot(ctx, p)
	if !res.Success || res.Data != "/home/alice/ws" {
		t.Errorf("Unexpected result: %+v", res)
	}

	p.result = provider.Ok(ztag.ServerInfo{})
	if res := WorkspaceRoot(ctx, p); res.Success {
		t.Error("Expected failure when no client root is reported")
	}

	p.result = provider.Fail[ztag.ServerInfo]("not connected")
	if res := WorkspaceRoot(ctx, p); res.Success {
		t.Error("Expected failure propagated from the provider")
	}
}
