package store

import (
	"testing"

	"github.com/sgrant/p4view/internal/errors"
)

func newServerStore() *ServerStore {
	return NewServerStore(NewMemKV())
}

func TestServerStore_AddAndGet(t *testing.T) {
	s := newServerStore()

	srv, err := s.Add("main", "perforce:1666", "primary server")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if srv.ID == "" {
		t.Error("Expected generated id")
	}
	if srv.CreatedAt.IsZero() || srv.UpdatedAt.IsZero() {
		t.Error("Expected timestamps stamped")
	}

	got, err := s.Get(srv.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "main" || got.Address != "perforce:1666" {
		t.Errorf("Unexpected server: %+v", got)
	}
}

func TestServerStore_GetUnknown(t *testing.T) {
	s := newServerStore()

	_, err := s.Get("nope")
	if err == nil {
		t.Fatal("Expected error for unknown id")
	}
	if !errors.Is(err, errors.KindNotFound) {
		t.Errorf("Expected NotFound kind, got %v", errors.GetKind(err))
	}
}

func TestServerStore_FindByAddressCaseInsensitive(t *testing.T) {
	s := newServerStore()

	if _, err := s.Add("main", "Perforce:1666", ""); err != nil {
		t.Fatal(err)
	}

	found, err := s.FindByAddress("perforce:1666")
	if err != nil {
		t.Fatalf("FindByAddress failed: %v", err)
	}
	if found == nil {
		t.Fatal("Expected case-insensitive match")
	}

	missing, err := s.FindByAddress("other:1666")
	if err != nil {
		t.Fatalf("FindByAddress failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected no match for different address")
	}
}

func TestServerStore_UpdateMergesProvidedFields(t *testing.T) {
	s := newServerStore()

	srv, err := s.Add("main", "perforce:1666", "original")
	if err != nil {
		t.Fatal(err)
	}

	newName := "renamed"
	updated, err := s.Update(srv.ID, ServerUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Name != "renamed" {
		t.Errorf("Expected name updated, got %s", updated.Name)
	}
	if updated.Address != "perforce:1666" {
		t.Errorf("Expected address untouched, got %s", updated.Address)
	}
	if updated.Description != "original" {
		t.Errorf("Expected description untouched, got %s", updated.Description)
	}
	if !updated.UpdatedAt.After(srv.UpdatedAt) && !updated.UpdatedAt.Equal(srv.UpdatedAt) {
		t.Error("Expected UpdatedAt stamped")
	}
}

func TestServerStore_UpdateUnknown(t *testing.T) {
	s := newServerStore()

	name := "x"
	if _, err := s.Update("nope", ServerUpdate{Name: &name}); err == nil {
		t.Error("Expected error for unknown id")
	}
}

func TestServerStore_Remove(t *testing.T) {
	s := newServerStore()

	srv, err := s.Add("main", "perforce:1666", "")
	if err != nil {
		t.Fatal(err)
	}

	removed, err := s.Remove(srv.ID)
	if err != nil || !removed {
		t.Fatalf("Expected removal, got removed=%v err=%v", removed, err)
	}

	removed, err = s.Remove(srv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("Expected false for already-removed server")
	}

	servers, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(servers) != 0 {
		t.Errorf("Expected empty list, got %d", len(servers))
	}
}

func TestServerStore_ListEmpty(t *testing.T) {
	s := newServerStore()

	servers, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(servers) != 0 {
		t.Errorf("Expected no servers, got %d", len(servers))
	}
}
