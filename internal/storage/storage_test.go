package storage

import (
	"path/filepath"
	"testing"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "bridge.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissingRecord(t *testing.T) {
	s := openTestStorage(t)

	_, found, err := s.Get("cid-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("found record in empty database")
	}
}

func TestPutGetRoundtrip(t *testing.T) {
	s := openTestStorage(t)

	want := EntityRecord{Mode: "manual", LastKnownFanSpeed: 7}
	if err := s.Put("cid-1", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, found, err := s.Get("cid-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("record not found after Put")
	}
	if got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStorage(t)

	if err := s.Put("cid-1", EntityRecord{Mode: "auto", LastKnownFanSpeed: 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put("cid-1", EntityRecord{Mode: "sleep", LastKnownFanSpeed: 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, _, err := s.Get("cid-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Mode != "sleep" || got.LastKnownFanSpeed != 3 {
		t.Fatalf("Get = %+v after overwrite", got)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStorage(t)

	if err := s.Put("cid-1", EntityRecord{Mode: "auto"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete("cid-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, found, err := s.Get("cid-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("record still present after Delete")
	}

	// Deleting a missing key is not an error
	if err := s.Delete("cid-404"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}
