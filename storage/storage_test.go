package storage

import (
	"context"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func TestCreateStorage(t *testing.T) {
	tests := []struct {
		bucket string
		check  func(Storage) bool
	}{
		{"standalone", func(s Storage) bool { _, ok := s.(*FilesystemStorage); return ok }},
		{"Standalone", func(s Storage) bool { _, ok := s.(*FilesystemStorage); return ok }},
		{"mock", func(s Storage) bool { _, ok := s.(*MockStorage); return ok }},
		{"redis://localhost:6379/0", func(s Storage) bool { _, ok := s.(*RedisStorage); return ok }},
		{"asset-cache-bucket", func(s Storage) bool { _, ok := s.(S3Storage); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			store, err := CreateStorage(NewConfig(tt.bucket, t.TempDir()))
			if err != nil {
				t.Fatalf("Failed to create storage : %s", err)
			}

			if !tt.check(store) {
				t.Errorf("Wrong storage type : %T", store)
			}
		})
	}

	for _, bucket := range []string{"", "none", "NONE"} {
		if _, err := CreateStorage(NewConfig(bucket, "")); errors.Cause(err) != ErrDisabled {
			t.Errorf("Wrong error for bucket %q : got %v, want %s", bucket, err, ErrDisabled)
		}
	}
}

func TestMockStorage(t *testing.T) {
	ctx := context.Background()
	store := NewMockStorage()

	if err := store.Write(ctx, "a/1", []byte("one"), nil); err != nil {
		t.Fatalf("Failed to write : %s", err)
	}

	if err := store.Write(ctx, "a/2", []byte("two"), nil); err != nil {
		t.Fatalf("Failed to write : %s", err)
	}

	if err := store.Write(ctx, "b/1", []byte("three"), nil); err != nil {
		t.Fatalf("Failed to write : %s", err)
	}

	keys, err := store.List(ctx, "a/")
	if err != nil {
		t.Fatalf("Failed to list : %s", err)
	}

	if diff := deep.Equal(keys, []string{"a/1", "a/2"}); diff != nil {
		t.Errorf("Wrong keys : %v", diff)
	}

	if err := store.Remove(ctx, "a/1"); err != nil {
		t.Fatalf("Failed to remove : %s", err)
	}

	if _, err := store.Read(ctx, "a/1"); err != ErrNotFound {
		t.Errorf("Wrong error : got %v, want %s", err, ErrNotFound)
	}

	if store.Count() != 2 {
		t.Errorf("Wrong count : got %d, want %d", store.Count(), 2)
	}
}

func TestMockStorageTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMockStorage()

	if err := store.Write(ctx, "expiring", []byte("value"), WithTTL(1)); err != nil {
		t.Fatalf("Failed to write : %s", err)
	}

	if _, err := store.Read(ctx, "expiring"); err != nil {
		t.Fatalf("Failed to read : %s", err)
	}

	time.Sleep(1100 * time.Millisecond)

	if _, err := store.Read(ctx, "expiring"); err != ErrNotFound {
		t.Errorf("Wrong error after expiry : got %v, want %s", err, ErrNotFound)
	}
}

func TestSaveLoadJSON(t *testing.T) {
	ctx := context.Background()
	store := NewMockStorage()

	type item struct {
		Name      string `json:"name"`
		Precision int    `json:"precision"`
	}

	saved := item{Name: "Tether USD", Precision: 8}
	if err := SaveJSON(ctx, store, "item", saved, nil); err != nil {
		t.Fatalf("Failed to save : %s", err)
	}

	var loaded item
	if err := LoadJSON(ctx, store, "item", &loaded); err != nil {
		t.Fatalf("Failed to load : %s", err)
	}

	if diff := deep.Equal(loaded, saved); diff != nil {
		t.Errorf("Wrong item : %v", diff)
	}

	if err := LoadJSON(ctx, store, "missing", &loaded); errors.Cause(err) != ErrNotFound {
		t.Errorf("Wrong error : got %v, want %s", err, ErrNotFound)
	}
}
