package artifacts

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/ml"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFSStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("PutAndGet", func(t *testing.T) {
		artifact, err := Encode("encoder", ml.KindCategoryEncoder, &domain.CategoryEncoding{
			Classes: []string{"CASH_OUT", "TRANSFER"},
		})
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if err := store.Put(ctx, artifact); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, err := store.Get(ctx, "encoder")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Kind != ml.KindCategoryEncoder {
			t.Errorf("kind = %q, want %q", got.Kind, ml.KindCategoryEncoder)
		}

		var enc domain.CategoryEncoding
		if err := Decode(got, ml.KindCategoryEncoder, &enc); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !reflect.DeepEqual(enc.Classes, []string{"CASH_OUT", "TRANSFER"}) {
			t.Errorf("decoded classes = %v", enc.Classes)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, "nonexistent")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PutReplaces", func(t *testing.T) {
		first, _ := Encode("primary", ml.KindGradientBoosting, &ml.GradientBoosting{BaseScore: -1})
		second, _ := Encode("primary", ml.KindGradientBoosting, &ml.GradientBoosting{BaseScore: -2})
		if err := store.Put(ctx, first); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := store.Put(ctx, second); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, err := store.Get(ctx, "primary")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		var model ml.GradientBoosting
		if err := Decode(got, ml.KindGradientBoosting, &model); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if model.BaseScore != -2 {
			t.Errorf("base score = %v, want the replacement -2", model.BaseScore)
		}
	})

	t.Run("ListSorted", func(t *testing.T) {
		keys, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		want := []string{"encoder", "primary"}
		if !reflect.DeepEqual(keys, want) {
			t.Errorf("keys = %v, want %v", keys, want)
		}
	})

	t.Run("EmptyKeyRejected", func(t *testing.T) {
		err := store.Put(ctx, &domain.Artifact{Kind: "x"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := store.Get(ctx, ""); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func TestDecodeKindMismatch(t *testing.T) {
	artifact, err := Encode("primary", ml.KindGradientBoosting, &ml.GradientBoosting{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var wrong ml.LogisticRegression
	if err := Decode(artifact, ml.KindLogistic, &wrong); err == nil {
		t.Error("expected kind-mismatch error")
	}
}

func TestLoadRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyStore", func(t *testing.T) {
		store := newTestStore(t)
		reg, err := LoadRegistry(ctx, store, discardLogger())
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if reg.PrimaryReady() || reg.SecondaryReady() {
			t.Error("empty store should leave both capabilities degraded")
		}
		if len(reg.Keys()) != 0 {
			t.Errorf("keys = %v, want none", reg.Keys())
		}
	})

	t.Run("PartialSet", func(t *testing.T) {
		store := newTestStore(t)
		primary, _ := Encode(domain.ArtifactPrimary, ml.KindGradientBoosting, &ml.GradientBoosting{BaseScore: -3})
		encoder, _ := Encode(domain.ArtifactEncoder, ml.KindCategoryEncoder, &domain.CategoryEncoding{Classes: []string{"TRANSFER"}})
		for _, a := range []*domain.Artifact{primary, encoder} {
			if err := store.Put(ctx, a); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}

		reg, err := LoadRegistry(ctx, store, discardLogger())
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if !reg.PrimaryReady() {
			t.Error("primary capability should be ready")
		}
		if reg.SecondaryReady() {
			t.Error("secondary capability should be degraded")
		}
		want := []string{domain.ArtifactEncoder, domain.ArtifactPrimary}
		if !reflect.DeepEqual(reg.Keys(), want) {
			t.Errorf("keys = %v, want %v", reg.Keys(), want)
		}
		if reg.Primary.BaseScore != -3 {
			t.Errorf("decoded base score = %v, want -3", reg.Primary.BaseScore)
		}
	})

	t.Run("CorruptKindIsFatal", func(t *testing.T) {
		store := newTestStore(t)
		// Stored under the primary key with the wrong kind tag.
		wrong, _ := Encode(domain.ArtifactPrimary, ml.KindLogistic, &ml.LogisticRegression{})
		if err := store.Put(ctx, wrong); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if _, err := LoadRegistry(ctx, store, discardLogger()); err == nil {
			t.Error("expected load failure on kind mismatch")
		}
	})
}

func TestNewDispatch(t *testing.T) {
	t.Run("Filesystem", func(t *testing.T) {
		store, err := New(domain.ArtifactStoreConfig{Driver: "fs", Dir: t.TempDir()})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer store.Close()
		if _, ok := store.(*FSStore); !ok {
			t.Errorf("driver fs returned %T", store)
		}
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		if _, err := New(domain.ArtifactStoreConfig{Driver: "cassandra"}); err == nil {
			t.Error("expected error for unknown driver")
		}
	})
}
