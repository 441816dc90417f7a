package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/user"
)

// Both local backends must satisfy the same repository contract.
func repositories(t *testing.T) map[string]user.Repository {
	t.Helper()

	sqlite, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if err := sqlite.Close(); err != nil {
			t.Errorf("close sqlite: %v", err)
		}
	})

	return map[string]user.Repository{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func newUser(id, email string) *user.User {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &user.User{
		ID:           id,
		Name:         "Test " + id,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestRepositoryCreateAndLoad(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := repo.Create(ctx, newUser("u1", "Ann@Example.com")); err != nil {
				t.Fatalf("create: %v", err)
			}

			byID, err := repo.Load(ctx, "u1")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if byID.Name != "Test u1" || byID.PasswordHash != "hash" {
				t.Fatalf("unexpected user %+v", byID)
			}
			if !byID.CreatedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
				t.Fatalf("created_at not preserved: %s", byID.CreatedAt)
			}

			byEmail, err := repo.LoadByEmail(ctx, "  ann@example.COM ")
			if err != nil {
				t.Fatalf("load by email: %v", err)
			}
			if byEmail.ID != "u1" {
				t.Fatalf("expected u1, got %s", byEmail.ID)
			}
		})
	}
}

func TestRepositoryNotFound(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := repo.Load(ctx, "missing"); !errors.Is(err, user.ErrNotFound) {
				t.Fatalf("load: expected ErrNotFound, got %v", err)
			}
			if _, err := repo.LoadByEmail(ctx, "nobody@example.com"); !errors.Is(err, user.ErrNotFound) {
				t.Fatalf("load by email: expected ErrNotFound, got %v", err)
			}
			if err := repo.Save(ctx, newUser("missing", "x@example.com")); !errors.Is(err, user.ErrNotFound) {
				t.Fatalf("save: expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := repo.Create(ctx, newUser("u1", "ann@example.com")); err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := repo.Create(ctx, newUser("u2", "ANN@example.com")); !errors.Is(err, user.ErrEmailTaken) {
				t.Fatalf("expected ErrEmailTaken, got %v", err)
			}
		})
	}
}

func TestRepositorySaveReplacesLists(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u := newUser("u1", "ann@example.com")
			if err := repo.Create(ctx, u); err != nil {
				t.Fatalf("create: %v", err)
			}

			searched := time.Date(2024, 3, 2, 8, 15, 0, 0, time.UTC)
			u.Favourites = []user.SavedLocation{
				{Lat: 0, Lon: 0, LocationName: "Null Island"},
				{Lat: 51.5074, Lon: -0.1278, LocationName: "London", Country: "GB"},
			}
			u.RecentSearches = []user.RecentSearchEntry{
				{SavedLocation: user.SavedLocation{Lat: 48.8566, Lon: 2.3522, LocationName: "Paris", Country: "FR"}, SearchedAt: searched},
			}
			if err := repo.Save(ctx, u); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := repo.Load(ctx, "u1")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(got.Favourites) != 2 || !got.Favourites[1].Same(51.5074, -0.1278) || got.Favourites[1].Country != "GB" {
				t.Fatalf("favourites not persisted: %+v", got.Favourites)
			}
			if len(got.RecentSearches) != 1 || got.RecentSearches[0].LocationName != "Paris" {
				t.Fatalf("recent searches not persisted: %+v", got.RecentSearches)
			}
			if !got.RecentSearches[0].SearchedAt.Equal(searched) {
				t.Fatalf("searchedAt not preserved: %s", got.RecentSearches[0].SearchedAt)
			}

			u.Favourites = nil
			if err := repo.Save(ctx, u); err != nil {
				t.Fatalf("second save: %v", err)
			}
			got, err = repo.Load(ctx, "u1")
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if len(got.Favourites) != 0 {
				t.Fatalf("expected favourites cleared, got %+v", got.Favourites)
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newUser("u1", "ann@example.com")
	if err := s.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Favourites = append(loaded.Favourites, user.SavedLocation{Lat: 1, Lon: 1})

	again, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(again.Favourites) != 0 {
		t.Fatal("mutating a loaded user leaked into the store")
	}
}

func TestSQLiteDSN(t *testing.T) {
	dir := t.TempDir()

	dsn, err := sqliteDSN(dir + "/nested/app.db")
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	want := "file:" + dir + "/nested/app.db?_busy_timeout=5000&_journal_mode=WAL"
	if dsn != want {
		t.Fatalf("got %q, want %q", dsn, want)
	}

	if dsn, _ := sqliteDSN(":memory:"); dsn != ":memory:" {
		t.Fatalf("memory dsn rewritten: %q", dsn)
	}
}
