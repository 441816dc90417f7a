package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service applies the favourites and recent-search policies to a user and
// writes the full user back as one replace.
type Service struct {
	repo        Repository
	recentLimit int
	now         func() time.Time
	logger      *slog.Logger
}

func NewService(repo Repository, recentLimit int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		recentLimit: recentLimit,
		now:         time.Now,
		logger:      logger.With("component", "user"),
	}
}

// AddFavourite stores loc for u and returns the resulting favourites.
func (s *Service) AddFavourite(ctx context.Context, u *User, loc SavedLocation) ([]SavedLocation, error) {
	favs, err := AddFavourite(u.Favourites, loc)
	if err != nil {
		return u.Favourites, err
	}

	next := u.Clone()
	next.Favourites = favs
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next.Favourites, nil
}

// RemoveFavourite deletes the favourites at (lat, lon) and returns what is left.
func (s *Service) RemoveFavourite(ctx context.Context, u *User, lat, lon float64) ([]SavedLocation, error) {
	next := u.Clone()
	next.Favourites = RemoveFavourite(u.Favourites, lat, lon)
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next.Favourites, nil
}

// RecordSearch stamps loc with the current time and records it as the most
// recent search.
func (s *Service) RecordSearch(ctx context.Context, u *User, loc SavedLocation) ([]RecentSearchEntry, error) {
	entry := RecentSearchEntry{SavedLocation: loc, SearchedAt: s.now().UTC()}

	next := u.Clone()
	next.RecentSearches = RecordRecentSearch(u.RecentSearches, entry, s.recentLimit)
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next.RecentSearches, nil
}

func (s *Service) save(ctx context.Context, u *User) error {
	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, u); err != nil {
		s.logger.Error("saving user failed", "user", u.ID, "err", err)
		return fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return nil
}
