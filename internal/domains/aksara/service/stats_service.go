package service

import (
	"context"
	"time"

	"aksara-bali-backend/internal/domains/aksara/model"
)

// Stats tính lại mỗi lần gọi, không cache
func (s *Service) Stats(ctx context.Context) (*model.Stats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, wrap("Fetch statistics", err)
	}

	byCategory, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return nil, wrap("Fetch statistics", err)
	}

	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, wrap("Fetch statistics", err)
	}

	since := s.now().Add(-time.Duration(s.recentDays) * 24 * time.Hour)
	recent, err := s.repo.CountSince(ctx, since)
	if err != nil {
		return nil, wrap("Fetch statistics", err)
	}

	latest, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, wrap("Fetch statistics", err)
	}

	return &model.Stats{
		Total:            total,
		ByCategory:       byCategory,
		Categories:       len(byCategory),
		ModelsCount:      len(keys),
		RecentAdditions:  recent,
		RecentWindowDays: s.recentDays,
		LatestEntry:      latest,
	}, nil
}
