package storage

import (
	"context"

	"trashvision/internal/domain"
)

type Stats struct {
	Total         int `json:"total"`
	Recyclable    int `json:"recyclable"`
	Nonrecyclable int `json:"nonrecyclable"`
	Unknown       int `json:"unknown"`
}

type ClassificationRepository interface {
	Save(ctx context.Context, c domain.Classification) error
	FindRecent(ctx context.Context, limit int) ([]domain.Classification, error)
	GetStats(ctx context.Context) (Stats, error)
}
