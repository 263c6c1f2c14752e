package queue

import (
	"context"

	"trashvision/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, c domain.Classification) error
}

type Consumer interface {
	Consume(ctx context.Context, handler func(c domain.Classification) error) error
}
