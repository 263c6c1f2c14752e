package worker

import (
	"context"
	"log"

	"trashvision/internal/domain"
	"trashvision/internal/queue"
	"trashvision/internal/storage"
)

// Recorder drains the classification topic into Postgres, building the
// audit trail the /api/history endpoint reads from.
type Recorder struct {
	consumer queue.Consumer
	repo     storage.ClassificationRepository
}

func NewRecorder(c queue.Consumer, r storage.ClassificationRepository) *Recorder {
	return &Recorder{
		consumer: c,
		repo:     r,
	}
}

func (w *Recorder) Start(ctx context.Context) error {
	return w.consumer.Consume(ctx, w.handleEvent)
}

func (w *Recorder) handleEvent(c domain.Classification) error {
	log.Printf("[RECORD] %s (confidence: %.2f, iteration: %s)", c.Label, c.Confidence, c.Iteration)

	if err := w.repo.Save(context.Background(), c); err != nil {
		log.Printf("[ERROR] save: %v", err)
		return err
	}

	return nil
}
