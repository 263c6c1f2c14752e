package notifier

import "context"

// Notification announces a finished training run.
type Notification struct {
	Project     string
	Iteration   string
	PublishName string // empty when the iteration was not published
	Uploaded    int
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
