package adapter

import (
	"context"

	"composite-client/internal/domain/model"
)

// Notifier tells a user how a share card session ended.
type Notifier interface {
	NotifyShareCard(ctx context.Context, h model.JobHandle, outcome model.PollOutcome, err error) error
}
