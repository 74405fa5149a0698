package ports

import (
	"context"
	"time"

	"GrantReport/internal/domain"
)

// ApplicationSource pulls the full application set from the upstream grants API.
type ApplicationSource interface {
	FetchAll(ctx context.Context, progress func(loaded, total int)) ([]domain.Application, error)
}

// ApplicationRepository persists the latest application snapshot.
// The generation changes on every Replace and never repeats for a different record set.
type ApplicationRepository interface {
	Replace(ctx context.Context, apps []domain.Application) error
	Count(ctx context.Context) (int, error)
	Generation(ctx context.Context) (int64, error)
	Snapshot(ctx context.Context) ([]domain.Application, int64, error)
}

// ReportCache keeps serialised reports per store generation and anchor day.
type ReportCache interface {
	Get(ctx context.Context, generation int64, day string) ([]byte, bool, error)
	Set(ctx context.Context, generation int64, day string, payload []byte) error
	Invalidate(ctx context.Context) error
}

// Scheduler controls when refreshes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
