package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GrantReport/internal/domain"
)

type fakeSource struct {
	apps  []domain.Application
	err   error
	calls int
}

func (f *fakeSource) FetchAll(ctx context.Context, progress func(loaded, total int)) ([]domain.Application, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if progress != nil {
		progress(len(f.apps), len(f.apps))
	}
	return append([]domain.Application(nil), f.apps...), nil
}

type fakeRepository struct {
	mu         sync.Mutex
	apps       []domain.Application
	generation int64
	replaceErr error
	snapshots  int
	// afterSnapshot runs once, after Snapshot has copied the records.
	afterSnapshot func()
}

func (f *fakeRepository) Replace(ctx context.Context, apps []domain.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.apps = append([]domain.Application(nil), apps...)
	f.generation++
	return nil
}

func (f *fakeRepository) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.apps), nil
}

func (f *fakeRepository) Generation(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation, nil
}

func (f *fakeRepository) Snapshot(ctx context.Context) ([]domain.Application, int64, error) {
	f.mu.Lock()
	f.snapshots++
	apps := append([]domain.Application(nil), f.apps...)
	gen := f.generation
	hook := f.afterSnapshot
	f.afterSnapshot = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return apps, gen, nil
}

type fakeCache struct {
	entries     map[string][]byte
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func cacheKey(generation int64, day string) string {
	return fmt.Sprintf("%d:%s", generation, day)
}

func (f *fakeCache) Get(ctx context.Context, generation int64, day string) ([]byte, bool, error) {
	payload, ok := f.entries[cacheKey(generation, day)]
	return payload, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, generation int64, day string, payload []byte) error {
	f.entries[cacheKey(generation, day)] = payload
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context) error {
	f.invalidated++
	f.entries = map[string][]byte{}
	return nil
}

type fakeDriver struct {
	job     func(time.Time)
	stopped bool
}

func (f *fakeDriver) Start(ctx context.Context, job func(time.Time)) error {
	f.job = job
	return nil
}

func (f *fakeDriver) Stop(ctx context.Context) error {
	f.stopped = true
	return nil
}

func sampleApplications() []domain.Application {
	return []domain.Application{
		{ApplicationID: "A", ResearchArea: domain.AreaMentalHealth, Status: domain.StatusApproved, SubmittedDate: "2023-01-01", ActionedDate: "2023-01-11", AmountAwarded: 100},
		{ApplicationID: "B", ResearchArea: domain.AreaMentalHealth, Status: domain.StatusApproved, SubmittedDate: "2023-01-01", ActionedDate: "2023-01-21", AmountAwarded: 200},
		{ApplicationID: "C", ResearchArea: domain.AreaClimateAndHealth, Status: domain.StatusSubmitted, SubmittedDate: "2022-10-01"},
	}
}
