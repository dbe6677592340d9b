package cron

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/altezzai/storefront-backend/pkg/logger"
	"github.com/altezzai/storefront-backend/pkg/metrics"
)

type fakeJob struct {
	name string
	runs int
	err  error
}

func (j *fakeJob) Name() string { return j.name }

func (j *fakeJob) Run(_ context.Context) error {
	j.runs++
	return j.err
}

type fakeLock struct {
	acquired bool
	releases int
	failWith error
}

func (l *fakeLock) Acquire(_ context.Context) (bool, error) {
	if l.failWith != nil {
		return false, l.failWith
	}
	return l.acquired, nil
}

func (l *fakeLock) Release(_ context.Context) error {
	l.releases++
	return nil
}

type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}}
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", errors.New("missing key")
	}
	return value, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	t.Parallel()

	first := &fakeJob{name: "first"}
	second := &fakeJob{name: "second"}
	registry := NewRegistry(first, nil)
	registry.Register(second)
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name() != "first" || jobs[1].Name() != "second" {
		t.Fatalf("unexpected job order: %s, %s", jobs[0].Name(), jobs[1].Name())
	}
}

func TestRedisLockSingleOwner(t *testing.T) {
	t.Parallel()

	store := newMemoryRedis()
	ctx := context.Background()

	lockA, err := NewRedisLock(store, "cron:test", time.Hour)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	lockB, err := NewRedisLock(store, "cron:test", time.Hour)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	got, err := lockA.Acquire(ctx)
	if err != nil || !got {
		t.Fatalf("first acquire = (%v, %v), want (true, nil)", got, err)
	}
	got, err = lockB.Acquire(ctx)
	if err != nil || got {
		t.Fatalf("second acquire = (%v, %v), want (false, nil)", got, err)
	}

	if err := lockA.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	got, err = lockB.Acquire(ctx)
	if err != nil || !got {
		t.Fatalf("acquire after release = (%v, %v), want (true, nil)", got, err)
	}
}

func TestRedisLockReleaseOnlyByOwner(t *testing.T) {
	t.Parallel()

	store := newMemoryRedis()
	ctx := context.Background()

	owner, err := NewRedisLock(store, "cron:owner", time.Hour)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	stranger, err := NewRedisLock(store, "cron:owner", time.Hour)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	if got, err := owner.Acquire(ctx); err != nil || !got {
		t.Fatalf("acquire = (%v, %v), want (true, nil)", got, err)
	}
	// stranger never acquired; releasing must not drop the owner's lock.
	if err := stranger.Release(ctx); err != nil {
		t.Fatalf("stranger release: %v", err)
	}
	if got, err := stranger.Acquire(ctx); err != nil || got {
		t.Fatalf("acquire while held = (%v, %v), want (false, nil)", got, err)
	}
}

func TestServiceRunsRegisteredJobs(t *testing.T) {
	t.Parallel()

	healthy := &fakeJob{name: "healthy"}
	broken := &fakeJob{name: "broken", err: errors.New("boom")}
	lock := &fakeLock{acquired: true}

	svc, err := NewService(ServiceParams{
		Logger:   newTestLogger(),
		Registry: NewRegistry(healthy, broken),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(nil),
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if healthy.runs != 1 || broken.runs != 1 {
		t.Fatalf("expected every job to run once, got %d and %d", healthy.runs, broken.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released once, got %d", lock.releases)
	}
}

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	t.Parallel()

	job := &fakeJob{name: "solo"}
	lock := &fakeLock{acquired: false}

	svc, err := NewService(ServiceParams{
		Logger:   newTestLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(nil),
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected no runs without the lock, got %d", job.runs)
	}
	if lock.releases != 0 {
		t.Fatalf("lock must not be released when never acquired, got %d releases", lock.releases)
	}
}

func TestServiceRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	job := &fakeJob{name: "once"}
	svc, err := NewService(ServiceParams{
		Logger:   newTestLogger(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{acquired: true},
		Metrics:  metrics.NewCronJobMetrics(nil),
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if job.runs != 1 {
		t.Fatalf("expected the startup cycle to run once, got %d", job.runs)
	}
}
