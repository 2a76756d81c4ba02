package state

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/auto-dns/podvis/internal/domain"
	"github.com/samber/lo"
)

// MemoryState keeps the latest notification per pod in process memory.
type MemoryState struct {
	mu   sync.RWMutex
	pods map[string]*podState
}

func NewMemoryState() *MemoryState {
	return &MemoryState{
		pods: make(map[string]*podState),
	}
}

// Put replaces the stored notification for n.PodName.
func (s *MemoryState) Put(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pods[n.PodName] = &podState{
		Notification: n,
		LastUpdated:  time.Now(),
	}
	return nil
}

func (s *MemoryState) Delete(_ context.Context, podName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pods, podName)
	return nil
}

// List returns every stored notification ordered by pod name.
func (s *MemoryState) List(_ context.Context) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := lo.MapToSlice(s.pods, func(_ string, ps *podState) domain.Notification {
		return ps.Notification
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PodName < out[j].PodName })
	return out, nil
}

func (s *MemoryState) Close() error { return nil }
