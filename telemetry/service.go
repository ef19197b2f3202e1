package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFlushInterval matches the 20 Hz display tick
const DefaultFlushInterval = 50 * time.Millisecond

// Publisher pushes table contents to one destination
type Publisher interface {
	Name() string
	Publish(ctx context.Context, table string, entries []Entry) error
}

type sink struct {
	pub       Publisher
	published uint64 // Last table version delivered
	failing   bool
}

// Service flushes a Table to its publishers whenever the table changes
type Service struct {
	table    *Table
	interval time.Duration
	timeout  time.Duration

	mu    sync.Mutex
	sinks []*sink

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates a flusher for table
func NewService(table *Table, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &Service{
		table:    table,
		interval: interval,
		timeout:  time.Second,
	}
}

// Add registers a publisher; call before Start
func (s *Service) Add(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, &sink{pub: p})
}

// Name implements service.Service
func (s *Service) Name() string {
	return "telemetry"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.sinks))
	for _, sk := range s.sinks {
		names = append(names, sk.pub.Name())
	}
	return names
}

// Start implements service.Service
func (s *Service) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	return nil
}

func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// Flush publishes the table to every publisher that has not seen its current version
// Failures are logged once per outage and retried on the next flush
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.table.Version()
	var entries []Entry
	var errs []error

	for _, sk := range s.sinks {
		if sk.published == version {
			continue
		}
		if entries == nil {
			entries = s.table.Entries()
		}

		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := sk.pub.Publish(pctx, s.table.Name(), entries)
		cancel()

		if err != nil {
			if !sk.failing {
				log.Printf("telemetry: %s publish failed: %v", sk.pub.Name(), err)
				sk.failing = true
			}
			errs = append(errs, fmt.Errorf("%s: %w", sk.pub.Name(), err))
			continue
		}
		if sk.failing {
			log.Printf("telemetry: %s recovered", sk.pub.Name())
			sk.failing = false
		}
		sk.published = version
	}
	return errors.Join(errs...)
}
