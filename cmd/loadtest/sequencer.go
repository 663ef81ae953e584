package main

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gdmec07150948/NetX/core/actor"
)

const (
	cmdRecord      int32 = 1
	cmdRecordValue int32 = 2
	cmdReport      int32 = 3
)

type report struct {
	Dispatched int64
	OutOfOrder int64
	Overlaps   int64
}

// sequencer checks, for every producer, that messages arrive in the order
// they were submitted. Its state is only touched on the drain goroutine.
type sequencer struct {
	actor.Base

	log   *slog.Logger
	batch int

	next    []int
	active  atomic.Int32
	current report

	// rejected submissions, written by producers
	skipMu  sync.Mutex
	skipped map[int]map[int]struct{}
}

func newSequencer(producers, batch int, log *slog.Logger) *sequencer {
	if batch <= 0 {
		batch = 50_000
	}
	return &sequencer{
		log:     log,
		batch:   batch,
		next:    make([]int, producers),
		skipped: map[int]map[int]struct{}{},
	}
}

func (s *sequencer) ActorOptions() actor.Options { return actor.Options{Name: "sequencer"} }

func (s *sequencer) Commands() []actor.Command {
	return []actor.Command{
		actor.Action2(cmdRecord, s.record).Named("Record"),
		actor.Func2(cmdRecordValue, func(ctx context.Context, p, n int) (int, error) {
			s.record(ctx, p, n)
			return n, nil
		}).Named("RecordValue"),
		actor.Func0(cmdReport, func(context.Context) (report, error) { return s.current, nil }).Named("Report"),
	}
}

func (s *sequencer) skip(producer, n int) {
	s.skipMu.Lock()
	defer s.skipMu.Unlock()
	if s.skipped[producer] == nil {
		s.skipped[producer] = map[int]struct{}{}
	}
	s.skipped[producer][n] = struct{}{}
}

func (s *sequencer) wasSkipped(producer, n int) bool {
	s.skipMu.Lock()
	defer s.skipMu.Unlock()
	_, ok := s.skipped[producer][n]
	return ok
}

func (s *sequencer) record(_ context.Context, producer, n int) {
	if s.active.Add(1) != 1 {
		s.current.Overlaps++
	}
	defer s.active.Add(-1)

	// rejected messages leave gaps
	for s.next[producer] < n && s.wasSkipped(producer, s.next[producer]) {
		s.next[producer]++
	}
	if n != s.next[producer] {
		s.current.OutOfOrder++
	}
	s.next[producer] = n + 1

	s.current.Dispatched++
	if s.current.Dispatched%int64(s.batch) == 0 {
		s.log.Info("progress", slog.Int64("dispatched", s.current.Dispatched), slog.Time("order_time", s.OrderTime()))
	}
}
