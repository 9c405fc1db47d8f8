// Package poll реализует клиентскую синхронизацию: периодический опрос
// бэкенда, детектор роста значений и счётчик непрочитанных.
package poll

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Интервалы опроса по умолчанию.
const (
	DefaultChatInterval   = 3 * time.Second
	DefaultTicketInterval = 5 * time.Second
)

// Config описывает один поток опроса.
type Config struct {
	// Fetch забирает свежий снимок. Обязательное поле.
	Fetch func(ctx context.Context) (interface{}, error)
	// Interval — период тиков. 0 означает DefaultChatInterval.
	Interval time.Duration
	// OnSnapshot получает каждый применённый снимок. Может быть nil.
	OnSnapshot func(snapshot interface{})
	// OnError получает ошибки Fetch; опрос при этом продолжается.
	// nil — ошибки пишутся в лог.
	OnError func(err error)
}

type fetchResult struct {
	seq      uint64
	snapshot interface{}
	err      error
}

// Synchronizer гоняет Fetch по тикеру. Первый запрос уходит сразу при
// старте, не дожидаясь первого тика. Тик, пришедший пока предыдущий
// Fetch ещё в полёте, пропускается. Результаты применяются строго по
// возрастанию номеров: отставший ответ молча отбрасывается.
type Synchronizer struct {
	cfg Config

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	issued  atomic.Uint64
	applied atomic.Uint64
}

func NewSynchronizer(cfg Config) *Synchronizer {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultChatInterval
	}
	return &Synchronizer{cfg: cfg}
}

// Start запускает цикл опроса. Повторный Start без Stop — no-op.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	go func() {
		defer close(done)
		s.loop(ctx)
	}()
}

// Stop останавливает цикл и дожидается его выхода. Результат запроса,
// находившегося в полёте, не применяется.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// AppliedSeq возвращает номер последнего применённого снимка.
func (s *Synchronizer) AppliedSeq() uint64 {
	return s.applied.Load()
}

func (s *Synchronizer) loop(ctx context.Context) {
	results := make(chan fetchResult, 1)
	inFlight := false

	dispatch := func() {
		inFlight = true
		seq := s.issued.Add(1)
		go func() {
			snapshot, err := s.cfg.Fetch(ctx)
			select {
			case results <- fetchResult{seq: seq, snapshot: snapshot, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	dispatch()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if inFlight {
				continue
			}
			dispatch()
		case res := <-results:
			inFlight = false
			if res.err != nil {
				if ctx.Err() != nil {
					return
				}
				s.reportError(res.err)
				continue
			}
			if res.seq <= s.applied.Load() {
				continue
			}
			s.applied.Store(res.seq)
			if s.cfg.OnSnapshot != nil {
				s.cfg.OnSnapshot(res.snapshot)
			}
		}
	}
}

func (s *Synchronizer) reportError(err error) {
	if s.cfg.OnError != nil {
		s.cfg.OnError(err)
		return
	}
	log.Printf("poll: fetch failed: %v", err)
}
