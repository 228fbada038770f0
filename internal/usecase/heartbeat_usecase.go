package usecase

import (
	"context"
	"sync"
	"time"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/pkg/logger"
	"pasargamex-chat/pkg/metrics"
)

// PresenceReporter is the part of the backend API that records the local
// user's own status.
type PresenceReporter interface {
	ReportStatus(ctx context.Context, status entity.PresenceStatus) error
	Heartbeat(ctx context.Context) error
}

type presenceReport struct {
	status    entity.PresenceStatus
	heartbeat bool
}

func (r presenceReport) label() string {
	if r.heartbeat {
		return "heartbeat"
	}
	return string(r.status)
}

// HeartbeatUseCase reports the local user's status: online at start, a
// heartbeat every interval, away/online on visibility changes and offline at
// stop. Reports are sent in order by one worker and are never retried.
type HeartbeatUseCase struct {
	api      PresenceReporter
	interval time.Duration
	timeout  time.Duration

	mu     sync.Mutex
	jobs   chan presenceReport
	stop   chan struct{}
	done   chan struct{}
	status entity.PresenceStatus
}

func NewHeartbeatUseCase(api PresenceReporter, interval, timeout time.Duration) *HeartbeatUseCase {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HeartbeatUseCase{
		api:      api,
		interval: interval,
		timeout:  timeout,
		status:   entity.StatusOffline,
	}
}

func (h *HeartbeatUseCase) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.jobs != nil {
		return
	}

	h.jobs = make(chan presenceReport, 16)
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go h.worker(h.jobs, h.done)
	go h.tickLoop(h.stop)

	h.enqueueLocked(presenceReport{status: entity.StatusOnline})
}

// SetVisibility reports away while hidden, and online plus an immediate
// heartbeat when visible again.
func (h *HeartbeatUseCase) SetVisibility(visible bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.jobs == nil {
		return
	}

	if !visible {
		h.enqueueLocked(presenceReport{status: entity.StatusAway})
		return
	}
	h.enqueueLocked(presenceReport{status: entity.StatusOnline})
	h.enqueueLocked(presenceReport{heartbeat: true})
}

// Status is the last status queued for the local user.
func (h *HeartbeatUseCase) Status() entity.PresenceStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Stop cancels the heartbeat timer, reports offline and waits for queued
// reports to finish.
func (h *HeartbeatUseCase) Stop() {
	h.mu.Lock()
	if h.jobs == nil {
		h.mu.Unlock()
		return
	}
	close(h.stop)
	h.enqueueLocked(presenceReport{status: entity.StatusOffline})
	close(h.jobs)
	h.jobs = nil
	done := h.done
	h.mu.Unlock()

	<-done
}

func (h *HeartbeatUseCase) tickLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.mu.Lock()
			if h.jobs != nil {
				h.enqueueLocked(presenceReport{heartbeat: true})
			}
			h.mu.Unlock()
		case <-stop:
			return
		}
	}
}

func (h *HeartbeatUseCase) enqueueLocked(r presenceReport) {
	if !r.heartbeat {
		h.status = r.status
	}
	select {
	case h.jobs <- r:
	default:
		logger.Warn("Presence report queue full, dropping %s", r.label())
		metrics.PresenceReports.WithLabelValues(r.label(), "dropped").Inc()
	}
}

func (h *HeartbeatUseCase) worker(jobs <-chan presenceReport, done chan<- struct{}) {
	defer close(done)

	for r := range jobs {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		var err error
		if r.heartbeat {
			err = h.api.Heartbeat(ctx)
		} else {
			err = h.api.ReportStatus(ctx, r.status)
		}
		cancel()

		metrics.PresenceReports.WithLabelValues(r.label(), metrics.Result(err)).Inc()
		if err != nil {
			logger.Warn("Presence report %s failed: %v", r.label(), err)
		}
	}
}
