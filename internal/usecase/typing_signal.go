package usecase

import (
	"sync"
	"time"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/internal/infrastructure/ratelimit"
	"pasargamex-chat/pkg/logger"
	"pasargamex-chat/pkg/metrics"
)

// FrameSender writes an outbound realtime frame, reporting whether it went out.
type FrameSender interface {
	Send(frameType string, payload interface{}) bool
}

// Limiter throttles a user's actions.
type Limiter interface {
	Allow(userID, action string) (bool, time.Duration)
}

type typingSignal struct {
	timer *time.Timer
	gen   uint64
}

// TypingSignaler turns local keystrokes into typing frames: typing(true) on
// every keystroke, typing(false) once the quiet interval passes without one.
type TypingSignaler struct {
	mu      sync.Mutex
	sender  FrameSender
	limiter Limiter
	userID  string
	quiet   time.Duration
	active  map[string]*typingSignal
	seq     uint64
}

func NewTypingSignaler(sender FrameSender, limiter Limiter, userID string, quiet time.Duration) *TypingSignaler {
	if quiet <= 0 {
		quiet = time.Second
	}
	return &TypingSignaler{
		sender:  sender,
		limiter: limiter,
		userID:  userID,
		quiet:   quiet,
		active:  make(map[string]*typingSignal),
	}
}

// Keystroke signals local typing in chatID and restarts the quiet timer.
func (s *TypingSignaler) Keystroke(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, ok := s.active[chatID]
	if ok {
		sig.timer.Stop()
	} else {
		sig = &typingSignal{}
		s.active[chatID] = sig
	}

	s.seq++
	gen := s.seq
	sig.gen = gen
	sig.timer = time.AfterFunc(s.quiet, func() { s.quietElapsed(chatID, gen) })

	if s.limiter != nil {
		if allowed, _ := s.limiter.Allow(s.userID, ratelimit.ActionTyping); !allowed {
			metrics.WSFramesDropped.WithLabelValues(metrics.DropRateLimited).Inc()
			return
		}
	}
	s.sender.Send(entity.FrameTyping, entity.TypingFrame{ChatID: chatID, IsTyping: true})
}

func (s *TypingSignaler) quietElapsed(chatID string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, ok := s.active[chatID]
	if !ok || sig.gen != gen {
		return
	}
	delete(s.active, chatID)
	s.sendStopLocked(chatID)
}

// Stop ends local typing in chatID now, emitting typing(false) if a signal
// was in progress.
func (s *TypingSignaler) Stop(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, ok := s.active[chatID]
	if !ok {
		return
	}
	sig.timer.Stop()
	delete(s.active, chatID)
	s.sendStopLocked(chatID)
}

// StopAll ends every typing signal in progress and cancels their timers.
func (s *TypingSignaler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for chatID, sig := range s.active {
		sig.timer.Stop()
		delete(s.active, chatID)
		s.sendStopLocked(chatID)
	}
}

// IsTyping reports whether a local typing signal is in progress for chatID.
func (s *TypingSignaler) IsTyping(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[chatID]
	return ok
}

// typing(false) bypasses the limiter so a counterpart's indicator always clears.
func (s *TypingSignaler) sendStopLocked(chatID string) {
	if !s.sender.Send(entity.FrameTyping, entity.TypingFrame{ChatID: chatID, IsTyping: false}) {
		logger.Debug("typing(false) for chat %s not delivered", chatID)
	}
}
