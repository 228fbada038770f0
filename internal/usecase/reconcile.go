package usecase

import (
	"context"
	"time"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/pkg/logger"
)

// Sweep re-pulls the conversation list and re-seeds every subscribed
// timeline from history. It backs up push delivery, which may lose events.
func (s *ChatSession) Sweep(ctx context.Context) error {
	var firstErr error

	if err := s.refreshChats(ctx); err != nil {
		logger.Warn("Sweep Error: chat list for user %s: %v", s.userID, err)
		firstErr = err
	}

	for _, chatID := range s.Subscriptions() {
		history, err := s.api.GetMessages(ctx, chatID, s.cfg.HistoryLimit, 0)
		if err != nil {
			logger.Warn("Sweep Error: history for chat %s: %v", chatID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.ifSubscribed(chatID, func() { s.messages.Initialize(chatID, history) })
	}
	return firstErr
}

func (s *ChatSession) refreshChats(ctx context.Context) error {
	chats, err := s.api.ListChats(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = make(map[string]*entity.Chat, len(chats))
	for _, chat := range chats {
		if chat == nil || chat.ID == "" {
			continue
		}
		s.chats[chat.ID] = chat.Clone()
	}
	return nil
}

func (s *ChatSession) sweepLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(s.ctx, timeout)
			s.Sweep(ctx)
			cancel()
		case <-stop:
			return
		}
	}
}
