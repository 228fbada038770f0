package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/internal/domain/repository"
	"pasargamex-chat/internal/infrastructure/ratelimit"
	"pasargamex-chat/internal/infrastructure/websocket"
	"pasargamex-chat/pkg/config"
	apperrors "pasargamex-chat/pkg/errors"
	"pasargamex-chat/pkg/logger"
	"pasargamex-chat/pkg/utils"
)

type SendMessageInput struct {
	ChatID   string             `json:"chat_id" validate:"required"`
	Type     entity.MessageType `json:"type" validate:"required,oneof=text image video"`
	Text     string             `json:"text" validate:"max=4000"`
	MediaURL string             `json:"media_url" validate:"omitempty,url"`
	Caption  string             `json:"caption" validate:"max=1000"`
	ReplyTo  string             `json:"reply_to"`
}

func (in SendMessageInput) content() entity.MessageContent {
	if in.Type.IsMedia() {
		return entity.MediaContent(in.MediaURL, in.Caption)
	}
	return entity.TextContent(in.Text)
}

func validateSendMessageInput(sl validator.StructLevel) {
	in := sl.Current().Interface().(SendMessageInput)
	switch {
	case in.Type == entity.MessageTypeText && strings.TrimSpace(in.Text) == "":
		sl.ReportError(in.Text, "text", "Text", "required", "")
	case in.Type.IsMedia() && in.MediaURL == "":
		sl.ReportError(in.MediaURL, "media_url", "MediaURL", "required", "")
	}
}

// SessionInfo describes a running session.
type SessionInfo struct {
	SessionID     string                `json:"session_id"`
	UserID        string                `json:"user_id"`
	Connected     bool                  `json:"connected"`
	Status        entity.PresenceStatus `json:"status"`
	Subscriptions []string              `json:"subscriptions"`
	StartedAt     time.Time             `json:"started_at"`
}

// ChatSession is one signed-in user's chat core: the realtime connection,
// message timelines, presence and typing state, and the user's own status.
type ChatSession struct {
	userID    string
	sessionID string
	cfg       *config.Config

	api       repository.ChatAPI
	conn      *websocket.Manager
	messages  *MessageStore
	presence  *PresenceTracker
	typing    *TypingTracker
	signals   *TypingSignaler
	heartbeat *HeartbeatUseCase
	limiter   Limiter
	validate  *validator.Validate

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	subscribed  map[string]struct{}
	chats       map[string]*entity.Chat
	readMarkers map[string]entity.MessageReadEvent
	started     bool
	closed      bool
	startedAt   time.Time
	sweepStop   chan struct{}
	sweepDone   chan struct{}
}

func NewChatSession(cfg *config.Config, userID string, api repository.ChatAPI, dialer websocket.Dialer) *ChatSession {
	ctx, cancel := context.WithCancel(context.Background())

	s := &ChatSession{
		userID:      userID,
		sessionID:   uuid.New().String(),
		cfg:         cfg,
		api:         api,
		messages:    NewMessageStore(),
		presence:    NewPresenceTracker(),
		typing:      NewTypingTracker(cfg.TypingExpiry),
		ctx:         ctx,
		cancel:      cancel,
		subscribed:  make(map[string]struct{}),
		chats:       make(map[string]*entity.Chat),
		readMarkers: make(map[string]entity.MessageReadEvent),
	}

	s.validate = utils.NewValidate()
	s.validate.RegisterStructValidation(validateSendMessageInput, SendMessageInput{})

	s.limiter = ratelimit.NewRateLimiter(ratelimit.Limits{
		ratelimit.ActionSendMessage: cfg.SendRatePerMinute,
		ratelimit.ActionTyping:      cfg.TypingRatePerMinute,
		ratelimit.ActionCreateChat:  5,
	})

	policy := websocket.NewReconnectPolicy(cfg.ReconnectStrategy, cfg.ReconnectDelay, cfg.ReconnectMaxDelay)
	s.conn = websocket.NewManager(dialer, cfg.WSBaseURL, cfg.AuthToken, policy, &sessionEvents{s})
	s.conn.OnOpen(s.resubscribe)

	s.signals = NewTypingSignaler(s.conn, s.limiter, userID, cfg.TypingQuietInterval)
	s.heartbeat = NewHeartbeatUseCase(api, cfg.HeartbeatInterval, cfg.RequestTimeout)
	return s
}

// Start reports the user online, seeds presence and the conversation list,
// opens the realtime connection and starts the reconciliation sweep.
func (s *ChatSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.Unavailable("Chat session is closed", nil)
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.startedAt = time.Now()
	s.sweepStop = make(chan struct{})
	s.sweepDone = make(chan struct{})
	s.mu.Unlock()

	s.heartbeat.Start()
	s.seedPresence(ctx)
	if err := s.refreshChats(ctx); err != nil {
		logger.Warn("Start Error: initial chat list for user %s: %v", s.userID, err)
	}

	s.conn.Connect(s.userID)
	go s.sweepLoop(s.sweepStop, s.sweepDone)

	logger.Info("Chat session %s started for user %s", s.sessionID, s.userID)
	return nil
}

// Close stops the sweep, reports offline, ends local typing and closes the
// connection. Every timer the session owns is cancelled.
func (s *ChatSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.started
	s.mu.Unlock()

	s.cancel()
	if started {
		close(s.sweepStop)
		<-s.sweepDone
	}
	s.heartbeat.Stop()
	s.signals.StopAll()
	s.typing.Stop()
	s.conn.Close()

	logger.Info("Chat session %s closed for user %s", s.sessionID, s.userID)
}

func (s *ChatSession) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// SendMessage persists the message through the backend, then mirrors the
// canonical message into the local timeline. Persistence failures are
// returned to the caller, never retried.
func (s *ChatSession) SendMessage(ctx context.Context, in SendMessageInput) (*entity.Message, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if s.isClosed() {
		return nil, apperrors.Unavailable("Chat session is closed", nil)
	}

	if allowed, wait := s.limiter.Allow(s.userID, ratelimit.ActionSendMessage); !allowed {
		return nil, apperrors.TooManyRequests("Too many messages, please slow down", wait)
	}

	s.signals.Stop(in.ChatID)

	msg, err := s.api.SendMessage(ctx, in.ChatID, repository.SendMessageParams{
		Type:    in.Type,
		Content: in.content(),
		ReplyTo: in.ReplyTo,
	})
	if err != nil {
		logger.Error("SendMessage Error: chat %s: %v", in.ChatID, err)
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			err = apperrors.Internal("Failed to send message", err)
		}
		return nil, err
	}
	if msg.SenderID == "" {
		msg.SenderID = s.userID
	}

	// Only subscribed chats keep a local timeline.
	s.ifSubscribed(in.ChatID, func() { s.messages.Append(in.ChatID, msg) })
	s.applyToChat(in.ChatID, msg)
	return msg, nil
}

// SubscribeToChat starts live delivery for chatID and seeds its timeline
// from history. The subscription stands even if the history fetch fails.
func (s *ChatSession) SubscribeToChat(ctx context.Context, chatID string) error {
	if chatID == "" {
		return apperrors.BadRequest("chat id is required", nil)
	}
	if s.isClosed() {
		return apperrors.Unavailable("Chat session is closed", nil)
	}

	s.mu.Lock()
	s.subscribed[chatID] = struct{}{}
	s.mu.Unlock()

	s.conn.Send(entity.FrameSubscribeChat, entity.SubscribeFrame{ChatID: chatID})

	history, err := s.api.GetMessages(ctx, chatID, s.cfg.HistoryLimit, 0)
	if err != nil {
		logger.Warn("SubscribeToChat Error: history for chat %s: %v", chatID, err)
		return err
	}
	// A no-op when unsubscribed while the fetch was in flight.
	s.ifSubscribed(chatID, func() { s.messages.Initialize(chatID, history) })
	return nil
}

// UnsubscribeFromChat ends live delivery for chatID and releases its local
// state. Other conversations are unaffected.
func (s *ChatSession) UnsubscribeFromChat(chatID string) {
	s.mu.Lock()
	_, was := s.subscribed[chatID]
	delete(s.subscribed, chatID)
	s.mu.Unlock()

	s.signals.Stop(chatID)
	s.typing.ClearChat(chatID)
	s.messages.Forget(chatID)
	if was {
		s.conn.Send(entity.FrameUnsubscribeChat, entity.SubscribeFrame{ChatID: chatID})
	}
}

// ifSubscribed runs fn only while chatID is subscribed. fn must not take
// s.mu; the read lock orders it before a concurrent UnsubscribeFromChat's
// cleanup.
func (s *ChatSession) ifSubscribed(chatID string, fn func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.subscribed[chatID]; !ok {
		return false
	}
	fn()
	return true
}

func (s *ChatSession) IsSubscribed(chatID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subscribed[chatID]
	return ok
}

func (s *ChatSession) Subscriptions() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.subscribed))
	for id := range s.subscribed {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// resubscribe runs on every connection open; the server forgets
// subscriptions along with the socket.
func (s *ChatSession) resubscribe() {
	for _, chatID := range s.Subscriptions() {
		s.conn.Send(entity.FrameSubscribeChat, entity.SubscribeFrame{ChatID: chatID})
	}
}

func (s *ChatSession) Keystroke(chatID string) {
	s.signals.Keystroke(chatID)
}

func (s *ChatSession) StopTyping(chatID string) {
	s.signals.Stop(chatID)
}

// StartChatFromProduct opens (or reuses) the conversation with a product's
// seller.
func (s *ChatSession) StartChatFromProduct(ctx context.Context, sellerID, productID, initialMessage string) (*entity.Chat, error) {
	if sellerID == "" || productID == "" {
		return nil, apperrors.BadRequest("seller id and product id are required", nil)
	}
	if sellerID == s.userID {
		return nil, apperrors.BadRequest("Cannot start a chat with yourself", nil)
	}
	if allowed, wait := s.limiter.Allow(s.userID, ratelimit.ActionCreateChat); !allowed {
		return nil, apperrors.TooManyRequests("Too many new chats, please wait", wait)
	}

	chat, err := s.api.CreateChat(ctx, repository.CreateChatParams{
		RecipientID:    sellerID,
		ProductID:      productID,
		InitialMessage: initialMessage,
	})
	if err != nil {
		logger.Error("StartChatFromProduct Error: product %s: %v", productID, err)
		return nil, err
	}

	s.mu.Lock()
	s.chats[chat.ID] = chat.Clone()
	s.mu.Unlock()
	return chat, nil
}

// MarkChatAsRead persists the read through the backend and clears the local
// unread counter.
func (s *ChatSession) MarkChatAsRead(ctx context.Context, chatID string) error {
	if err := s.api.MarkChatAsRead(ctx, chatID); err != nil {
		logger.Warn("MarkChatAsRead Error: chat %s: %v", chatID, err)
		return err
	}

	s.mu.Lock()
	if chat, ok := s.chats[chatID]; ok {
		if chat.UnreadCount == nil {
			chat.UnreadCount = make(map[string]int)
		}
		chat.UnreadCount[s.userID] = 0
	}
	s.mu.Unlock()
	return nil
}

func (s *ChatSession) SetVisibility(visible bool) {
	s.heartbeat.SetVisibility(visible)
}

func (s *ChatSession) Messages(chatID string) []entity.Message {
	return s.messages.Get(chatID)
}

func (s *ChatSession) IsOnline(userID string) bool {
	return s.presence.IsOnline(userID)
}

func (s *ChatSession) OnlineUsers() []string {
	return s.presence.Online()
}

func (s *ChatSession) TypingUsers(chatID string) []string {
	return s.typing.Typing(chatID)
}

func (s *ChatSession) IsConnected() bool {
	return s.conn.IsConnected()
}

func (s *ChatSession) UserID() string {
	return s.userID
}

// Conversations returns cached summaries, most recently active first.
func (s *ChatSession) Conversations() []*entity.Chat {
	s.mu.RLock()
	out := make([]*entity.Chat, 0, len(s.chats))
	for _, chat := range s.chats {
		out = append(out, chat.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

func (s *ChatSession) Conversation(chatID string) (*entity.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return nil, false
	}
	return chat.Clone(), true
}

// ReadMarker returns the latest read receipt seen for chatID.
func (s *ChatSession) ReadMarker(chatID string) (entity.MessageReadEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evt, ok := s.readMarkers[chatID]
	return evt, ok
}

func (s *ChatSession) Info() SessionInfo {
	s.mu.RLock()
	startedAt := s.startedAt
	s.mu.RUnlock()

	return SessionInfo{
		SessionID:     s.sessionID,
		UserID:        s.userID,
		Connected:     s.conn.IsConnected(),
		Status:        s.heartbeat.Status(),
		Subscriptions: s.Subscriptions(),
		StartedAt:     startedAt,
	}
}

func (s *ChatSession) seedPresence(ctx context.Context) {
	users, err := s.api.ListOnlineUsers(ctx)
	if err != nil {
		logger.Warn("seedPresence Error: user %s: %v", s.userID, err)
		return
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.UserID != s.userID {
			ids = append(ids, u.UserID)
		}
	}
	s.presence.Seed(ids)
}

// applyToChat moves a conversation summary forward for msg. Messages from
// the counterpart count as unread for the local user.
func (s *ChatSession) applyToChat(chatID string, msg *entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[chatID]
	if !ok {
		return
	}

	last := *msg
	chat.LastMessage = &last
	if !msg.CreatedAt.IsZero() {
		chat.LastActivity = msg.CreatedAt
	} else {
		chat.LastActivity = time.Now().UTC()
	}

	if msg.SenderID != s.userID {
		if chat.UnreadCount == nil {
			chat.UnreadCount = make(map[string]int)
		}
		chat.UnreadCount[s.userID]++
	}
}
