package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentrobo/internal/chatbot"
	"rentrobo/internal/metrics"
	"rentrobo/internal/model"
)

// ErrSessionNotFound is returned for an unknown or expired session id.
var ErrSessionNotFound = errors.New("chat session not found")

// Recommendation states of a session
const (
	RecommendationsNone    = "none"
	RecommendationsPending = "pending"
	RecommendationsReady   = "ready"
	RecommendationsFailed  = "failed"
)

// StreamEventRecommendations is the stream event carrying a RecommendationsView.
const StreamEventRecommendations = "recommendations"

const subscriberBuffer = 64

// SubmissionStore persists completed conversations
type SubmissionStore interface {
	SaveSubmission(ctx context.Context, sessionID string, payload model.FinalPayload) (int64, error)
}

// ChatOptions configures a ChatService
type ChatOptions struct {
	TypingDelay         time.Duration
	InterstitialDelay   time.Duration
	CloseDelay          time.Duration
	IdleTTL             time.Duration
	RecommendOnComplete bool
	Scheduler           chatbot.Scheduler // nil uses real timers
	Now                 func() time.Time
}

// StreamEvent is one message on a session's event stream
type StreamEvent struct {
	Type string
	Data any
}

// RecommendationsView is the recommendation state of a session
type RecommendationsView struct {
	Status          string                 `json:"status"`
	SubmissionID    int64                  `json:"submission_id,omitempty"`
	Recommendations []model.Recommendation `json:"recommendations"`
}

// SessionView is the externally visible state of a session
type SessionView struct {
	SessionID string           `json:"session_id"`
	State     chatbot.Snapshot `json:"state"`
}

type chatSession struct {
	id   string
	conv *chatbot.Conversation

	// mu guards the fields below. It may be taken while the conversation
	// lock is held, never the other way round.
	mu          sync.Mutex
	lastSeen    time.Time
	subscribers map[int]chan StreamEvent
	nextSub     int
	closed      bool
	recs        RecommendationsView
}

// ChatService owns the live chat conversations, keyed by session id
type ChatService struct {
	opts        ChatOptions
	store       SubmissionStore
	recommender Recommender
	metrics     *metrics.Metrics
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*chatSession

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChatService creates a chat service. store, recommender, m and logger
// may be nil.
func NewChatService(opts ChatOptions, store SubmissionStore, recommender Recommender, m *metrics.Metrics, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatService{
		opts:        opts,
		store:       store,
		recommender: recommender,
		metrics:     m,
		logger:      logger,
		sessions:    make(map[string]*chatSession),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Create starts a new session with a closed chat window
func (s *ChatService) Create() SessionView {
	sess := &chatSession{
		id:          uuid.NewString(),
		lastSeen:    s.opts.Now(),
		subscribers: make(map[int]chan StreamEvent),
		recs:        RecommendationsView{Status: RecommendationsNone, Recommendations: []model.Recommendation{}},
	}
	sess.conv = chatbot.New(chatbot.Options{
		TypingDelay:       s.opts.TypingDelay,
		InterstitialDelay: s.opts.InterstitialDelay,
		CloseDelay:        s.opts.CloseDelay,
		Scheduler:         s.opts.Scheduler,
		Logger:            s.logger.With("session_id", sess.id),
		OnEvent:           func(e chatbot.Event) { s.onEvent(sess, e) },
		OnComplete:        func(p model.FinalPayload) { s.onComplete(sess, p) },
	})

	s.mu.Lock()
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(n)
	s.logger.Info("chat session created", "session_id", sess.id)
	return SessionView{SessionID: sess.id, State: sess.conv.Snapshot()}
}

// Get returns the current state of a session
func (s *ChatService) Get(id string) (SessionView, error) {
	sess, err := s.touch(id)
	if err != nil {
		return SessionView{}, err
	}
	return SessionView{SessionID: id, State: sess.conv.Snapshot()}, nil
}

// Command applies cmd to the session's conversation and reports whether it
// was accepted.
func (s *ChatService) Command(id string, cmd chatbot.Command) (bool, error) {
	sess, err := s.touch(id)
	if err != nil {
		return false, err
	}
	accepted := sess.conv.Handle(cmd)
	if !accepted {
		s.metrics.Rejected(string(cmd.Type))
		s.logger.Debug("chat command rejected", "session_id", id, "command", cmd.Type)
	}
	return accepted, nil
}

// Subscribe returns the session's event stream. The channel is closed when
// the session ends; call cancel to stop listening earlier.
func (s *ChatService) Subscribe(id string) (<-chan StreamEvent, func(), error) {
	sess, err := s.touch(id)
	if err != nil {
		return nil, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, nil, ErrSessionNotFound
	}
	ch := make(chan StreamEvent, subscriberBuffer)
	key := sess.nextSub
	sess.nextSub++
	sess.subscribers[key] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			sess.mu.Lock()
			defer sess.mu.Unlock()
			if c, ok := sess.subscribers[key]; ok {
				delete(sess.subscribers, key)
				close(c)
			}
			sess.lastSeen = s.opts.Now()
		})
	}
	return ch, cancel, nil
}

// Recommendations returns the recommendation state of a session
func (s *ChatService) Recommendations(id string) (RecommendationsView, error) {
	sess, err := s.touch(id)
	if err != nil {
		return RecommendationsView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.recs, nil
}

// Delete ends a session, cancelling its pending delays
func (s *ChatService) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.metrics.SetActiveSessions(n)
	s.end(sess)
	s.logger.Info("chat session deleted", "session_id", id)
	return nil
}

// Sweep ends every session idle for longer than the idle TTL that has no
// listeners. It returns the number of sessions ended.
func (s *ChatService) Sweep() int {
	if s.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.opts.Now().Add(-s.opts.IdleTTL)

	s.mu.Lock()
	var expired []*chatSession
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := len(sess.subscribers) == 0 && sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		s.end(sess)
	}
	if len(expired) > 0 {
		s.metrics.SetActiveSessions(n)
		s.logger.Info("expired idle chat sessions", "count", len(expired))
	}
	return len(expired)
}

// RunSweeper sweeps idle sessions every interval until ctx is done. A
// non-positive interval disables sweeping.
func (s *ChatService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Warn("idle session sweeper disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len returns the number of live sessions
func (s *ChatService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Wait blocks until background completion work has finished
func (s *ChatService) Wait() {
	s.wg.Wait()
}

// Shutdown ends every session and waits for background work, giving up
// when ctx is done.
func (s *ChatService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*chatSession)
	s.mu.Unlock()

	for _, sess := range sessions {
		s.end(sess)
	}
	s.metrics.SetActiveSessions(0)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

func (s *ChatService) touch(id string) (*chatSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.lastSeen = s.opts.Now()
	sess.mu.Unlock()
	return sess, nil
}

// end disposes the conversation and closes every subscriber
func (s *ChatService) end(sess *chatSession) {
	sess.conv.Dispose()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	for key, ch := range sess.subscribers {
		close(ch)
		delete(sess.subscribers, key)
	}
}

// onEvent runs under the conversation lock
func (s *ChatService) onEvent(sess *chatSession, e chatbot.Event) {
	switch e.Type {
	case chatbot.EventStarted:
		s.metrics.Started()
	case chatbot.EventCompleted:
		s.metrics.Completed()
	case chatbot.EventClosed:
		if e.Abandoned {
			s.metrics.Abandoned()
			s.logger.Info("chat conversation abandoned", "session_id", sess.id, "step", e.Step)
		}
	}
	sess.publish(StreamEvent{Type: string(e.Type), Data: e})
}

// onComplete runs under the conversation lock; the slow work moves to a
// goroutine.
func (s *ChatService) onComplete(sess *chatSession, payload model.FinalPayload) {
	s.logger.Info("chat conversation completed", "session_id", sess.id,
		"neighbourhood", payload.CurrentLivingConditions.PreferredNeighbourhood)

	recommend := s.recommender != nil && s.opts.RecommendOnComplete
	if s.store == nil && !recommend {
		return
	}

	sess.mu.Lock()
	status := RecommendationsNone
	if recommend {
		status = RecommendationsPending
	}
	sess.recs = RecommendationsView{Status: status, Recommendations: []model.Recommendation{}}
	sess.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.processCompletion(sess, payload, recommend)
	}()
}

func (s *ChatService) processCompletion(sess *chatSession, payload model.FinalPayload, recommend bool) {
	ctx := s.ctx
	var submissionID int64

	if s.store != nil {
		id, err := s.store.SaveSubmission(ctx, sess.id, payload)
		if err != nil {
			s.logger.Error("failed to save chat submission", "session_id", sess.id, "error", err)
		} else {
			submissionID = id
		}
	}
	if !recommend {
		sess.mu.Lock()
		sess.recs.SubmissionID = submissionID
		sess.mu.Unlock()
		return
	}

	view := RecommendationsView{
		Status:          RecommendationsReady,
		SubmissionID:    submissionID,
		Recommendations: []model.Recommendation{},
	}
	recs, err := s.recommender.Recommend(ctx, payload)
	if err != nil {
		s.logger.Error("failed to fetch recommendations", "session_id", sess.id, "error", err)
		view.Status = RecommendationsFailed
	} else {
		view.Recommendations = recs
	}

	sess.mu.Lock()
	sess.recs = view
	sess.mu.Unlock()
	sess.publish(StreamEvent{Type: StreamEventRecommendations, Data: view})
}

// publish delivers e to every subscriber without blocking. A subscriber
// whose buffer is full misses the event.
func (sess *chatSession) publish(e StreamEvent) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	for _, ch := range sess.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}
