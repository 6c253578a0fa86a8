package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentrobo/internal/chatbot"
	"rentrobo/internal/logger"
	"rentrobo/internal/metrics"
	"rentrobo/internal/model"
	"rentrobo/internal/testutil"
)

type fakeSubmissionStore struct {
	mu    sync.Mutex
	saved map[string]model.FinalPayload
	err   error
}

func (f *fakeSubmissionStore) SaveSubmission(_ context.Context, sessionID string, payload model.FinalPayload) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.saved == nil {
		f.saved = map[string]model.FinalPayload{}
	}
	f.saved[sessionID] = payload
	return int64(len(f.saved)), nil
}

type fakeRecommender struct {
	mu    sync.Mutex
	calls int
	recs  []model.Recommendation
	err   error
}

func (f *fakeRecommender) Recommend(_ context.Context, _ model.FinalPayload) ([]model.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.recs, f.err
}

type chatFixture struct {
	svc     *ChatService
	clock   *testutil.ManualScheduler
	now     time.Time
	store   *fakeSubmissionStore
	rec     *fakeRecommender
	metrics *metrics.Metrics
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		clock:   testutil.NewManualScheduler(),
		now:     time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
		store:   &fakeSubmissionStore{},
		rec:     &fakeRecommender{recs: []model.Recommendation{{Listing: model.Listing{ID: 5}, Similarity: 0.8}}},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.svc = NewChatService(ChatOptions{
		IdleTTL:             30 * time.Minute,
		RecommendOnComplete: true,
		Scheduler:           f.clock,
		Now:                 func() time.Time { return f.now },
	}, f.store, f.rec, f.metrics, logger.Discard())
	t.Cleanup(func() { _ = f.svc.Shutdown(context.Background()) })
	return f
}

func (f *chatFixture) send(t *testing.T, id string, cmd chatbot.Command) {
	t.Helper()
	ok, err := f.svc.Command(id, cmd)
	require.NoError(t, err)
	require.True(t, ok, "command %s rejected", cmd.Type)
}

func (f *chatFixture) toRanking(t *testing.T, id string) {
	t.Helper()
	f.send(t, id, chatbot.Command{Type: chatbot.CommandOpen})
	for _, text := range []string{"hi", "Boston", "1450"} {
		f.send(t, id, chatbot.Command{Type: chatbot.CommandText, Text: text})
		f.clock.Advance(chatbot.DefaultTypingDelay)
	}
	for _, option := range []string{"2 bed", "1 bath"} {
		f.send(t, id, chatbot.Command{Type: chatbot.CommandChoose, Option: option})
		f.clock.Advance(chatbot.DefaultTypingDelay)
	}
	f.send(t, id, chatbot.Command{Type: chatbot.CommandChoose, Option: "BC"})
	f.clock.Advance(chatbot.DefaultInterstitialDelay + chatbot.DefaultTypingDelay)
}

func (f *chatFixture) submit(t *testing.T, id string) {
	t.Helper()
	f.send(t, id, chatbot.Command{Type: chatbot.CommandRank, Aspect: chatbot.AspectLowerRent, Rank: chatbot.RankHigh})
	f.send(t, id, chatbot.Command{Type: chatbot.CommandRank, Aspect: chatbot.AspectCommute, Rank: chatbot.RankMedium})
	f.send(t, id, chatbot.Command{Type: chatbot.CommandRank, Aspect: chatbot.AspectNeighbourhood, Rank: chatbot.RankLow})
	f.send(t, id, chatbot.Command{Type: chatbot.CommandSubmit})
	f.clock.Advance(chatbot.DefaultCloseDelay)
	f.svc.Wait()
}

func drain(ch <-chan StreamEvent) []StreamEvent {
	var out []StreamEvent
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestChatService_CreateAndCommand(t *testing.T) {
	f := newChatFixture(t)

	view := f.svc.Create()
	require.NotEmpty(t, view.SessionID)
	assert.False(t, view.State.Open)
	assert.Empty(t, view.State.Messages)
	assert.Equal(t, 1, f.svc.Len())

	f.send(t, view.SessionID, chatbot.Command{Type: chatbot.CommandOpen})
	f.send(t, view.SessionID, chatbot.Command{Type: chatbot.CommandText, Text: "hello"})

	ok, err := f.svc.Command(view.SessionID, chatbot.Command{Type: chatbot.CommandText, Text: "again"})
	require.NoError(t, err)
	assert.False(t, ok, "input during the typing delay is rejected")
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.CommandsRejected.WithLabelValues("text")))

	f.clock.Advance(chatbot.DefaultTypingDelay)
	got, err := f.svc.Get(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, chatbot.StepLocation, got.State.Step)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ConversationsStarted))
}

func TestChatService_UnknownSession(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.svc.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Command("missing", chatbot.Command{Type: chatbot.CommandOpen})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = f.svc.Subscribe("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Recommendations("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.Delete("missing"), ErrSessionNotFound)
}

func TestChatService_CompletionPersistsAndRecommends(t *testing.T) {
	f := newChatFixture(t)
	id := f.svc.Create().SessionID
	f.toRanking(t, id)

	events, cancel, err := f.svc.Subscribe(id)
	require.NoError(t, err)
	defer cancel()

	f.submit(t, id)

	require.Contains(t, f.store.saved, id)
	payload := f.store.saved[id]
	assert.Equal(t, model.CampusBostonCollege, payload.CurrentLivingConditions.PreferredNeighbourhood)
	assert.Equal(t, 2, *payload.PreferenceOfFutureHouse.Location)

	recs, err := f.svc.Recommendations(id)
	require.NoError(t, err)
	assert.Equal(t, RecommendationsReady, recs.Status)
	assert.Equal(t, int64(1), recs.SubmissionID)
	require.Len(t, recs.Recommendations, 1)
	assert.Equal(t, int64(5), recs.Recommendations[0].ID)

	var types []string
	for _, e := range drain(events) {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, string(chatbot.EventSubmitted))
	assert.Contains(t, types, string(chatbot.EventCompleted))
	assert.Equal(t, StreamEventRecommendations, types[len(types)-1])
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ConversationsCompleted))
}

func TestChatService_RecommendationFailure(t *testing.T) {
	f := newChatFixture(t)
	f.rec.err = errors.New("backend down")
	f.store.err = errors.New("db down")

	id := f.svc.Create().SessionID
	f.toRanking(t, id)
	f.submit(t, id)

	recs, err := f.svc.Recommendations(id)
	require.NoError(t, err)
	assert.Equal(t, RecommendationsFailed, recs.Status)
	assert.Zero(t, recs.SubmissionID)
	assert.Empty(t, recs.Recommendations)

	got, err := f.svc.Get(id)
	require.NoError(t, err)
	assert.True(t, got.State.Complete, "a failed follow-up does not undo completion")
}

func TestChatService_AbandonedMetric(t *testing.T) {
	f := newChatFixture(t)
	id := f.svc.Create().SessionID

	f.send(t, id, chatbot.Command{Type: chatbot.CommandOpen})
	f.send(t, id, chatbot.Command{Type: chatbot.CommandText, Text: "hi"})
	f.send(t, id, chatbot.Command{Type: chatbot.CommandClose})

	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ConversationsAbandoned))
	assert.Zero(t, f.clock.Pending())
	assert.Equal(t, 0, f.rec.calls)
}

func TestChatService_Sweep(t *testing.T) {
	f := newChatFixture(t)
	idle := f.svc.Create().SessionID
	watched := f.svc.Create().SessionID
	active := f.svc.Create().SessionID

	events, cancel, err := f.svc.Subscribe(watched)
	require.NoError(t, err)
	defer cancel()

	f.now = f.now.Add(20 * time.Minute)
	_, err = f.svc.Get(active)
	require.NoError(t, err)

	f.now = f.now.Add(15 * time.Minute)
	assert.Equal(t, 1, f.svc.Sweep())

	_, err = f.svc.Get(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Get(watched)
	assert.NoError(t, err, "a session with a listener is kept")
	_, err = f.svc.Get(active)
	assert.NoError(t, err)
	assert.Equal(t, 2.0, promtest.ToFloat64(f.metrics.ActiveSessions))
	assert.Empty(t, drain(events))
}

func TestChatService_RunSweeperNonPositiveInterval(t *testing.T) {
	f := newChatFixture(t)
	f.svc.Create()

	done := make(chan struct{})
	go func() {
		f.svc.RunSweeper(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper with a zero interval should return immediately")
	}
	assert.Equal(t, 1, f.svc.Len())
}

func TestChatService_NilLogger(t *testing.T) {
	svc := NewChatService(ChatOptions{Scheduler: testutil.NewManualScheduler()}, nil, nil, nil, nil)
	defer func() { _ = svc.Shutdown(context.Background()) }()

	id := svc.Create().SessionID
	ok, err := svc.Command(id, chatbot.Command{Type: chatbot.CommandOpen})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChatService_DeleteClosesStream(t *testing.T) {
	f := newChatFixture(t)
	id := f.svc.Create().SessionID
	f.send(t, id, chatbot.Command{Type: chatbot.CommandOpen})
	f.send(t, id, chatbot.Command{Type: chatbot.CommandText, Text: "hi"})

	events, cancel, err := f.svc.Subscribe(id)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, f.svc.Delete(id))
	assert.Zero(t, f.clock.Pending(), "pending delays are cancelled")

	_, open := <-events
	assert.False(t, open)
	assert.Equal(t, 0, f.svc.Len())
}

func TestChatService_Shutdown(t *testing.T) {
	f := newChatFixture(t)
	for i := 0; i < 3; i++ {
		id := f.svc.Create().SessionID
		f.send(t, id, chatbot.Command{Type: chatbot.CommandOpen})
		f.send(t, id, chatbot.Command{Type: chatbot.CommandText, Text: "hi"})
	}

	require.NoError(t, f.svc.Shutdown(context.Background()))
	assert.Equal(t, 0, f.svc.Len())
	assert.Zero(t, f.clock.Pending())
}
