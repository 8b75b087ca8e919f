package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newswatch/pkg/domain"
	"github.com/umputun/newswatch/pkg/scheduler/mocks"
)

// criterionStore is a task store mock keeping criterion updates
func criterionStore(task domain.Task) *mocks.TaskStoreMock {
	var mu sync.Mutex
	return &mocks.TaskStoreMock{
		GetTaskFunc: func(_ context.Context, id int64) (*domain.Task, error) {
			mu.Lock()
			defer mu.Unlock()
			if id != task.ID {
				return nil, domain.ErrTaskNotFound
			}
			cp := task
			return &cp, nil
		},
		UpdateCriterionFunc: func(_ context.Context, id int64, criterion string) error {
			mu.Lock()
			defer mu.Unlock()
			if id != task.ID {
				return domain.ErrTaskNotFound
			}
			task.Criterion = criterion
			return nil
		},
	}
}

// appendingRefiner is a deterministic refinement stub appending the feedback as a constraint
func appendingRefiner() *mocks.RefinerMock {
	return &mocks.RefinerMock{
		RefineFunc: func(_ context.Context, criterion, feedback string) (string, error) {
			return criterion + "; constraint: " + feedback, nil
		},
	}
}

func TestFeedbackRefiner_Handle(t *testing.T) {
	task := domain.Task{ID: 7, OwnerContact: "user@example.com", Description: "python news", Criterion: "about Python",
		Status: domain.StatusActive}
	store := criterionStore(task)
	pub := &recordingPublisher{}
	r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: appendingRefiner(), Publisher: pub, Retry: fastRetry})

	ev := domain.FeedbackEvent{TaskID: 7, FeedbackText: "too broad, only show tutorials", CriterionAtTimeOf: "about Python"}
	require.NoError(t, r.Handle(context.Background(), ev))

	require.Len(t, store.UpdateCriterionCalls(), 1)
	updated := store.UpdateCriterionCalls()[0].Criterion
	assert.Contains(t, updated, "about Python")
	assert.Contains(t, updated, "only show tutorials")

	require.Len(t, pub.notifications(), 1)
	n := pub.notifications()[0]
	assert.Equal(t, domain.KindFeedbackAck, n.Kind)
	assert.Equal(t, "[Task #7] Feedback received", n.Subject)
	assert.Equal(t, domain.FeedbackNotificationID(ev), n.ID)
	assert.Equal(t, "user@example.com", n.RoutingKey)
	assert.Contains(t, n.Body, "python news")
	assert.Contains(t, n.Body, "criteria have been updated")
	require.NoError(t, n.Validate())
}

func TestFeedbackRefiner_UnchangedCriterionConfirmation(t *testing.T) {
	task := domain.Task{ID: 7, OwnerContact: "user@example.com", Criterion: "about Python", Status: domain.StatusActive}
	store := criterionStore(task)
	pub := &recordingPublisher{}
	refiner := &mocks.RefinerMock{
		RefineFunc: func(_ context.Context, criterion, _ string) (string, error) { return criterion, nil },
	}
	r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: refiner, Publisher: pub, Retry: fastRetry})

	ev := domain.FeedbackEvent{TaskID: 7, FeedbackText: "looks good", CriterionAtTimeOf: "about Python"}
	require.NoError(t, r.Handle(context.Background(), ev))

	assert.Empty(t, store.UpdateCriterionCalls())
	require.Len(t, pub.notifications(), 1)
	body := pub.notifications()[0].Body
	assert.Contains(t, body, "did not change the filtering criteria")
	assert.NotContains(t, body, "have been updated")
}

func TestFeedbackRefiner_Idempotent(t *testing.T) {
	task := domain.Task{ID: 7, OwnerContact: "user@example.com", Criterion: "about Python", Status: domain.StatusActive}
	store := criterionStore(task)
	pub := &recordingPublisher{}
	r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: appendingRefiner(), Publisher: pub, Retry: fastRetry})

	ev := domain.FeedbackEvent{TaskID: 7, FeedbackText: "only tutorials", CriterionAtTimeOf: "about Python"}
	require.NoError(t, r.Handle(context.Background(), ev))
	once, err := store.GetTask(context.Background(), 7)
	require.NoError(t, err)

	require.NoError(t, r.Handle(context.Background(), ev)) // redelivered
	twice, err := store.GetTask(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, once.Criterion, twice.Criterion)
	assert.Equal(t, 1, strings.Count(twice.Criterion, "only tutorials"))
	assert.Len(t, store.UpdateCriterionCalls(), 1, "unchanged criterion is not rewritten")
	ids := map[string]bool{}
	for _, n := range pub.notifications() {
		ids[n.ID] = true
	}
	assert.Len(t, ids, 1, "confirmation of a redelivered event keeps its id")
}

func TestFeedbackRefiner_BaselineFromEvent(t *testing.T) {
	// another feedback already landed, the event still refines from its own baseline
	task := domain.Task{ID: 3, OwnerContact: "u", Criterion: "about Go; constraint: no generics", Status: domain.StatusActive}
	store := criterionStore(task)
	refiner := appendingRefiner()
	r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: refiner, Publisher: &recordingPublisher{}, Retry: fastRetry,
		SkipConfirmation: true})

	require.NoError(t, r.Handle(context.Background(), domain.FeedbackEvent{TaskID: 3, FeedbackText: "more tutorials",
		CriterionAtTimeOf: "about Go"}))
	require.Len(t, refiner.RefineCalls(), 1)
	assert.Equal(t, "about Go", refiner.RefineCalls()[0].Criterion)

	t.Run("empty baseline falls back to the stored criterion", func(t *testing.T) {
		require.NoError(t, r.Handle(context.Background(), domain.FeedbackEvent{TaskID: 3, FeedbackText: "less news"}))
		require.Len(t, refiner.RefineCalls(), 2)
		assert.Equal(t, "about Go; constraint: more tutorials", refiner.RefineCalls()[1].Criterion)
	})
}

func TestFeedbackRefiner_RejectsUnusableCriterion(t *testing.T) {
	tests := []struct {
		name    string
		refined string
	}{
		{name: "empty", refined: "   "},
		{name: "conversational", refined: "Sure! Here is the updated criterion you asked for."},
		{name: "question", refined: "Do you want only tutorials?"},
		{name: "assistant disclaimer", refined: "Content about Python, but as an AI I can't judge taste"},
		{name: "too long", refined: strings.Repeat("x", 2001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := criterionStore(domain.Task{ID: 1, OwnerContact: "u", Criterion: "about Python", Status: domain.StatusActive})
			refiner := &mocks.RefinerMock{
				RefineFunc: func(context.Context, string, string) (string, error) { return tt.refined, nil },
			}
			pub := &recordingPublisher{}
			r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: refiner, Publisher: pub, Retry: fastRetry})

			require.NoError(t, r.Handle(context.Background(), domain.FeedbackEvent{TaskID: 1, FeedbackText: "x",
				CriterionAtTimeOf: "about Python"}))
			assert.Empty(t, store.UpdateCriterionCalls())
			assert.Empty(t, pub.notifications())
			task, err := store.GetTask(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, "about Python", task.Criterion)
		})
	}
}

func TestFeedbackRefiner_RetryExhaustion(t *testing.T) {
	store := criterionStore(domain.Task{ID: 1, OwnerContact: "u", Criterion: "about Python", Status: domain.StatusActive})
	refiner := &mocks.RefinerMock{
		RefineFunc: func(context.Context, string, string) (string, error) {
			return "", fmt.Errorf("timeout: %w", domain.ErrCapabilityUnavailable)
		},
	}
	r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: refiner, Publisher: &recordingPublisher{}, Retry: fastRetry})
	require.NoError(t, r.Handle(context.Background(), domain.FeedbackEvent{TaskID: 1, FeedbackText: "x"}))
	assert.Len(t, refiner.RefineCalls(), 3)
	assert.Empty(t, store.UpdateCriterionCalls())
}

func TestFeedbackRefiner_Drops(t *testing.T) {
	deleted := domain.Task{ID: 2, OwnerContact: "u", Criterion: "c", Status: domain.StatusDeleted}
	tests := []struct {
		name string
		ev   domain.FeedbackEvent
	}{
		{name: "unknown task", ev: domain.FeedbackEvent{TaskID: 99, FeedbackText: "x"}},
		{name: "deleted task", ev: domain.FeedbackEvent{TaskID: 2, FeedbackText: "x"}},
		{name: "blank feedback", ev: domain.FeedbackEvent{TaskID: 2, FeedbackText: "  "}},
		{name: "no task id", ev: domain.FeedbackEvent{FeedbackText: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refiner := &mocks.RefinerMock{}
			r := NewFeedbackRefiner(RefinerParams{Tasks: criterionStore(deleted), Refiner: refiner,
				Publisher: &recordingPublisher{}, Retry: fastRetry})
			require.NoError(t, r.Handle(context.Background(), tt.ev))
			assert.Empty(t, refiner.RefineCalls())
		})
	}
}

func TestFeedbackRefiner_StoreErrors(t *testing.T) {
	t.Run("read failure redelivers", func(t *testing.T) {
		store := &mocks.TaskStoreMock{
			GetTaskFunc: func(context.Context, int64) (*domain.Task, error) { return nil, domain.ErrStoreUnavailable },
		}
		r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: appendingRefiner(), Publisher: &recordingPublisher{},
			Retry: fastRetry})
		err := r.Handle(context.Background(), domain.FeedbackEvent{TaskID: 1, FeedbackText: "x"})
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})

	t.Run("write failure redelivers", func(t *testing.T) {
		store := criterionStore(domain.Task{ID: 1, OwnerContact: "u", Criterion: "c", Status: domain.StatusActive})
		store.UpdateCriterionFunc = func(context.Context, int64, string) error {
			return fmt.Errorf("update: %w", domain.ErrStoreUnavailable)
		}
		pub := &recordingPublisher{}
		r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: appendingRefiner(), Publisher: pub, Retry: fastRetry})
		err := r.Handle(context.Background(), domain.FeedbackEvent{TaskID: 1, FeedbackText: "x"})
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.Empty(t, pub.notifications())
	})

	t.Run("task removed before write", func(t *testing.T) {
		store := criterionStore(domain.Task{ID: 1, OwnerContact: "u", Criterion: "c", Status: domain.StatusActive})
		store.UpdateCriterionFunc = func(context.Context, int64, string) error { return domain.ErrTaskNotFound }
		r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: appendingRefiner(), Publisher: &recordingPublisher{},
			Retry: fastRetry})
		assert.NoError(t, r.Handle(context.Background(), domain.FeedbackEvent{TaskID: 1, FeedbackText: "x"}))
	})
}

func TestFeedbackRefiner_ConfirmationBrokerLost(t *testing.T) {
	store := criterionStore(domain.Task{ID: 1, OwnerContact: "u", Criterion: "c", Status: domain.StatusActive})
	pub := &recordingPublisher{err: domain.ErrBrokerUnavailable}
	r := NewFeedbackRefiner(RefinerParams{Tasks: store, Refiner: appendingRefiner(), Publisher: pub, Retry: fastRetry})
	err := r.Handle(context.Background(), domain.FeedbackEvent{TaskID: 1, FeedbackText: "x"})
	assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)
	assert.Len(t, store.UpdateCriterionCalls(), 1, "criterion lands before the confirmation")
}
