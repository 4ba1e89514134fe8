package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
	"github.com/skillsync/skillsync/pkg/infra/memory"
	"github.com/skillsync/skillsync/pkg/usecase"
)

const testWebhookURL = "https://skillsync.example.com/hooks/github"

func TestSubscriptionManager_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("registers hooks with distinct secrets", func(t *testing.T) {
		store := memory.New()
		hosting := newFakeHosting()
		uc := usecase.NewSubscriptionManager(store, hosting, testWebhookURL)

		results, err := uc.Subscribe(ctx, "user-1", []model.RepoRef{
			{Owner: "alice", Name: "webapp"},
			{Owner: "alice", Name: "cli-tool"},
		})
		gt.NoError(t, err)
		gt.Equal(t, len(results), 2)
		for _, res := range results {
			gt.Equal(t, res.Status, model.SubscriptionSubscribed)
			gt.NotEqual(t, res.HookID, int64(0))
		}

		first, err := store.GetSubscription(ctx, "alice", "webapp")
		gt.NoError(t, err)
		gt.NotNil(t, first)
		second, err := store.GetSubscription(ctx, "alice", "cli-tool")
		gt.NoError(t, err)
		gt.NotNil(t, second)

		gt.True(t, first.Active)
		gt.NotEqual(t, first.Secret, "")
		gt.NotEqual(t, first.Secret, second.Secret)
	})

	t.Run("already existing hook is reused", func(t *testing.T) {
		store := memory.New()
		hosting := newFakeHosting()
		uc := usecase.NewSubscriptionManager(store, hosting, testWebhookURL)

		repos := []model.RepoRef{{Owner: "alice", Name: "webapp"}}
		results, err := uc.Subscribe(ctx, "user-1", repos)
		gt.NoError(t, err)
		gt.Equal(t, results[0].Status, model.SubscriptionSubscribed)

		before, err := store.GetSubscription(ctx, "alice", "webapp")
		gt.NoError(t, err)

		// Upstream now rejects the duplicate registration
		hosting.createHookErr["alice/webapp"] = types.ErrHookExists

		results, err = uc.Subscribe(ctx, "user-1", repos)
		gt.NoError(t, err)
		gt.Equal(t, results[0].Status, model.SubscriptionAlreadyExists)
		gt.Equal(t, results[0].HookID, before.HookID)

		// The prior secret survives because the upstream hook kept it
		after, err := store.GetSubscription(ctx, "alice", "webapp")
		gt.NoError(t, err)
		gt.Equal(t, after.Secret, before.Secret)
		gt.Equal(t, after.ID, before.ID)
	})

	t.Run("per-repo failure does not abort the batch", func(t *testing.T) {
		store := memory.New()
		hosting := newFakeHosting()
		hosting.createHookErr["alice/broken"] = types.ErrRepoNotFound
		uc := usecase.NewSubscriptionManager(store, hosting, testWebhookURL)

		results, err := uc.Subscribe(ctx, "user-1", []model.RepoRef{
			{Owner: "alice", Name: "broken"},
			{Owner: "alice", Name: "webapp"},
		})
		gt.NoError(t, err)
		gt.Equal(t, results[0].Status, model.SubscriptionFailed)
		gt.NotEqual(t, results[0].Error, "")
		gt.Equal(t, results[1].Status, model.SubscriptionSubscribed)
	})
}

func TestSubscriptionManager_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	hosting := newFakeHosting()
	uc := usecase.NewSubscriptionManager(store, hosting, testWebhookURL)

	_, err := uc.Subscribe(ctx, "user-1", []model.RepoRef{
		{Owner: "alice", Name: "webapp"},
		{Owner: "alice", Name: "cli-tool"},
	})
	gt.NoError(t, err)

	results, err := uc.Unsubscribe(ctx, "user-1")
	gt.NoError(t, err)
	gt.Equal(t, len(results), 2)
	for _, res := range results {
		gt.Equal(t, res.Status, model.SubscriptionRemoved)
	}
	gt.Equal(t, len(hosting.deletedHooks), 2)

	// Records are kept but deactivated, so signature checks reject
	// future deliveries
	sub, err := store.GetSubscription(ctx, "alice", "webapp")
	gt.NoError(t, err)
	gt.False(t, sub.Active)

	active, err := store.ListActiveSubscriptions(ctx, "user-1")
	gt.NoError(t, err)
	gt.Equal(t, len(active), 0)
}
