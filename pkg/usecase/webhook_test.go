package usecase_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
	"github.com/skillsync/skillsync/pkg/infra/memory"
	"github.com/skillsync/skillsync/pkg/usecase"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerifySignature(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	gt.NoError(t, store.SaveSubscription(ctx, &model.SubscriptionRecord{
		ID:     "sub-1",
		UserID: "user-1",
		Owner:  "alice",
		Repo:   "webapp",
		Secret: "repo-secret",
		Active: true,
	}))

	uc := usecase.NewWebhook(store, newStubPipeline())
	body := []byte(`{"ref":"refs/heads/main"}`)

	t.Run("valid signature", func(t *testing.T) {
		gt.NoError(t, uc.VerifySignature(ctx, "alice", "webapp", body, signBody("repo-secret", body)))
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := signBody("repo-secret", body)
		err := uc.VerifySignature(ctx, "alice", "webapp", []byte(`{"ref":"refs/heads/evil"}`), sig)
		gt.True(t, errors.Is(err, types.ErrInvalidSignature))
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := uc.VerifySignature(ctx, "alice", "webapp", body, signBody("other-secret", body))
		gt.True(t, errors.Is(err, types.ErrInvalidSignature))
	})

	t.Run("missing sha256 prefix", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte("repo-secret"))
		mac.Write(body)
		bare := hex.EncodeToString(mac.Sum(nil))

		err := uc.VerifySignature(ctx, "alice", "webapp", body, bare)
		gt.True(t, errors.Is(err, types.ErrInvalidSignature))
	})

	t.Run("no subscription for repository", func(t *testing.T) {
		err := uc.VerifySignature(ctx, "alice", "unknown", body, signBody("repo-secret", body))
		gt.True(t, errors.Is(err, types.ErrInvalidSignature))
	})

	t.Run("inactive subscription", func(t *testing.T) {
		gt.NoError(t, store.SaveSubscription(ctx, &model.SubscriptionRecord{
			ID:     "sub-2",
			UserID: "user-1",
			Owner:  "alice",
			Repo:   "retired",
			Secret: "old-secret",
			Active: false,
		}))

		err := uc.VerifySignature(ctx, "alice", "retired", body, signBody("old-secret", body))
		gt.True(t, errors.Is(err, types.ErrInvalidSignature))
	})
}

func TestWebhookHandleEvent(t *testing.T) {
	ctx := context.Background()

	newFixture := func(t *testing.T) (*memory.Store, *stubPipeline, *model.WebhookEvent) {
		t.Helper()
		store := memory.New()
		gt.NoError(t, store.SaveUser(ctx, &model.User{
			ID:           "user-1",
			HostingLogin: "alice",
		}))
		event := &model.WebhookEvent{
			DeliveryID: "delivery-1",
			Type:       model.EventTypePush,
			Ref:        "refs/heads/main",
			Owner:      "alice",
			Repo:       "webapp",
			Sender:     "alice",
		}
		return store, newStubPipeline(), event
	}

	t.Run("push from known user dispatches pipeline", func(t *testing.T) {
		store, pipeline, event := newFixture(t)
		uc := usecase.NewWebhook(store, pipeline)

		outcome, err := uc.HandleEvent(ctx, event)
		gt.NoError(t, err)
		gt.Equal(t, outcome, model.WebhookAccepted)

		select {
		case call := <-pipeline.started:
			gt.Equal(t, call.UserID, "user-1")
			gt.Equal(t, call.Trigger, model.TriggerWebhook)
		case <-time.After(time.Second):
			t.Fatal("pipeline was not dispatched")
		}
	})

	t.Run("ping event is ignored", func(t *testing.T) {
		store, pipeline, event := newFixture(t)
		event.Type = model.EventTypePing
		uc := usecase.NewWebhook(store, pipeline)

		outcome, err := uc.HandleEvent(ctx, event)
		gt.NoError(t, err)
		gt.Equal(t, outcome, model.WebhookIgnored)
		gt.Equal(t, pipeline.callCount(), 0)
	})

	t.Run("tag creation is ignored", func(t *testing.T) {
		store, pipeline, event := newFixture(t)
		event.Type = model.EventTypeCreate
		event.RefType = "tag"
		uc := usecase.NewWebhook(store, pipeline)

		outcome, err := uc.HandleEvent(ctx, event)
		gt.NoError(t, err)
		gt.Equal(t, outcome, model.WebhookIgnored)
		gt.Equal(t, pipeline.callCount(), 0)
	})

	t.Run("unknown sender is ignored", func(t *testing.T) {
		store, pipeline, event := newFixture(t)
		event.Sender = "stranger"
		uc := usecase.NewWebhook(store, pipeline)

		outcome, err := uc.HandleEvent(ctx, event)
		gt.NoError(t, err)
		gt.Equal(t, outcome, model.WebhookIgnored)
		gt.Equal(t, pipeline.callCount(), 0)
	})
}
