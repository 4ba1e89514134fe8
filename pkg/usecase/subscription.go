package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/domain/interfaces"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
)

// hookEvents is the fixed event-type set registered for every
// repository webhook
var hookEvents = []string{"push", "create", "public", "repository"}

// subscriptionManager registers and removes repository webhooks on the
// hosting API, idempotently
type subscriptionManager struct {
	store      interfaces.Store
	hosting    interfaces.HostingClient
	webhookURL string
	now        func() time.Time
}

// NewSubscriptionManager creates a new instance of SubscriptionUseCase.
// webhookURL is the public endpoint the hosting provider will deliver
// events to.
func NewSubscriptionManager(store interfaces.Store, hosting interfaces.HostingClient, webhookURL string) interfaces.SubscriptionUseCase {
	return &subscriptionManager{
		store:      store,
		hosting:    hosting,
		webhookURL: webhookURL,
		now:        time.Now,
	}
}

// Subscribe registers a webhook on each repository with a fresh random
// secret per repository. "Already exists" from the hosting API is
// treated as success: the existing registration is looked up and
// recorded.
func (uc *subscriptionManager) Subscribe(ctx context.Context, userID string, repos []model.RepoRef) ([]model.SubscriptionResult, error) {
	logger := ctxlog.From(ctx)
	results := make([]model.SubscriptionResult, 0, len(repos))

	for _, ref := range repos {
		res := model.SubscriptionResult{Owner: ref.Owner, Repo: ref.Name}

		secret := uuid.NewString()
		hookID, err := uc.hosting.CreateHook(ctx, ref.Owner, ref.Name, uc.webhookURL, secret, hookEvents)

		switch {
		case err == nil:
			res.Status = model.SubscriptionSubscribed

		case errors.Is(err, types.ErrHookExists):
			existingID, lookupErr := uc.findHookByURL(ctx, ref)
			if lookupErr != nil {
				res.Status = model.SubscriptionFailed
				res.Error = lookupErr.Error()
				results = append(results, res)
				continue
			}
			hookID = existingID
			res.Status = model.SubscriptionAlreadyExists
			// The upstream hook keeps its original secret, so reuse
			// the one we stored when we first registered it
			if prev, _ := uc.store.GetSubscription(ctx, ref.Owner, ref.Name); prev != nil && prev.Secret != "" {
				secret = prev.Secret
			}

		default:
			logger.Warn("Webhook registration failed", "repo", ref.FullName(), "error", err)
			res.Status = model.SubscriptionFailed
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		now := uc.now()
		sub := &model.SubscriptionRecord{
			ID:        uuid.NewString(),
			UserID:    userID,
			Owner:     ref.Owner,
			Repo:      ref.Name,
			HookID:    hookID,
			Secret:    secret,
			Events:    hookEvents,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if prev, _ := uc.store.GetSubscription(ctx, ref.Owner, ref.Name); prev != nil {
			sub.ID = prev.ID
			sub.CreatedAt = prev.CreatedAt
		}
		if err := uc.store.SaveSubscription(ctx, sub); err != nil {
			res.Status = model.SubscriptionFailed
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		res.HookID = hookID
		results = append(results, res)
	}
	return results, nil
}

// Unsubscribe removes every active subscription for a user. Upstream
// deletion is best-effort: records are marked inactive even when the
// hosting API call fails or the hook is already gone.
func (uc *subscriptionManager) Unsubscribe(ctx context.Context, userID string) ([]model.SubscriptionResult, error) {
	logger := ctxlog.From(ctx)

	subs, err := uc.store.ListActiveSubscriptions(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list subscriptions", goerr.V("user_id", userID))
	}

	results := make([]model.SubscriptionResult, 0, len(subs))
	for _, sub := range subs {
		res := model.SubscriptionResult{Owner: sub.Owner, Repo: sub.Repo, HookID: sub.HookID}

		if err := uc.hosting.DeleteHook(ctx, sub.Owner, sub.Repo, sub.HookID); err != nil {
			logger.Warn("Upstream webhook deletion failed, deactivating anyway",
				"repo", sub.Owner+"/"+sub.Repo, "hook_id", sub.HookID, "error", err)
		}

		sub.Active = false
		sub.UpdatedAt = uc.now()
		if err := uc.store.SaveSubscription(ctx, sub); err != nil {
			res.Status = model.SubscriptionFailed
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		res.Status = model.SubscriptionRemoved
		results = append(results, res)
	}
	return results, nil
}

// findHookByURL resolves the identifier of an already-registered hook
func (uc *subscriptionManager) findHookByURL(ctx context.Context, ref model.RepoRef) (int64, error) {
	hooks, err := uc.hosting.ListHooks(ctx, ref.Owner, ref.Name)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list existing webhooks", goerr.V("repo", ref.FullName()))
	}
	for _, h := range hooks {
		if h.URL == uc.webhookURL {
			return h.ID, nil
		}
	}
	return 0, goerr.New("existing webhook not found by URL", goerr.V("repo", ref.FullName()))
}
