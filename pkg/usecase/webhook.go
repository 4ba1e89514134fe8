package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/domain/interfaces"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
	"github.com/skillsync/skillsync/pkg/utils/async"
)

const signaturePrefix = "sha256="

// webhookIngestion verifies, filters, and dispatches inbound webhook
// deliveries
type webhookIngestion struct {
	store    interfaces.Store
	pipeline interfaces.PipelineUseCase
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(store interfaces.Store, pipeline interfaces.PipelineUseCase) interfaces.WebhookUseCase {
	return &webhookIngestion{
		store:    store,
		pipeline: pipeline,
	}
}

// VerifySignature checks the HMAC-SHA256 signature over the raw request
// body against the per-subscription secret, using constant-time
// comparison. The header must carry the "sha256=" prefix.
func (uc *webhookIngestion) VerifySignature(ctx context.Context, owner, repo string, body []byte, signature string) error {
	sub, err := uc.store.GetSubscription(ctx, owner, repo)
	if err != nil {
		return goerr.Wrap(err, "failed to look up subscription",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}
	if sub == nil || !sub.Active {
		return goerr.Wrap(types.ErrInvalidSignature, "no active subscription for repository",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}

	if !strings.HasPrefix(signature, signaturePrefix) {
		return goerr.Wrap(types.ErrInvalidSignature, "signature header missing sha256= prefix")
	}

	mac := hmac.New(sha256.New, []byte(sub.Secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(strings.TrimPrefix(signature, signaturePrefix)), []byte(expected)) {
		return goerr.Wrap(types.ErrInvalidSignature, "signature mismatch",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}
	return nil
}

// HandleEvent filters for meaningful events, resolves the sender to a
// platform user, and dispatches the pipeline fire-and-forget. The
// caller's HTTP response never waits for the pipeline; failures inside
// the run surface through the run audit trail.
func (uc *webhookIngestion) HandleEvent(ctx context.Context, event *model.WebhookEvent) (model.WebhookOutcome, error) {
	logger := ctxlog.From(ctx)

	if !event.IsMeaningfulChange() {
		logger.Debug("Ignoring webhook event",
			"delivery_id", event.DeliveryID, "type", event.Type, "action", event.Action)
		return model.WebhookIgnored, nil
	}

	user, err := uc.store.GetUserByLogin(ctx, event.Sender)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			logger.Info("Webhook sender is not a known user, ignoring",
				"sender", event.Sender, "repo", event.Owner+"/"+event.Repo)
			return model.WebhookIgnored, nil
		}
		return model.WebhookIgnored, goerr.Wrap(err, "failed to resolve webhook sender",
			goerr.V("sender", event.Sender))
	}

	logger.Info("Meaningful webhook event, dispatching pipeline",
		"delivery_id", event.DeliveryID, "type", event.Type,
		"repo", event.Owner+"/"+event.Repo, "user_id", user.ID)

	userID := user.ID
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.pipeline.Run(ctx, userID, model.TriggerWebhook)
	})

	return model.WebhookAccepted, nil
}
