package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/domain/interfaces"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
)

// maxPayloadSize caps inbound webhook bodies (GitHub's own limit is 25MB)
const maxPayloadSize = 25 << 20

// WebhookHandler handles inbound repository webhooks
type WebhookHandler struct {
	webhookUC interfaces.WebhookUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookUC interfaces.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{
		webhookUC: webhookUC,
	}
}

// webhookPayload is the subset of the delivery body the service needs.
// The signature check needs the repository identity before the payload
// can be trusted, so parsing happens first and verification decides
// whether the parsed values are acted on.
type webhookPayload struct {
	Ref        string `json:"ref"`
	RefType    string `json:"ref_type"`
	Action     string `json:"action"`
	Repository struct {
		Name            string `json:"name"`
		StargazersCount int    `json:"stargazers_count"`
		Owner           struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error("Failed to parse webhook payload", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}
	if payload.Repository.Owner.Login == "" || payload.Repository.Name == "" {
		writeError(w, goerr.New("payload missing repository identity"), http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if err := h.webhookUC.VerifySignature(ctx,
		payload.Repository.Owner.Login, payload.Repository.Name, body, signature); err != nil {
		if errors.Is(err, types.ErrInvalidSignature) {
			logger.Warn("Invalid webhook signature",
				"repo", payload.Repository.Owner.Login+"/"+payload.Repository.Name)
			writeError(w, goerr.New("invalid signature"), http.StatusUnauthorized)
			return
		}
		logger.Error("Signature verification failed", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	event := &model.WebhookEvent{
		DeliveryID: r.Header.Get("X-GitHub-Delivery"),
		Type:       model.WebhookEventType(r.Header.Get("X-GitHub-Event")),
		Action:     payload.Action,
		RefType:    payload.RefType,
		Ref:        payload.Ref,
		Owner:      payload.Repository.Owner.Login,
		Repo:       payload.Repository.Name,
		Stars:      payload.Repository.StargazersCount,
		Sender:     payload.Sender.Login,
		ReceivedAt: time.Now(),
		RawPayload: body,
	}

	outcome, err := h.webhookUC.HandleEvent(ctx, event)
	if err != nil {
		logger.Error("Failed to process webhook event", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": string(outcome),
	}); err != nil {
		logger.Error("Failed to encode success response", "error", err)
	}
}
