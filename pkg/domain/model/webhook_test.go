package model_test

import (
	"testing"

	"github.com/skillsync/skillsync/pkg/domain/model"
)

func TestWebhookEvent_IsMeaningfulChange(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.WebhookEvent
		expected bool
	}{
		{
			name: "push is always meaningful",
			event: &model.WebhookEvent{
				Type: model.EventTypePush,
				Ref:  "refs/heads/main",
			},
			expected: true,
		},
		{
			name: "create branch is meaningful",
			event: &model.WebhookEvent{
				Type:    model.EventTypeCreate,
				RefType: "branch",
			},
			expected: true,
		},
		{
			name: "create repository is meaningful",
			event: &model.WebhookEvent{
				Type:    model.EventTypeCreate,
				RefType: "repository",
			},
			expected: true,
		},
		{
			name: "create tag is not meaningful",
			event: &model.WebhookEvent{
				Type:    model.EventTypeCreate,
				RefType: "tag",
			},
			expected: false,
		},
		{
			name: "repository made public is meaningful",
			event: &model.WebhookEvent{
				Type: model.EventTypePublic,
			},
			expected: true,
		},
		{
			name: "repository created is meaningful",
			event: &model.WebhookEvent{
				Type:   model.EventTypeRepository,
				Action: "created",
			},
			expected: true,
		},
		{
			name: "repository publicized is meaningful",
			event: &model.WebhookEvent{
				Type:   model.EventTypeRepository,
				Action: "publicized",
			},
			expected: true,
		},
		{
			name: "repository renamed is ignored",
			event: &model.WebhookEvent{
				Type:   model.EventTypeRepository,
				Action: "renamed",
			},
			expected: false,
		},
		{
			name: "repository deleted is ignored",
			event: &model.WebhookEvent{
				Type:   model.EventTypeRepository,
				Action: "deleted",
			},
			expected: false,
		},
		{
			name: "ping is ignored",
			event: &model.WebhookEvent{
				Type: model.EventTypePing,
			},
			expected: false,
		},
		{
			name: "unrelated event type is ignored",
			event: &model.WebhookEvent{
				Type:   model.WebhookEventType("issues"),
				Action: "opened",
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsMeaningfulChange(); got != tt.expected {
				t.Errorf("IsMeaningfulChange() = %v, want %v", got, tt.expected)
			}
		})
	}
}
