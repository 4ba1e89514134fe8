package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/skillsync/skillsync/pkg/domain/interfaces"
	"github.com/skillsync/skillsync/pkg/domain/model"
)

//go:embed prompts/narrative_system.md
var narrativeSystemPrompt string

//go:embed prompts/narrative_user.md
var narrativeUserTemplate string

// readmePromptLimit bounds the README length sent to the completion
// service to control token cost
const readmePromptLimit = 4000

// narrativeResponse is the strict JSON shape expected from the model
type narrativeResponse struct {
	Summary   string   `json:"summary"`
	TechStack []string `json:"tech_stack"`
}

// NarrativeEnricher attaches a model-generated one-sentence README
// summary to skill evidence, consulting a content-hash keyed cache
// before every completion call. The cache is shared across users:
// byte-identical README content yields one completion call total.
type NarrativeEnricher struct {
	store        interfaces.Store
	llmClient    gollem.LLMClient
	userTemplate *template.Template
}

// NewNarrativeEnricher creates a new NarrativeEnricher
func NewNarrativeEnricher(store interfaces.Store, llmClient gollem.LLMClient) (*NarrativeEnricher, error) {
	tmpl, err := template.New("narrative").Parse(narrativeUserTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse narrative prompt template")
	}

	return &NarrativeEnricher{
		store:        store,
		llmClient:    llmClient,
		userTemplate: tmpl,
	}, nil
}

// Enrich fills Narrative on each evidence record whose strongest repo
// has a README. Enrichment failures degrade gracefully: the evidence
// keeps its repository-stored description and the pipeline continues.
func (uc *NarrativeEnricher) Enrich(ctx context.Context, evidences []*model.SkillEvidence, readmeBySHA map[string]string) {
	logger := ctxlog.From(ctx)

	// Tracks outcomes within this batch so a content hash shared by
	// several skills (or several repos) triggers at most one call,
	// even when generation failed.
	resolved := map[string]string{}

	for _, ev := range evidences {
		if ev.ReadmeSHA == "" {
			continue
		}

		if summary, ok := resolved[ev.ReadmeSHA]; ok {
			ev.Narrative = summary
			continue
		}

		summary, err := uc.store.GetNarrative(ctx, ev.ReadmeSHA)
		if err != nil {
			logger.Warn("Narrative cache lookup failed", "sha", ev.ReadmeSHA, "error", err)
		}

		if summary == "" {
			readme, ok := readmeBySHA[ev.ReadmeSHA]
			if !ok {
				resolved[ev.ReadmeSHA] = ""
				continue
			}

			summary, err = uc.generate(ctx, readme)
			if err != nil {
				logger.Warn("Narrative generation failed, proceeding without it",
					"skill", ev.Skill, "sha", ev.ReadmeSHA, "error", err)
				resolved[ev.ReadmeSHA] = ""
				continue
			}

			if err := uc.store.PutNarrative(ctx, ev.ReadmeSHA, summary); err != nil {
				logger.Warn("Failed to cache narrative", "sha", ev.ReadmeSHA, "error", err)
			}
		}

		resolved[ev.ReadmeSHA] = summary
		ev.Narrative = summary
	}
}

// generate calls the completion service with a truncated README and
// parses the strict JSON response
func (uc *NarrativeEnricher) generate(ctx context.Context, readme string) (string, error) {
	if len(readme) > readmePromptLimit {
		readme = readme[:readmePromptLimit]
	}

	var buf bytes.Buffer
	if err := uc.userTemplate.Execute(&buf, map[string]string{"Readme": readme}); err != nil {
		return "", goerr.Wrap(err, "failed to render narrative prompt")
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(narrativeSystemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate narrative")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("empty response from LLM")
	}

	var parsed narrativeResponse
	raw := extractJSON(resp.Texts[0])
	if raw == "" {
		return "", goerr.New("no JSON object in LLM response", goerr.V("response", resp.Texts[0]))
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}
	if parsed.Summary == "" {
		return "", goerr.New("LLM response has no summary")
	}

	return parsed.Summary, nil
}

// extractJSON cuts the outermost JSON object out of a response that may
// be wrapped in code fences or prose
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
