package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Rehodra/AI-Youtube-Analyser/config"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

// InferenceClient is the contract against the external AI provider. The raw
// completion text comes back unvalidated; adapters own parsing and shape
// checks.
type InferenceClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest describes one inference call
type CompletionRequest struct {
	Model       string
	Prompt      string
	Temperature float64
	JSONMode    bool
}

// Failure describes why a capability call did not produce a payload
type Failure struct {
	Kind  models.FailureKind
	Cause string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Cause)
}

// Outcome is the tagged result of one capability call: either a validated
// payload or a typed failure, never both
type Outcome struct {
	Payload json.RawMessage
	Failure *Failure
}

// Succeeded reports whether the call produced a payload
func (o Outcome) Succeeded() bool { return o.Failure == nil }

func success(payload []byte) Outcome {
	return Outcome{Payload: payload}
}

func failure(kind models.FailureKind, cause string) Outcome {
	return Outcome{Failure: &Failure{Kind: kind, Cause: cause}}
}

// Adapter wraps one external analysis capability. Implementations are
// stateless and safe for concurrent use; Invoke never panics and never
// returns a Go error — every fault becomes a failure Outcome.
type Adapter interface {
	Kind() models.ModuleKind
	Invoke(ctx context.Context, ch *models.ChannelContext) Outcome
}

// moduleAdapter is the shared implementation behind every analysis module:
// build prompt, call the inference provider under the module timeout, strip
// markdown fences, validate the JSON shape.
type moduleAdapter struct {
	kind     models.ModuleKind
	client   InferenceClient
	settings config.ModuleSettings
	prompt   func(*models.ChannelContext) string
	validate func([]byte) (interface{}, error)
}

func (a *moduleAdapter) Kind() models.ModuleKind { return a.kind }

func (a *moduleAdapter) Invoke(ctx context.Context, ch *models.ChannelContext) Outcome {
	ctx, cancel := context.WithTimeout(ctx, a.settings.Timeout)
	defer cancel()

	raw, err := a.client.Complete(ctx, CompletionRequest{
		Model:       a.settings.Model,
		Prompt:      a.prompt(ch),
		Temperature: a.settings.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		return failure(classifyCallError(err), err.Error())
	}

	payload, err := a.validate([]byte(stripFences(raw)))
	if err != nil {
		return failure(models.FailureInvalidResponse, err.Error())
	}

	normalized, err := json.Marshal(payload)
	if err != nil {
		return failure(models.FailureInvalidResponse, err.Error())
	}
	return success(normalized)
}

// classifyCallError maps provider errors onto the failure taxonomy
func classifyCallError(err error) models.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.FailureTimeout
	}
	return models.FailureExternalError
}

// stripFences removes markdown code fences some models wrap around JSON
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
