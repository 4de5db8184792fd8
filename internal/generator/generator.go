// Package generator runs one generate action: assemble the prompt, send it
// for enhancement, clean the reply and record the outcome.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/promptg/internal"
	"github.com/valpere/promptg/internal/enhancer"
	"github.com/valpere/promptg/internal/logger"
	"github.com/valpere/promptg/internal/postprocess"
	"github.com/valpere/promptg/internal/prompt"
)

// Recorder stores finished generations. Failures are logged, never returned.
type Recorder interface {
	SaveGeneration(ctx context.Context, rec internal.GenerationRecord) error
}

type Config struct {
	// Timeout bounds the enhancement call. Zero leaves it to the HTTP client.
	Timeout time.Duration
	// Raw disables postprocess.Clean on the model's reply.
	Raw bool
}

type Result struct {
	ID             string        `json:"id"`
	BasePrompt     string        `json:"basePrompt"`
	EnhancedPrompt string        `json:"enhancedPrompt"`
	Advisory       string        `json:"advisory,omitempty"`
	Model          string        `json:"model,omitempty"`
	Latency        time.Duration `json:"-"`
	LatencyMs      int64         `json:"latencyMs"`
}

// Error is returned when enhancement fails after the prompt was assembled.
// BasePrompt lets callers still show the unenhanced text.
type Error struct {
	BasePrompt string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("enhancement failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Generator struct {
	assembler *prompt.Assembler
	enhancer  enhancer.Enhancer
	recorder  Recorder
	config    Config
	log       *slog.Logger
}

type Option func(*Generator)

func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

func New(assembler *prompt.Assembler, enh enhancer.Enhancer, config Config, opts ...Option) *Generator {
	if assembler == nil {
		assembler = prompt.NewAssembler()
	}
	g := &Generator{
		assembler: assembler,
		enhancer:  enh,
		config:    config,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Assemble builds the base prompt without contacting the remote service.
func (g *Generator) Assemble(sel prompt.Selection) (*prompt.Assembly, error) {
	return g.assembler.Assemble(sel)
}

// Generate performs one assemble → enhance round trip. Calling it again with
// the same selection is how "generate again" works; the model may answer
// differently each time.
func (g *Generator) Generate(ctx context.Context, credential string, sel prompt.Selection) (*Result, error) {
	assembly, err := g.assembler.Assemble(sel)
	if err != nil {
		return nil, err
	}

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	enhanced, err := g.enhancer.Enhance(ctx, credential, assembly.Prompt)
	latency := time.Since(start)
	if err != nil {
		g.log.Warn("enhancement failed",
			"mode", sel.Mode,
			"status", enhancer.StatusCode(err),
			"latency", latency,
			"error", err)
		return nil, &Error{BasePrompt: assembly.Prompt, Err: err}
	}

	if !g.config.Raw {
		enhanced = postprocess.Clean(enhanced)
	}
	if strings.TrimSpace(enhanced) == "" {
		g.log.Info("blank enhancement, keeping base prompt", "mode", sel.Mode)
		enhanced = assembly.Prompt
	}

	res := &Result{
		ID:             uuid.New().String(),
		BasePrompt:     assembly.Prompt,
		EnhancedPrompt: enhanced,
		Advisory:       assembly.Advisory,
		Model:          modelOf(g.enhancer),
		Latency:        latency,
		LatencyMs:      latency.Milliseconds(),
	}

	g.log.Info("prompt generated",
		"id", res.ID,
		"mode", sel.Mode,
		"non_english", assembly.NonEnglish,
		"latency", latency)

	g.record(ctx, sel, res)
	return res, nil
}

func (g *Generator) record(ctx context.Context, sel prompt.Selection, res *Result) {
	if g.recorder == nil {
		return
	}

	raw, err := json.Marshal(sel)
	if err != nil {
		g.log.Warn("failed to encode selection for history", "error", err)
		return
	}

	rec := internal.GenerationRecord{
		ID:             res.ID,
		Mode:           string(sel.Mode),
		Selection:      string(raw),
		BasePrompt:     res.BasePrompt,
		EnhancedPrompt: res.EnhancedPrompt,
		Advisory:       res.Advisory,
		Model:          res.Model,
		LatencyMs:      int(res.Latency.Milliseconds()),
		Timestamp:      time.Now(),
	}
	// The request context may already be near its deadline; history is
	// written regardless.
	if err := g.recorder.SaveGeneration(context.WithoutCancel(ctx), rec); err != nil {
		g.log.Warn("failed to save history", "id", res.ID, "error", err)
	}
}

func modelOf(e enhancer.Enhancer) string {
	if m, ok := e.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}
