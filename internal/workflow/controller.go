package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aschmelyun/tidea/internal/api"
)

// Backend is the remote service the controller mediates. *api.Client
// implements it.
type Backend interface {
	UploadForTranscript(ctx context.Context, filename string, r io.Reader, language string) (api.TranscriptResponse, error)
	GenerateIdeas(ctx context.Context, items []api.TranscriptItem) (api.IdeaGenerationResponse, error)
	GenerateContent(ctx context.Context, format, ideaText string, selectedSubIdeas []string) (api.ContentGenerationResponse, error)
	Health(ctx context.Context) (api.HealthResponse, error)
}

// Status is a point-in-time copy of the controller's loading flags and
// error slots.
type Status struct {
	loading [3]bool
	errs    [3]*Failure
}

func (s Status) Loading(stage Stage) bool { return s.loading[stage] }

// Err returns the failure held in stage's slot, or nil.
func (s Status) Err(stage Stage) *Failure { return s.errs[stage] }

// IsLoading reports whether any stage is in flight.
func (s Status) IsLoading() bool {
	for _, stage := range stages {
		if s.loading[stage] {
			return true
		}
	}
	return false
}

// HasErrors reports whether any slot holds a failure.
func (s Status) HasErrors() bool {
	for _, stage := range stages {
		if s.errs[stage] != nil {
			return true
		}
	}
	return false
}

// Controller wraps every backend call with loading and error bookkeeping.
// Each operation clears its own slot, raises its own flag, and lowers the
// flag exactly once when it returns. Operations never panic and never
// touch another stage's flag or slot. Safe for concurrent use.
type Controller struct {
	backend Backend
	logger  *slog.Logger

	mu     sync.Mutex
	status Status
}

func NewController(backend Backend, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{backend: backend, logger: logger}
}

// Status returns a snapshot of the flags and slots.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) ClearError(stage Stage) {
	c.mu.Lock()
	c.status.errs[stage] = nil
	c.mu.Unlock()
}

func (c *Controller) ClearAllErrors() {
	c.mu.Lock()
	c.status.errs = [3]*Failure{}
	c.mu.Unlock()
}

// Upload sends media for transcription and returns the transcript in view
// form. On failure it returns nil and the same *Failure stored in the
// upload slot.
func (c *Controller) Upload(ctx context.Context, media Media, language string) ([]Segment, error) {
	var segments []Segment
	err := c.run(ctx, StageUpload, func(ctx context.Context) error {
		if media.Open == nil {
			return validationf("Please upload an audio file first")
		}
		if media.Size <= 0 {
			return validationf("File %q is empty", media.Name)
		}

		rc, err := media.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", media.Name, err)
		}
		defer rc.Close()

		resp, err := c.backend.UploadForTranscript(ctx, media.Name, rc, language)
		if err != nil {
			return err
		}
		segments = TransformTranscript(resp.Data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// GenerateIdeas sends the segments not marked removed and returns the
// generated ideas. With nothing retained no request is made.
func (c *Controller) GenerateIdeas(ctx context.Context, segments []Segment) ([]Idea, error) {
	var ideas []Idea
	err := c.run(ctx, StageIdeas, func(ctx context.Context) error {
		retained := RetainedSegments(segments)
		if len(retained) == 0 {
			return validationf("No transcript data available for idea generation. Please ensure some transcript items are not removed.")
		}

		resp, err := c.backend.GenerateIdeas(ctx, TranscriptForIdeaGeneration(retained))
		if err != nil {
			return err
		}
		ideas = TransformIdeas(resp.Data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ideas, nil
}

// GenerateContent requests long-form content for a composed idea text.
func (c *Controller) GenerateContent(ctx context.Context, format Format, ideaText string, selectedSubIdeas []string) (string, error) {
	var content string
	err := c.run(ctx, StageContent, func(ctx context.Context) error {
		if format == "" || strings.TrimSpace(ideaText) == "" {
			return validationf("Format and idea text are required for content generation.")
		}

		resp, err := c.backend.GenerateContent(ctx, format.Wire(), ideaText, selectedSubIdeas)
		if err != nil {
			return err
		}
		content = resp.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// Health checks the backend. It has no loading flag or error slot.
func (c *Controller) Health(ctx context.Context) (string, error) {
	resp, err := c.backend.Health(ctx)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Controller) run(ctx context.Context, stage Stage, fn func(context.Context) error) (err error) {
	c.mu.Lock()
	c.status.errs[stage] = nil
	c.status.loading[stage] = true
	c.mu.Unlock()

	logger := c.logger.With("stage", stage.String())
	logger.Info("stage started")
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected failure: %v", p)
		}

		var failure *Failure
		if err != nil {
			failure = classify(stage, err)
			logger.Warn("stage failed", "kind", failure.Kind.String(), "status", failure.Status, "error", failure.Message, "duration", time.Since(start))
			err = failure
		} else {
			logger.Info("stage finished", "duration", time.Since(start))
		}

		c.mu.Lock()
		c.status.loading[stage] = false
		if failure != nil {
			c.status.errs[stage] = failure
		}
		c.mu.Unlock()
	}()

	return fn(ctx)
}
