// Package insight orchestrates wellness analysis and member chat: it builds
// prompt contexts, invokes the generation client, validates the model output
// and assembles typed responses. All state is request-scoped; the services
// hold only injected dependencies and are safe for concurrent use.
package insight

import (
	"context"
	"log/slog"
	"time"

	"github.com/onlyfits/insights/internal/genai"
	"github.com/onlyfits/insights/internal/models"
	"github.com/onlyfits/insights/internal/nudge"
	"github.com/onlyfits/insights/internal/store"
	"github.com/onlyfits/insights/internal/util"
)

// DefaultGenerationTimeout bounds each individual generation call.
const DefaultGenerationTimeout = 30 * time.Second

// Task names used to tag generation calls in logs and errors.
const (
	TaskAttendance = "attendance"
	TaskBurnout    = "burnout"
	TaskChat       = "chat"
)

// Opts holds shared configuration for the orchestration services.
type Opts struct {
	Store   store.Store
	Nudger  nudge.Sender
	Timeout time.Duration
}

// Option defines a configuration option for the orchestration services.
type Option func(*Opts)

// WithStore enables best-effort insight history recording.
func WithStore(st store.Store) Option {
	return func(o *Opts) { o.Store = st }
}

// WithNudger enables best-effort SMS delivery of positive nudges.
func WithNudger(n nudge.Sender) Option {
	return func(o *Opts) { o.Nudger = n }
}

// WithGenerationTimeout sets the per-call generation timeout.
func WithGenerationTimeout(d time.Duration) Option {
	return func(o *Opts) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

func buildOpts(opts []Option) Opts {
	cfg := Opts{Timeout: DefaultGenerationTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// generate runs one bounded generation call.
func generate(ctx context.Context, gen genai.Generator, timeout time.Duration, task, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return gen.Generate(callCtx, task, prompt)
}

// record stores an insight record, logging failures instead of surfacing
// them: history is observational and never fails a request.
func record(st store.Store, rec models.InsightRecord) {
	if st == nil {
		return
	}
	if rec.ID == "" {
		rec.ID = util.GenerateInsightID()
	}
	if err := st.AddInsight(rec); err != nil {
		slog.Error("insight.record: failed to store insight record", "error", err, "user_id", rec.UserID, "kind", rec.Kind)
	}
}
