package workflow

import (
	"context"
	"log"
	"time"
)

// Evaluation is the judge's verdict on a candidate artifact. Score is on a
// 0-10 scale; Feedback is handed verbatim to the rewriter.
type Evaluation struct {
	Score     float64            `json:"score"`
	Feedback  string             `json:"feedback"`
	Subscores map[string]float64 `json:"subscores,omitempty"`
}

// Steps supplies the three generative step implementations for one workflow
// instantiation. The engine is agnostic to the artifact shape; story and
// script pipelines plug in different Steps against the same state machine.
type Steps[In, A any] interface {
	// Kind names the instantiation ("story", "webtoon_script") for
	// snapshots and logs.
	Kind() string
	// Write produces the initial artifact from the submitted input.
	Write(ctx context.Context, in In) (A, error)
	// Evaluate scores the current artifact.
	Evaluate(ctx context.Context, artifact A) (*Evaluation, error)
	// Rewrite improves the artifact using the evaluator's feedback.
	Rewrite(ctx context.Context, artifact A, feedback string) (A, error)
}

// Options bounds a workflow engine.
type Options struct {
	// Threshold is the minimum score at which an artifact is accepted
	// without further revision. Zero accepts the first draft; negative
	// values are clamped to zero.
	Threshold float64
	// MaxAttempts is the maximum number of rewriter invocations per run,
	// not total steps. A run makes at most 2 + 2*MaxAttempts generative
	// calls.
	MaxAttempts int
	// StepTimeout wraps every individual generative call. Zero disables
	// the per-step timeout.
	StepTimeout time.Duration
}

// DefaultOptions mirror the original pipeline defaults for story generation.
func DefaultOptions() Options {
	return Options{
		Threshold:   7.0,
		MaxAttempts: 1,
		StepTimeout: 2 * time.Minute,
	}
}

// Engine drives one workflow instantiation through bounded revision runs.
// Each submitted run progresses sequentially through its steps on its own
// goroutine; independent runs share nothing but the registry.
type Engine[In, A any] struct {
	steps    Steps[In, A]
	registry *Registry
	opts     Options
}

// NewEngine creates an engine over the given steps and shared registry.
func NewEngine[In, A any](steps Steps[In, A], registry *Registry, opts Options) *Engine[In, A] {
	if opts.Threshold < 0 {
		opts.Threshold = 0
	}
	if opts.MaxAttempts < 0 {
		opts.MaxAttempts = 0
	}
	return &Engine[In, A]{steps: steps, registry: registry, opts: opts}
}

// Submit registers a new run and starts it asynchronously, returning the
// run id immediately. Poll the registry for progress. A run always reaches
// a terminal phase; abandoning the id simply means nobody reads the result.
func (e *Engine[In, A]) Submit(in In) Snapshot {
	snap := e.registry.create(e.steps.Kind())
	go e.run(context.Background(), snap, in)
	return snap
}

// Run executes a workflow synchronously and returns the terminal snapshot.
func (e *Engine[In, A]) Run(ctx context.Context, in In) Snapshot {
	snap := e.registry.create(e.steps.Kind())
	e.run(ctx, snap, in)
	final, _ := e.registry.Get(snap.RunID)
	return final
}

func (e *Engine[In, A]) run(ctx context.Context, snap Snapshot, in In) {
	id := snap.RunID
	kind := e.steps.Kind()

	e.registry.transition(id, func(s Snapshot) Snapshot {
		s.Phase = PhaseWriting
		return s
	})

	artifact, err := e.write(ctx, in)
	if err != nil {
		log.Printf("workflow %s [%s]: writer failed: %v", id, kind, err)
		e.registry.transition(id, func(s Snapshot) Snapshot {
			s.Phase = PhaseFailed
			s.Error = categorize(err, CategoryGeneration)
			return s
		})
		return
	}

	attempts := 0
	for {
		e.registry.transition(id, func(s Snapshot) Snapshot {
			s.Phase = PhaseEvaluating
			s.Attempts = attempts
			return s
		})

		eval, err := e.evaluate(ctx, artifact)
		if err != nil {
			log.Printf("workflow %s [%s]: evaluator failed: %v", id, kind, err)
			// The artifact itself is good; keep it as the best-effort
			// result alongside the failure.
			e.registry.transition(id, func(s Snapshot) Snapshot {
				s.Phase = PhaseFailed
				s.Error = categorize(err, CategoryGeneration)
				s.Result = artifact
				return s
			})
			return
		}

		if eval.Score >= e.opts.Threshold || attempts >= e.opts.MaxAttempts {
			if eval.Score < e.opts.Threshold {
				log.Printf("workflow %s [%s]: score %.2f still below threshold %.2f after %d rewrites, accepting best effort",
					id, kind, eval.Score, e.opts.Threshold, attempts)
			}
			score := eval.Score
			e.registry.transition(id, func(s Snapshot) Snapshot {
				s.Phase = PhaseDone
				s.Score = &score
				s.Feedback = eval.Feedback
				s.Result = artifact
				return s
			})
			return
		}

		log.Printf("workflow %s [%s]: score %.2f < threshold %.2f, rewrite %d/%d",
			id, kind, eval.Score, e.opts.Threshold, attempts+1, e.opts.MaxAttempts)
		score := eval.Score
		e.registry.transition(id, func(s Snapshot) Snapshot {
			s.Phase = PhaseRewriting
			s.Score = &score
			s.Feedback = eval.Feedback
			return s
		})

		rewritten, err := e.rewrite(ctx, artifact, eval.Feedback)
		if err != nil {
			log.Printf("workflow %s [%s]: rewriter failed: %v", id, kind, err)
			// Preserve the pre-rewrite artifact rather than discarding it.
			e.registry.transition(id, func(s Snapshot) Snapshot {
				s.Phase = PhaseFailed
				s.Error = categorize(err, CategoryGeneration)
				s.Result = artifact
				return s
			})
			return
		}
		artifact = rewritten
		attempts++
	}
}

func (e *Engine[In, A]) write(ctx context.Context, in In) (A, error) {
	ctx, cancel := e.stepContext(ctx)
	defer cancel()
	return e.steps.Write(ctx, in)
}

func (e *Engine[In, A]) evaluate(ctx context.Context, artifact A) (*Evaluation, error) {
	ctx, cancel := e.stepContext(ctx)
	defer cancel()
	return e.steps.Evaluate(ctx, artifact)
}

func (e *Engine[In, A]) rewrite(ctx context.Context, artifact A, feedback string) (A, error) {
	ctx, cancel := e.stepContext(ctx)
	defer cancel()
	return e.steps.Rewrite(ctx, artifact, feedback)
}

func (e *Engine[In, A]) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.StepTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.opts.StepTimeout)
}
