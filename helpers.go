package mindprint

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// -----------------------------------------------------------------------------
// Adapter Functions - wrap functions to create Distillation processors
// -----------------------------------------------------------------------------

// Do creates a processor from a custom function that can fail.
// This is the easiest way to add custom logic to a pipeline.
//
// Example:
//
//	audit := mindprint.Do("audit-redactions", func(ctx context.Context, d *mindprint.Distillation) (*mindprint.Distillation, error) {
//	    if summary := d.RedactionSummary(); summary != "" {
//	        log.Printf("masked: %s", summary)
//	    }
//	    return d, nil
//	})
func Do(name string, fn func(context.Context, *Distillation) (*Distillation, error)) pipz.Processor[*Distillation] {
	return pipz.Apply(pipz.Name(name), fn)
}

// Transform creates a processor from a pure transformation function.
// Use this when your operation cannot fail.
func Transform(name string, fn func(context.Context, *Distillation) *Distillation) pipz.Processor[*Distillation] {
	return pipz.Transform(pipz.Name(name), fn)
}

// Effect creates a processor that performs a side effect without modifying
// the distillation. Use this for logging, metrics, or other observational
// operations.
func Effect(name string, fn func(context.Context, *Distillation) error) pipz.Processor[*Distillation] {
	return pipz.Effect(pipz.Name(name), fn)
}

// -----------------------------------------------------------------------------
// Sequential Connectors - process distillations in order
// -----------------------------------------------------------------------------

// Sequence creates a sequential pipeline of distillation processors.
// Each processor receives the output of the previous one.
//
// Example:
//
//	pipeline := mindprint.Sequence("distill",
//	    mindprint.NewRedact("redact_pii"),
//	    mindprint.NewExtractSentences("extract_sentences"),
//	    mindprint.NewScore("score_signals"),
//	)
func Sequence(name string, processors ...pipz.Chainable[*Distillation]) *pipz.Sequence[*Distillation] {
	return pipz.NewSequence(pipz.Name(name), processors...)
}

// -----------------------------------------------------------------------------
// Control Flow Connectors - route distillations based on conditions
// -----------------------------------------------------------------------------

// Filter creates a conditional processor that either processes or passes
// through. When the predicate returns true, the processor is executed.
//
// Example:
//
//	syncIfMasked := mindprint.Filter("sync-if-masked",
//	    func(ctx context.Context, d *mindprint.Distillation) bool {
//	        return d.RedactionSummary() != ""
//	    },
//	    mindprint.NewSync("sync_artifact"),
//	)
func Filter(name string, predicate func(context.Context, *Distillation) bool, processor pipz.Chainable[*Distillation]) *pipz.Filter[*Distillation] {
	return pipz.NewFilter(pipz.Name(name), predicate, processor)
}

// Switch creates a router that directs distillations to different
// processors. The condition function returns a route key that determines
// which processor handles the distillation.
func Switch[K comparable](name string, condition func(context.Context, *Distillation) K) *pipz.Switch[*Distillation, K] {
	return pipz.NewSwitch(pipz.Name(name), condition)
}

// -----------------------------------------------------------------------------
// Error Handling Connectors - handle failures gracefully
// -----------------------------------------------------------------------------

// Fallback creates a processor that tries alternatives on failure.
// Each processor is tried in order until one succeeds.
func Fallback(name string, processors ...pipz.Chainable[*Distillation]) *pipz.Fallback[*Distillation] {
	return pipz.NewFallback(pipz.Name(name), processors...)
}

// Retry creates a processor that retries on failure up to maxAttempts
// times. Immediate retry without delay - for backoff, use Backoff instead.
func Retry(name string, processor pipz.Chainable[*Distillation], maxAttempts int) *pipz.Retry[*Distillation] {
	return pipz.NewRetry(pipz.Name(name), processor, maxAttempts)
}

// Backoff creates a processor that retries with exponential backoff.
// Useful for gateway pushes that need time to recover between attempts.
func Backoff(name string, processor pipz.Chainable[*Distillation], maxAttempts int, baseDelay time.Duration) *pipz.Backoff[*Distillation] {
	return pipz.NewBackoff(pipz.Name(name), processor, maxAttempts, baseDelay)
}

// Timeout creates a processor that enforces a time limit on execution.
// The pipeline itself never imposes one; wrap the sync stage with Timeout
// when the gateway cannot be trusted to enforce its own.
//
// Example:
//
//	bounded := mindprint.Timeout("bounded-sync", mindprint.NewSync("sync_artifact"), 30*time.Second)
func Timeout(name string, processor pipz.Chainable[*Distillation], duration time.Duration) *pipz.Timeout[*Distillation] {
	return pipz.NewTimeout(pipz.Name(name), processor, duration)
}

// Handle creates a processor that handles errors without stopping the
// pipeline. When the primary processor fails, the error handler is invoked
// for monitoring.
func Handle(name string, processor pipz.Chainable[*Distillation], errorHandler pipz.Chainable[*pipz.Error[*Distillation]]) *pipz.Handle[*Distillation] {
	return pipz.NewHandle(pipz.Name(name), processor, errorHandler)
}

// -----------------------------------------------------------------------------
// Parallel Connectors - process distillations concurrently
// These require *Distillation to implement pipz.Cloner[*Distillation]
// (see distillation.go Clone())
// -----------------------------------------------------------------------------

// Concurrent runs all processors in parallel and returns the original
// distillation. Each processor receives an isolated clone.
func Concurrent(name string, reducer func(original *Distillation, results map[pipz.Name]*Distillation, errors map[pipz.Name]error) *Distillation, processors ...pipz.Chainable[*Distillation]) *pipz.Concurrent[*Distillation] {
	_ = reducer // pipz.NewConcurrent always returns the original input
	return pipz.NewConcurrent(pipz.Name(name), processors...)
}

// Race runs all processors in parallel and returns the first successful
// result.
func Race(name string, processors ...pipz.Chainable[*Distillation]) *pipz.Race[*Distillation] {
	return pipz.NewRace(pipz.Name(name), processors...)
}
