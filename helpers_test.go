package mindprint

import (
	"context"
	"errors"
	"testing"

	"github.com/zoobzio/pipz"
)

func TestDoAdapter(t *testing.T) {
	d := distillationWithRaw(t, "raw")

	called := false
	proc := Do("custom", func(ctx context.Context, d *Distillation) (*Distillation, error) {
		called = true
		return d, nil
	})

	if _, err := proc.Process(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("wrapped function was not invoked")
	}
}

func TestTransformAdapter(t *testing.T) {
	d := distillationWithRaw(t, "raw")

	proc := Transform("tag-sentences", func(ctx context.Context, d *Distillation) *Distillation {
		d.setSentences([]string{"synthetic sentence for the test"})
		return d
	})

	result, err := proc.Process(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Sentences()) != 1 {
		t.Error("transform result lost")
	}
}

func TestEffectAdapterDoesNotModify(t *testing.T) {
	d := distillationWithRaw(t, "raw")

	var seen string
	proc := Effect("observe", func(ctx context.Context, d *Distillation) error {
		seen = d.RawText()
		return nil
	})

	if _, err := proc.Process(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "raw" {
		t.Errorf("effect saw %q", seen)
	}
}

func TestSequenceRunsInOrder(t *testing.T) {
	d := distillationWithRaw(t, "We should compare both approaches before the rewrite. Contact a@b.com today.")

	pipeline := Sequence("partial",
		NewRedact("redact_pii"),
		NewExtractSentences("extract_sentences"),
		NewScore("score_signals"),
	)

	result, err := pipeline.Process(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RedactionSummary() != "email=1" {
		t.Errorf("redact stage skipped: %q", result.RedactionSummary())
	}
	vector, scored := result.Signals()
	if !scored || vector.Comparison != 1 {
		t.Errorf("downstream stages did not see upstream output: %+v", vector)
	}
}

func TestFilterSkipsWhenPredicateFalse(t *testing.T) {
	d := distillationWithRaw(t, "raw")

	ran := false
	proc := Filter("only-masked",
		func(ctx context.Context, d *Distillation) bool {
			return d.RedactionSummary() != ""
		},
		Do("inner", func(ctx context.Context, d *Distillation) (*Distillation, error) {
			ran = true
			return d, nil
		}),
	)

	if _, err := proc.Process(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Error("processor ran despite false predicate")
	}
}

func TestRetryRecoversTransientFailure(t *testing.T) {
	d := distillationWithRaw(t, "raw")

	attempts := 0
	flaky := Do("flaky", func(ctx context.Context, d *Distillation) (*Distillation, error) {
		attempts++
		if attempts < 3 {
			return d, errors.New("transient")
		}
		return d, nil
	})

	proc := Retry("retry-flaky", flaky, 5)
	if _, err := proc.Process(context.Background(), d); err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestFallbackUsesSecondary(t *testing.T) {
	d := distillationWithRaw(t, "raw")

	primary := Do("primary", func(ctx context.Context, d *Distillation) (*Distillation, error) {
		return d, errors.New("primary down")
	})
	secondary := Transform("secondary", func(ctx context.Context, d *Distillation) *Distillation {
		d.setSentences([]string{"came through the fallback path"})
		return d
	})

	proc := Fallback("fb", primary, secondary)
	result, err := proc.Process(context.Background(), d)
	if err != nil {
		t.Fatalf("fallback should have succeeded: %v", err)
	}
	if len(result.Sentences()) != 1 {
		t.Error("secondary result lost")
	}
}

func TestConcurrentClonesIsolation(t *testing.T) {
	d := distillationWithRaw(t, "raw")
	d.setSentences([]string{"shared sentence for both branches"})

	branch := func(name string) pipz.Processor[*Distillation] {
		return Do(name, func(ctx context.Context, d *Distillation) (*Distillation, error) {
			d.setSentences([]string{name})
			return d, nil
		})
	}

	proc := Concurrent("fanout",
		func(original *Distillation, results map[pipz.Name]*Distillation, errs map[pipz.Name]error) *Distillation {
			return original
		},
		branch("left"), branch("right"),
	)

	result, err := proc.Process(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Sentences()[0]; got != "shared sentence for both branches" {
		t.Errorf("branches leaked into the original: %q", got)
	}
}
