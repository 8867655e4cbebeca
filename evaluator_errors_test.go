package dynamic

import (
	"errors"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "timeout * retries", "task ':compile'", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "timeout * retries" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Owner != "task ':compile'" {
		t.Fatalf("expected owner metadata, got %q", evalErr.Owner)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "rule", "task ':report'", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Owner != "task ':report'" {
		t.Fatalf("owner should be filled, got %q", existing.Owner)
	}
}

func TestWrapEvaluationErrorNilPassthrough(t *testing.T) {
	if err := wrapEvaluationError("expr", "1 + 1", "task", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := wrapEvaluatorError("expr", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
