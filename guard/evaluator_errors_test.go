package guard

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorFillsMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "count > 0", 9, base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to unwrap to base")
	}
	if !strings.Contains(err.Error(), `expr="count > 0"`) || !strings.Contains(err.Error(), "entity=9") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	partial := &EvaluationError{Err: base}
	wrapped := wrapEvaluationError("cel", "id == 1", 3, partial)
	if !errors.As(wrapped, &evalErr) || evalErr.Engine != "cel" || evalErr.Expr != "id == 1" || evalErr.EntityID != 3 {
		t.Fatalf("expected missing metadata to be filled, got %+v", evalErr)
	}
}

func TestWrapEvaluatorErrorPrefixes(t *testing.T) {
	if wrapEvaluatorError("expr", nil) != nil {
		t.Fatal("nil error should stay nil")
	}
	err := wrapEvaluatorError("expr", errors.New("bad"))
	if err.Error() != "guard: expr evaluator: bad" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	again := wrapEvaluatorError("expr", err)
	if again.Error() != err.Error() {
		t.Fatalf("expected prefixed error to pass through, got %q", again.Error())
	}
}

func TestEvaluationErrorNilSafe(t *testing.T) {
	var err *EvaluationError
	if err.Error() != "<nil>" || err.Unwrap() != nil {
		t.Fatal("nil EvaluationError should be safe")
	}
}
