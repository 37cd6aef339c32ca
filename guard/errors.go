package guard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRejected is returned by Guard.Check when the rule evaluates to false.
var ErrRejected = errors.New("guard: entity rejected")

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine   string
	Expr     string
	EntityID int64
	Err      error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("guard: %s evaluator %s entity=%d: %v", e.Engine, describeExpression(e.Expr), e.EntityID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "guard:") {
		return err
	}
	return fmt.Errorf("guard: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr string, id int64, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.EntityID == 0 {
			evalErr.EntityID = id
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:   engine,
		Expr:     expr,
		EntityID: id,
		Err:      err,
	}
}
