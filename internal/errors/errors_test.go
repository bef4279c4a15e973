package errors

import (
	stderrors "errors"
	"testing"
)

// TestErrorMessage verifies Error() formatting with and without a wrapped error
func TestErrorMessage(t *testing.T) {
	plain := Validation("name too short")
	if plain.Error() != "name too short" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "name too short")
	}

	inner := stderrors.New("disk full")
	wrapped := Wrap(inner, ErrInternal, "save failed")
	if wrapped.Error() != "save failed: disk full" {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), "save failed: disk full")
	}
}

// TestUnwrap verifies errors.Is works through the wrapper
func TestUnwrap(t *testing.T) {
	inner := stderrors.New("boom")
	wrapped := Internal(inner)

	if !stderrors.Is(wrapped, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

// TestKinds verifies each constructor assigns the right kind
func TestKinds(t *testing.T) {
	cases := []struct {
		err  *Error
		want Kind
	}{
		{NotFound("x"), ErrNotFound},
		{NotFoundf("%s", "x"), ErrNotFound},
		{Validation("x"), ErrValidation},
		{Validationf("%s", "x"), ErrValidation},
		{Conflict("x"), ErrConflict},
		{Conflictf("%s", "x"), ErrConflict},
		{Unauthorized("x"), ErrUnauthorized},
		{Internal(stderrors.New("x")), ErrInternal},
	}

	for _, c := range cases {
		if c.err.Kind != c.want {
			t.Errorf("kind = %v, want %v for %q", c.err.Kind, c.want, c.err.Message)
		}
	}
}

// TestKindOf verifies classification of app and foreign errors
func TestKindOf(t *testing.T) {
	if KindOf(Conflict("taken")) != ErrConflict {
		t.Error("KindOf should report ErrConflict")
	}
	if KindOf(stderrors.New("plain")) != ErrInternal {
		t.Error("KindOf should report ErrInternal for foreign errors")
	}
}
