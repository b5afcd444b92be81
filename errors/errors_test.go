package errors

import (
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrState,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(ErrAmount, "too big"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("not found"),
			wantIs: false,
		},
		"not equal to a wrapped stdlib error": {
			a:      ErrNotFound,
			b:      Wrap(fmt.Errorf("not found"), "missing"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is any error nil": {
			a:      nil,
			b:      (*customError)(nil),
			wantIs: true,
		},
		"nil is not not-nil": {
			a:      nil,
			b:      ErrNotFound,
			wantIs: false,
		},
		"not-nil is not nil": {
			a:      ErrNotFound,
			b:      nil,
			wantIs: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result: %v", got)
			}
		})
	}
}

type customError struct{}

func (customError) Error() string {
	return "custom error"
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "wrapping"); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	err := Wrap(Wrap(ErrOverflow, "inner"), "outer")
	if !ErrOverflow.Is(err) {
		t.Fatalf("cause lost: %+v", err)
	}
	const want = "outer: inner: an operation cannot be completed due to value overflow"
	if got := err.Error(); got != want {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestStackTraceAttachedOnce(t *testing.T) {
	err := Wrap(ErrNotFound, "first")
	st := stackTrace(err)
	if st == nil {
		t.Fatal("no stack trace attached")
	}
	// Wrapping again must not overwrite the original trace.
	again := Wrap(err, "second")
	if got := stackTrace(again); fmt.Sprintf("%v", got) != fmt.Sprintf("%v", st) {
		t.Fatal("stack trace was replaced by the outer wrap")
	}
}

func TestRecover(t *testing.T) {
	var err error
	func() {
		defer Recover(&err)
		panic("boom")
	}()
	if !ErrPanic.Is(err) {
		t.Fatalf("want ErrPanic, got %+v", err)
	}
}

func TestRegisterDuplicatedCodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("reusing an error code must panic")
		}
	}()
	Register(2, "my own unauthorized")
}

func TestWrapStdlibError(t *testing.T) {
	err := Wrap(fmt.Errorf("stdlib"), "wrapped")
	if err == nil {
		t.Fatal("nil error")
	}
	if ErrNotFound.Is(err) {
		t.Fatal("must not match an unrelated root")
	}
}
