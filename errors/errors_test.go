package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeState string

func (s fakeState) String() string { return string(s) }

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseCompress,
				Kind:   KindOperationFailure,
				Module: "zstd",
				Detail: "compress failed",
			},
			contains: []string{"[compress]", "operation_failure", "module zstd", "compress failed"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLoad,
				Kind:  KindLoadFailure,
			},
			contains: []string{"[load]", "load_failure"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindInvalidData,
				Detail: "read output",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[runtime]", "invalid_data", "read output", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := LoadFailure("snappy", cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseCompress,
		Kind:   KindModuleNotReady,
		Module: "zstd",
	}

	if !err.Is(&Error{Phase: PhaseCompress, Kind: KindModuleNotReady}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseDecompress, Kind: KindModuleNotReady}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseCompress, Kind: KindOperationFailure}) {
		t.Error("Is should not match different kind")
	}

	if !errors.Is(err, ErrModuleNotReady) {
		t.Error("errors.Is should match the kind-only sentinel")
	}
	if errors.Is(err, ErrLoadFailure) {
		t.Error("errors.Is should not match another sentinel")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.Is(wrapped, ErrModuleNotReady) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("ctx: %w", OperationFailure(PhaseDecompress, "lz4", errors.New("bad frame")))

	if !IsKind(err, KindOperationFailure) {
		t.Error("IsKind should find operation_failure")
	}
	if IsKind(err, KindLoadFailure) {
		t.Error("IsKind should not find load_failure")
	}
	if IsKind(errors.New("plain"), KindOperationFailure) {
		t.Error("IsKind should report false for plain errors")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCompress, KindInvalidInput).
		Module("zstd").
		Value(40).
		Cause(cause).
		Detail("level %d out of range", 40).
		Build()

	if err.Phase != PhaseCompress {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCompress)
	}
	if err.Kind != KindInvalidInput {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
	}
	if err.Module != "zstd" {
		t.Errorf("Module = %q, want zstd", err.Module)
	}
	if err.Value != 40 {
		t.Errorf("Value = %v, want 40", err.Value)
	}
	if err.Detail != "level 40 out of range" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("LoadFailure", func(t *testing.T) {
		err := LoadFailure("zstd", errors.New("boom"))
		if err.Kind != KindLoadFailure || err.Phase != PhaseLoad {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("NotReady", func(t *testing.T) {
		err := NotReady(PhaseDecompress, "snappy", fakeState("loading"))
		if err.Kind != KindModuleNotReady {
			t.Errorf("Kind = %v, want %v", err.Kind, KindModuleNotReady)
		}
		if !strings.Contains(err.Detail, "loading") {
			t.Errorf("Detail = %q, should mention state", err.Detail)
		}
	})

	t.Run("OperationFailure", func(t *testing.T) {
		err := OperationFailure(PhaseCompress, "lz4", errors.New("boom"))
		if err.Kind != KindOperationFailure {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOperationFailure)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseCompress, "module", "nope")
		if err.Kind != KindNotFound || !strings.Contains(err.Detail, `"nope"`) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("InvalidData", func(t *testing.T) {
		err := InvalidData(PhaseRuntime, "store", "compress result")
		if err.Kind != KindInvalidData || err.Module != "store" {
			t.Errorf("got %v", err)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseConfig, "kind \"plugin\"")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})
}

func TestMissingExportsError(t *testing.T) {
	t.Run("grouped output", func(t *testing.T) {
		err := &MissingExportsError{
			Module: "custom",
			Exports: []MissingExport{
				{Name: "alloc", Want: "func(i32) -> i32"},
				{Name: "compress", Want: "func(i32, i32, i32) -> i64", Got: "func(i32, i32) -> i64"},
			},
		}
		msg := err.Error()
		for _, s := range []string{"custom", "2 export(s)", "alloc", "missing", "got func(i32, i32) -> i64"} {
			if !strings.Contains(msg, s) {
				t.Errorf("message %q does not contain %q", msg, s)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		err := &MissingExportsError{}
		if !strings.Contains(err.Error(), "no exports") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("matches load failure", func(t *testing.T) {
		var err error = &MissingExportsError{Module: "m"}
		if !errors.Is(err, ErrLoadFailure) {
			t.Error("should match ErrLoadFailure")
		}
		if errors.Is(err, ErrModuleNotReady) {
			t.Error("should not match ErrModuleNotReady")
		}
		var target *MissingExportsError
		if !errors.As(fmt.Errorf("wrap: %w", err), &target) {
			t.Error("errors.As should find MissingExportsError")
		}
	})
}
