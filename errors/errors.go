package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister   Phase = "register"   // module registration
	PhaseLoad       Phase = "load"       // module loading
	PhaseCompress   Phase = "compress"   // compress call
	PhaseDecompress Phase = "decompress" // decompress call
	PhaseRuntime    Phase = "runtime"    // engine and lifecycle operations
	PhaseConfig     Phase = "config"     // configuration validation
)

// Kind categorizes the error
type Kind string

const (
	KindLoadFailure      Kind = "load_failure"
	KindModuleNotReady   Kind = "module_not_ready"
	KindOperationFailure Kind = "operation_failure"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
	KindInvalidData      Kind = "invalid_data"
	KindUnsupported      Kind = "unsupported"
)

// Kind-only sentinels for errors.Is. They match any phase.
var (
	ErrLoadFailure      = &Error{Kind: KindLoadFailure}
	ErrModuleNotReady   = &Error{Kind: KindModuleNotReady}
	ErrOperationFailure = &Error{Kind: KindOperationFailure}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Module string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Module != "" {
		b.WriteString(" module ")
		b.WriteString(e.Module)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// IsKind reports whether err carries kind anywhere in its chain
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Module sets the module name
func (b *Builder) Module(name string) *Builder {
	b.err.Module = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// LoadFailure creates an error for a module whose load call failed
func LoadFailure(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoadFailure,
		Module: module,
		Detail: "load module",
		Cause:  cause,
	}
}

// NotReady creates an error for an operation attempted on a module that is not ready
func NotReady(phase Phase, module string, state fmt.Stringer) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindModuleNotReady,
		Module: module,
		Detail: fmt.Sprintf("module is %s", state),
		Value:  state,
	}
}

// OperationFailure creates an error for a failed compress/decompress call
func OperationFailure(phase Phase, module string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOperationFailure,
		Module: module,
		Detail: string(phase) + " failed",
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Module: name,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, module, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Module: module,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingExport describes one codec ABI export a WASM module lacks or declares
// with the wrong signature.
type MissingExport struct {
	Name string // e.g., "compress"
	Want string // e.g., "func(i32, i32, i32) -> i64"
	Got  string // empty when the export is absent
}

// MissingExportsError is returned when a WASM module does not satisfy the codec ABI
type MissingExportsError struct {
	Module  string
	Exports []MissingExport
}

func (e *MissingExportsError) Error() string {
	if len(e.Exports) == 0 {
		return "[load] load_failure: no exports specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "module %s does not implement the codec ABI (%d export(s)):\n", e.Module, len(e.Exports))

	for _, ex := range e.Exports {
		b.WriteString("\n  - ")
		b.WriteString(ex.Name)
		b.WriteString(": want ")
		b.WriteString(ex.Want)
		if ex.Got == "" {
			b.WriteString(", missing")
		} else {
			b.WriteString(", got ")
			b.WriteString(ex.Got)
		}
	}

	return b.String()
}

// Is reports whether target matches this error type.
// It also matches the load-failure sentinel.
func (e *MissingExportsError) Is(target error) bool {
	switch t := target.(type) {
	case *MissingExportsError:
		return true
	case *Error:
		return t.Kind == KindLoadFailure && (t.Phase == "" || t.Phase == PhaseLoad)
	}
	return false
}
