package container

import (
	"fmt"
	"reflect"
	"strings"
)

// ── Error codes ───────────────────────────────────────────────────────────────

const (
	CodeDuplicateRegistration = "DUPLICATE_REGISTRATION"
	CodeNotRegistered         = "NOT_REGISTERED"
	CodeCircularDependency    = "CIRCULAR_DEPENDENCY"
	CodeNoUsableConstructor   = "NO_USABLE_CONSTRUCTOR"
	CodeAmbiguousConstructor  = "AMBIGUOUS_CONSTRUCTOR"
	CodeLifetimeViolation     = "LIFETIME_VIOLATION"
	CodeInstantiationFailed   = "INSTANTIATION_FAILED"
	CodeInvalidConstructor    = "INVALID_CONSTRUCTOR"
	CodeResolutionFailed      = "RESOLUTION_FAILED"
	CodeReentrantRequest      = "REENTRANT_REQUEST"
)

// Sentinels for errors.Is. They match any *Error carrying the same code.
//
//	if errors.Is(err, container.ErrCircularDependency) { ... }
var (
	ErrDuplicateRegistration = &Error{Code: CodeDuplicateRegistration}
	ErrNotRegistered         = &Error{Code: CodeNotRegistered}
	ErrCircularDependency    = &Error{Code: CodeCircularDependency}
	ErrNoUsableConstructor   = &Error{Code: CodeNoUsableConstructor}
	ErrAmbiguousConstructor  = &Error{Code: CodeAmbiguousConstructor}
	ErrLifetimeViolation     = &Error{Code: CodeLifetimeViolation}
	ErrInstantiationFailed   = &Error{Code: CodeInstantiationFailed}
	ErrInvalidConstructor    = &Error{Code: CodeInvalidConstructor}
	ErrResolutionFailed      = &Error{Code: CodeResolutionFailed}
	ErrReentrantRequest      = &Error{Code: CodeReentrantRequest}
)

// ── Error ─────────────────────────────────────────────────────────────────────

// Error is a registration or resolution fault.
//
// Capability is the type the fault is about. Dependency is set when the
// fault concerns an edge (lifetime violations). Path is the resolution path
// at the time of a circular dependency.
type Error struct {
	Code       string
	Capability reflect.Type
	Dependency reflect.Type
	Path       []reflect.Type
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("container: ")
	if e.Capability != nil {
		b.WriteString("[")
		b.WriteString(typeName(e.Capability))
		b.WriteString("] ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(strings.ToLower(strings.ReplaceAll(e.Code, "_", " ")))
	}
	if len(e.Path) > 0 {
		b.WriteString(" (")
		b.WriteString(formatPath(e.Path))
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code, so sentinels compare equal to any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

func newError(code string, capability reflect.Type, format string, args ...any) *Error {
	return &Error{
		Code:       code,
		Capability: capability,
		Message:    fmt.Sprintf(format, args...),
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func formatPath(path []reflect.Type) string {
	names := make([]string, len(path))
	for i, t := range path {
		names[i] = typeName(t)
	}
	return strings.Join(names, " -> ")
}
