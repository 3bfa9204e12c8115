package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseInit     Phase = "init"     // channel binding
	PhaseRegister Phase = "register" // registry population
	PhaseEncode   Phase = "encode"   // Go to wire
	PhaseDecode   Phase = "decode"   // wire to Go
	PhaseValidate Phase = "validate" // coverage checks
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedType    Kind = "unsupported_type"
	KindWrongMode          Kind = "wrong_mode"
	KindAlreadyInitialised Kind = "already_initialised"
	KindInvalidStream      Kind = "invalid_stream"
	KindMalformedStream    Kind = "malformed_stream"
	KindNotInitialized     Kind = "not_initialized"
	KindRegistration       Kind = "registration"
	KindTypeMismatch       Kind = "type_mismatch"
	KindOverflow           Kind = "overflow"
	KindIO                 Kind = "io"
	KindInvalidInput       Kind = "invalid_input"
)

// Error is the structured error type used throughout wirechan
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Wire   string
	Detail string
	Path   []string
}

// Error renders as "<phase> <kind> at <path> (<go type> as <wire>): <detail>: <cause>",
// leaving out the parts that are unset.
func (e *Error) Error() string {
	head := string(e.Phase) + " " + string(e.Kind)
	if len(e.Path) > 0 {
		head += " at " + strings.Join(e.Path, ".")
	}
	switch {
	case e.GoType != "" && e.Wire != "":
		head += fmt.Sprintf(" (%s as %s)", e.GoType, e.Wire)
	case e.GoType != "":
		head += " (" + e.GoType + ")"
	case e.Wire != "":
		head += " (as " + e.Wire + ")"
	}

	parts := []string{head}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
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

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &Error{Kind: kind})
}

// Builder assembles an Error for the codec paths that need more than the
// fixed constructors below.
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

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Wire sets the wire shape
func (b *Builder) Wire(t string) *Builder {
	b.err.Wire = t
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

// UnsupportedType creates an error for a type with no registered codec
func UnsupportedType(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedType,
		GoType: goType,
		Detail: "no codec registered",
	}
}

// WrongMode creates an error for an operation against the channel's direction
func WrongMode(phase Phase, bound, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindWrongMode,
		Detail: fmt.Sprintf("channel bound for %s, operation needs %s", bound, want),
	}
}

// AlreadyInitialised creates an error for a second bind of the same channel
func AlreadyInitialised(bound string) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindAlreadyInitialised,
		Detail: fmt.Sprintf("channel already bound for %s", bound),
	}
}

// InvalidStream creates an error for an unusable backing stream
func InvalidStream(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindInvalidStream,
		Detail: detail,
	}
}

// Malformed creates a malformed stream error
func Malformed(phase Phase, path []string, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedStream,
		Path:   path,
		Detail: detail,
	}
}

// UnexpectedEnd creates a malformed stream error for data that ran out early
func UnexpectedEnd(offset int64, want int, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformedStream,
		Detail: fmt.Sprintf("unexpected end of stream at offset %d (need %d bytes)", offset, want),
		Value:  offset,
		Cause:  cause,
	}
}

// BadLength creates a malformed stream error for a corrupt length or count prefix
func BadLength(path []string, length int32, limit int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformedStream,
		Path:   path,
		Detail: fmt.Sprintf("length %d outside [0, %d]", length, limit),
		Value:  length,
	}
}

// IO wraps a failure of the backing stream
func IO(phase Phase, offset int64, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: fmt.Sprintf("stream failure at offset %d", offset),
		Value:  offset,
		Cause:  cause,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, wire string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Wire:   wire,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Wire:   target,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// NotInitialized creates a not-initialized error for an unbound channel
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
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

// Registration creates a registration error
func Registration(goType, detail string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		GoType: goType,
		Detail: detail,
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
