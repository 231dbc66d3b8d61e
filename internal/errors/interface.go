package errors

// ErrorCode names one failure class; codes.go holds the table.
type ErrorCode string

// Error is the domain error carried through the daemon: a code for
// matching, an optional message override, optional data and a wrapped
// cause.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory builds domain errors. Call sites construct one locally via New.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
