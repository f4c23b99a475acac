package loader

// Code is the Loader's typed failure taxonomy, mapped to HTTP status codes
// by the facade layer.
type Code string

const (
	UnsupportedFormat Code = "UnsupportedFormat"
	Malformed         Code = "Malformed"
	EmptyInput        Code = "EmptyInput"
	SchemaConflict    Code = "SchemaConflict"
)

// Error wraps a Loader failure with its taxonomy code.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }
