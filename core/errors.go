package core

// FieldError describes what is wrong with one input field, keyed by its JSON name.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a client input error detected past struct validation, e.g. a taken username.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return "invalid input"
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() error { return err.Err }

// FieldMap returns the messages by field name, nil if the error is not tied to fields.
func (err *ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	m := make(map[string]string, len(err.Fields))
	for _, fe := range err.Fields {
		m[fe.Field] = fe.Error
	}
	return m
}
