package validator

// Validator validates structs annotated with `validate` tags.
type Validator interface {
	// Validate returns nil when data satisfies its rules, or an error that
	// describes every violated field.
	Validate(data any) error
}
