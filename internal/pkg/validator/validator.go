package validator

// Validator validates a struct against its field tags.
type Validator interface {
	// Validate returns nil when data passes all rules; otherwise an error
	// carrying a field-to-message map.
	Validate(data any) error
}
