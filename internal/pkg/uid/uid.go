// Package uid provides the identifier generators used across the service:
// snowflake numbers for entity IDs, UUIDs for correlation IDs and token IDs,
// and opaque object IDs for one-shot secrets such as refresh tokens.
package uid

// NumberID generates int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
