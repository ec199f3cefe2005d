package uid

import "github.com/google/uuid"

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// StringIDFunc adapts an ordinary function to StringID.
type StringIDFunc func() string

// Generate calls f.
func (f StringIDFunc) Generate() string {
	return f()
}

// NewUUID returns a generator of time ordered (version 7) UUID strings.
// A random version 4 UUID is returned if the v7 clock sequence fails.
func NewUUID() StringIDFunc {
	return func() string {
		if id, err := uuid.NewV7(); err == nil {
			return id.String()
		}
		return uuid.NewString()
	}
}

// Static returns a generator that always yields id.
func Static(id string) StringIDFunc {
	return func() string { return id }
}
