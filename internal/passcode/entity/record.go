package entity

import "time"

const (
	// CodeLength is the number of digits in every issued code.
	CodeLength = 6

	// CodeTTL is how long an issued code stays verifiable.
	CodeTTL = 5 * time.Minute

	// MaxAttempts bounds wrong verifications before a record is exhausted.
	MaxAttempts = 3
)

// Record is the active code issued to one identifier.
type Record struct {
	Identifier   string    `json:"identifier"`
	Code         string    `json:"code"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	AttemptsUsed int       `json:"attempts_used"`
	Consumed     bool      `json:"consumed"`
}

// NewRecord builds a fresh record created at now.
func NewRecord(identifier, code string, now time.Time) Record {
	return Record{
		Identifier: identifier,
		Code:       code,
		CreatedAt:  now,
		ExpiresAt:  now.Add(CodeTTL),
	}
}

// IsExpired reports whether now is strictly after ExpiresAt.
func (r Record) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r Record) IsExhausted() bool {
	return r.AttemptsUsed >= MaxAttempts
}

// AttemptsRemaining never goes below zero.
func (r Record) AttemptsRemaining() int {
	return max(MaxAttempts-r.AttemptsUsed, 0)
}
