// Package validator provides a small validation abstraction for usecase
// inputs and module dependencies.
//
// Business code depends on the Validator interface. V10Validator is backed by
// go-playground/validator v10 with English messages and snake_case field keys,
// and registers the "identifier" rule (email address or E.164 phone number).
package validator
