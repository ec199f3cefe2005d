// Package otp generates short numeric one-time codes.
//
// Numeric draws every digit independently and uniformly from crypto/rand, so
// leading zeros are as likely as any other digit and the code is returned as a
// string. Static returns a fixed code and exists for local development only.
package otp
