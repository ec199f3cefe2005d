// Package clock provides a tiny time abstraction.
//
// Code that reasons about expiry depends on the Clocker interface instead of
// calling time.Now() directly. Tests drive a Fake clock so expiry boundaries
// can be hit exactly.
package clock
