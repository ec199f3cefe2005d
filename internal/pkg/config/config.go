package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving duration values stored as integers.
type TimeConfig interface {
	// GetMillisecond reads key as an integer count of milliseconds.
	GetMillisecond(key string) time.Duration

	// GetSecond reads key as an integer count of seconds.
	GetSecond(key string) time.Duration

	// GetMinute reads key as an integer count of minutes.
	GetMinute(key string) time.Duration
}

// NumberConfig defines helpers for retrieving numeric values.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetUint16(key string) uint16
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of various types.
// Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool retrieves the configuration value associated with the given key as a bool.
	GetBool(key string) bool

	// GetString retrieves the configuration value associated with the given key as a string.
	GetString(key string) string

	// GetArray retrieves the configuration value associated with the given key as a slice of strings.
	// The value may be a YAML list or a string with format <element1>,<element2>,...
	// Elements are trimmed and empty elements are dropped.
	GetArray(key string) []string
}
