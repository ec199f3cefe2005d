package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/passcode/internal/pkg/goroutine.(*Manager).Go.func1.1()
	/src/passcode/internal/pkg/goroutine/goroutine.go:61 +0x85
panic({0x1, 0x2})
	/usr/local/go/src/runtime/panic.go:785 +0x132
github.com/shandysiswandi/passcode/internal/passcode/inbound.(*Sweeper).Run()
	/src/passcode/internal/passcode/inbound/sweeper.go:42 +0x1d
`)

	got := InternalPaths(stack)

	assert.Equal(t, []string{
		"internal/pkg/goroutine/goroutine.go:61",
		"internal/passcode/inbound/sweeper.go:42",
	}, got)
}

func TestInternalPaths_None(t *testing.T) {
	assert.Empty(t, InternalPaths([]byte("runtime/debug.Stack()\n\t/usr/local/go/src/runtime/debug/stack.go:26 +0x5e\n")))
}
