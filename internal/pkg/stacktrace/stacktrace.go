package stacktrace

import "strings"

// InternalPaths extracts "internal/..../file.go:line" frames from a raw
// debug.Stack() dump, dropping runtime and third-party frames.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		end := idx + len(".go:")
		for end < len(line) && line[end] >= '0' && line[end] <= '9' {
			end++
		}

		_, rel, found := strings.Cut(line[:end], "/internal/")
		if !found {
			continue
		}
		paths = append(paths, "internal/"+rel)
	}

	return paths
}
