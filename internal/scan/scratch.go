package scan

import (
	"fmt"
	"os"
)

// WithScratch writes content to a fresh temp file, hands its path to fn and
// removes the file before returning, whatever fn does.
func WithScratch(pattern string, content []byte, fn func(path string) error) error {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return fmt.Errorf("failed to create scratch file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close scratch file: %w", err)
	}

	return fn(path)
}
