// Package textio reads inputs for counting and writes rendered reports.
// The path "-" stands for standard input or standard output.
package textio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvandessel/wordcount/internal/pathutil"
)

// Stdio is the path that selects stdin for reads and stdout for writes.
const Stdio = "-"

// Overridable for tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// ReadAll returns the full contents of path as one string.
func ReadAll(path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadLines returns the lines of path. "\r\n", "\n" and "\r" all end a line,
// and a terminator at the very end of the file does not start another line.
func ReadLines(path string) ([]string, error) {
	text, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// SplitLines splits text into lines the way ReadLines does.
func SplitLines(text string) []string {
	lines := []string{}
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i])
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	return lines
}

// WriteFile writes text to path verbatim, creating parent directories.
func WriteFile(path, text string) error {
	if path == Stdio {
		if _, err := io.WriteString(stdout, text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", pathutil.RedactPath(path), err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", pathutil.RedactPath(path), err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	if path == Stdio {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pathutil.RedactPath(path), err)
	}
	return data, nil
}
