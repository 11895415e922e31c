package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// ErrLinterNotFound is returned when the lint binary is not installed.
var ErrLinterNotFound = errors.New("man page linter not found")

const defaultLintTimeout = 30 * time.Second

// Linter checks roff output with "mandoc -T lint".
type Linter struct {
	Binary  string
	Timeout time.Duration
}

func NewLinter(binary string) *Linter {
	if binary == "" {
		binary = "mandoc"
	}
	return &Linter{Binary: binary, Timeout: defaultLintTimeout}
}

// Lint returns the diagnostics mandoc reports for content. name replaces
// the "<stdin>" prefix of each message. A non-zero exit with diagnostics
// is not an error.
func (l *Linter) Lint(ctx context.Context, name string, content []byte) ([]string, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultLintTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.Binary, "-T", "lint", "-W", "warning")
	cmd.Stdin = bytes.NewReader(content)
	cmd.WaitDelay = 5 * time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrLinterNotFound, l.Binary)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("lint %s: %w", name, ctx.Err())
	}

	issues := parseLint(name, stdout.String()+stderr.String())
	var exitErr *exec.ExitError
	if runErr != nil && !(errors.As(runErr, &exitErr) && len(issues) > 0) {
		return nil, fmt.Errorf("lint %s: %w", name, runErr)
	}
	return issues, nil
}

func parseLint(name, output string) []string {
	var issues []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// mandoc prefixes messages with "mandoc: " and the input name.
		line = strings.TrimPrefix(line, "mandoc: ")
		if rest, ok := strings.CutPrefix(line, "<stdin>"); ok {
			line = name + rest
		}
		issues = append(issues, line)
	}
	return issues
}
