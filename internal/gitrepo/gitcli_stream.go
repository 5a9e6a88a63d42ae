package gitrepo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"unicode/utf8"
)

type gitLogStream struct {
	cancel context.CancelFunc
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	r      *bufio.Reader

	waitOnce sync.Once
	waitErr  error
}

// Log streams the complete reachable history of the repository.
func (g *gitCLI) Log() (LogStream, error) {
	if g == nil || g.path == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	// NUL-delimited records; commit message cannot contain NUL.
	const format = "%H%n%P%n%s%n%b%x00"

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(
		ctx,
		"git",
		"--no-pager",
		"-C",
		g.path,
		"log",
		"--all",
		"--reflog",
		"--full-history",
		"--no-color",
		"--no-decorate",
		// Use tformat to avoid git log adding an extra newline after each record.
		"--pretty=tformat:"+format,
	)
	var stream gitLogStream
	stream.cancel = cancel
	stream.cmd = cmd
	cmd.Stderr = &stream.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("git log stdout: %w", err)
	}
	stream.stdout = stdout
	stream.r = bufio.NewReader(stdout)
	if err := cmd.Start(); err != nil {
		cancel()
		_ = stdout.Close()
		if stream.stderr.Len() > 0 {
			return nil, fmt.Errorf("git log start: %v: %s", err, strings.TrimSpace(stream.stderr.String()))
		}
		return nil, fmt.Errorf("git log start: %w", err)
	}
	return &stream, nil
}

func (s *gitLogStream) Next() (string, error) {
	rec, err := s.r.ReadBytes(0)
	if err != nil {
		if err == io.EOF {
			if waitErr := s.wait(); waitErr != nil {
				return "", waitErr
			}
			return "", io.EOF
		}
		return "", err
	}
	if len(rec) == 0 {
		return "", io.EOF
	}
	// Strip trailing NUL.
	rec = rec[:len(rec)-1]
	// git log prints a newline between commits even when the format ends with NUL,
	// so subsequent records can start with '\n'.
	for len(rec) > 0 && (rec[0] == '\n' || rec[0] == '\r') {
		rec = rec[1:]
	}
	if len(rec) == 0 {
		return "", fmt.Errorf("unexpected empty git log record")
	}
	if !utf8.Valid(rec) {
		return "", fmt.Errorf("git log: record is not valid UTF-8")
	}
	return string(rec), nil
}

func (s *gitLogStream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.stdout != nil {
		_ = s.stdout.Close()
	}
	return s.wait()
}

func (s *gitLogStream) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
	})
	if s.waitErr == nil {
		return nil
	}
	if s.stderr.Len() > 0 {
		return fmt.Errorf("git log: %v: %s", s.waitErr, strings.TrimSpace(s.stderr.String()))
	}
	return fmt.Errorf("git log: %w", s.waitErr)
}
