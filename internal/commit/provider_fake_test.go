package commit

import (
	"errors"
	"io"

	"github.com/revtrace/revtrace/internal/gitrepo"
)

type fakeProvider struct {
	repoPath string

	logFunc                func() (gitrepo.LogStream, error)
	revListFunc            func(revspec string, opts gitrepo.RevListOptions) ([]string, error)
	branchesContainingFunc func(revision string) ([]string, error)
}

func (f *fakeProvider) RepoPath() string { return f.repoPath }

func (f *fakeProvider) Log() (gitrepo.LogStream, error) {
	if f.logFunc != nil {
		return f.logFunc()
	}
	return nil, errors.New("unexpected Log call")
}

func (f *fakeProvider) RevList(revspec string, opts gitrepo.RevListOptions) ([]string, error) {
	if f.revListFunc != nil {
		return f.revListFunc(revspec, opts)
	}
	return nil, errors.New("unexpected RevList call")
}

func (f *fakeProvider) BranchesContaining(revision string) ([]string, error) {
	if f.branchesContainingFunc != nil {
		return f.branchesContainingFunc(revision)
	}
	return nil, errors.New("unexpected BranchesContaining call")
}

func (f *fakeProvider) Remotes() ([]string, error) {
	return nil, errors.New("unexpected Remotes call")
}

func (f *fakeProvider) RemoteBranches() ([]string, error) {
	return nil, errors.New("unexpected RemoteBranches call")
}

// fakeLogStream replays a fixed list of raw entries.
type fakeLogStream struct {
	entries []string
	pos     int
	closed  bool
}

func (s *fakeLogStream) Next() (string, error) {
	if s.pos >= len(s.entries) {
		return "", io.EOF
	}
	entry := s.entries[s.pos]
	s.pos++
	return entry, nil
}

func (s *fakeLogStream) Close() error {
	s.closed = true
	return nil
}
