package search

import (
	"errors"

	"github.com/revtrace/revtrace/internal/gitrepo"
)

// fakeProvider returns canned answers for the methods a test overrides and
// fails loudly for everything else.
type fakeProvider struct {
	revListFunc            func(revspec string, opts gitrepo.RevListOptions) ([]string, error)
	branchesContainingFunc func(revision string) ([]string, error)
}

func (f *fakeProvider) RepoPath() string { return "/fake" }

func (f *fakeProvider) Log() (gitrepo.LogStream, error) {
	return nil, errors.New("fakeProvider: Log not implemented")
}

func (f *fakeProvider) RevList(revspec string, opts gitrepo.RevListOptions) ([]string, error) {
	if f.revListFunc == nil {
		return nil, errors.New("fakeProvider: RevList not implemented")
	}
	return f.revListFunc(revspec, opts)
}

func (f *fakeProvider) BranchesContaining(revision string) ([]string, error) {
	if f.branchesContainingFunc == nil {
		return nil, errors.New("fakeProvider: BranchesContaining not implemented")
	}
	return f.branchesContainingFunc(revision)
}

func (f *fakeProvider) Remotes() ([]string, error) {
	return nil, errors.New("fakeProvider: Remotes not implemented")
}

func (f *fakeProvider) RemoteBranches() ([]string, error) {
	return nil, errors.New("fakeProvider: RemoteBranches not implemented")
}
