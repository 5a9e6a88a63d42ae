package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revtrace/revtrace/internal/commit"
	"github.com/revtrace/revtrace/internal/gitrepo"
	"github.com/revtrace/revtrace/internal/index"
)

func TestByRevspec(t *testing.T) {
	t.Parallel()

	commitA := &commit.Commit{Revision: revA, ReferencedRevisions: []string{revB}}
	commitB := &commit.Commit{Revision: revB}
	idx := buildIndex(t, []*commit.Commit{commitA, commitB})

	provider := &fakeProvider{
		revListFunc: func(revspec string, opts gitrepo.RevListOptions) ([]string, error) {
			assert.Equal(t, "main ^release", revspec)
			assert.Equal(t, []string{"docs"}, opts.Paths)
			return []string{revA}, nil
		},
	}

	forest, err := ByRevspec(idx, provider, "main ^release",
		gitrepo.RevListOptions{Paths: []string{"docs"}}, Options{Direction: Forward})
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, revA, forest[0].Commit.Revision)
	require.Len(t, forest[0].Linked, 1)
	assert.Equal(t, revB, forest[0].Linked[0].Commit.Revision)
}

func TestByRevspecUnknownResult(t *testing.T) {
	t.Parallel()

	idx := buildIndex(t, []*commit.Commit{{Revision: revA}})
	provider := &fakeProvider{
		revListFunc: func(string, gitrepo.RevListOptions) ([]string, error) {
			return []string{revD}, nil
		},
	}

	_, err := ByRevspec(idx, provider, "main", gitrepo.RevListOptions{}, Options{})
	require.ErrorIs(t, err, index.ErrUnknownRevision)
	assert.Contains(t, err.Error(), revD)
}

func TestLocateBranchesGroupsByCommitSet(t *testing.T) {
	t.Parallel()

	commitA := &commit.Commit{Revision: revA}
	commitB := &commit.Commit{Revision: revB}

	branchesByRevision := map[string][]string{
		revA: {"main", "release/1.0", "release/1.1"},
		revB: {"main"},
	}
	provider := &fakeProvider{
		branchesContainingFunc: func(revision string) ([]string, error) {
			return branchesByRevision[revision], nil
		},
	}

	sets, err := LocateBranches(provider, []*commit.Commit{commitA, commitB})
	require.NoError(t, err)
	require.Len(t, sets, 2)

	// Both release branches contain only A; two branches beats one, so that
	// set sorts first.
	assert.Equal(t, []string{"release/1.0", "release/1.1"}, sets[0].Branches)
	assert.Equal(t, []string{revA}, commitRevisions(sets[0].Commits))

	assert.Equal(t, []string{"main"}, sets[1].Branches)
	assert.Equal(t, []string{revA, revB}, commitRevisions(sets[1].Commits))
}

func TestLocateBranchesEmptyInput(t *testing.T) {
	t.Parallel()

	sets, err := LocateBranches(&fakeProvider{}, nil)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func commitRevisions(commits []*commit.Commit) []string {
	revisions := make([]string, 0, len(commits))
	for _, c := range commits {
		revisions = append(revisions, c.Revision)
	}
	return revisions
}
