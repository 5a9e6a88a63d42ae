package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revtrace/revtrace/internal/commit"
	"github.com/revtrace/revtrace/internal/gitrepo"
)

func node(c *commit.Commit, linked ...*IncludedCommit) *IncludedCommit {
	return &IncludedCommit{Commit: c, Linked: linked}
}

func TestCompareByRevspecs(t *testing.T) {
	t.Parallel()

	commitA := &commit.Commit{Revision: revA, ReferencedRevisions: []string{revC}}
	commitB := &commit.Commit{Revision: revB}
	commitC := &commit.Commit{Revision: revC}
	idx := buildIndex(t, []*commit.Commit{commitA, commitB, commitC})

	provider := &fakeProvider{
		revListFunc: func(revspec string, _ gitrepo.RevListOptions) ([]string, error) {
			switch revspec {
			case "x ^y":
				return []string{revA}, nil
			case "y ^x":
				return []string{revB}, nil
			}
			t.Errorf("unexpected revspec %q", revspec)
			return nil, nil
		},
	}

	a, b, err := CompareByRevspecs(idx, provider, "x ^y", "y ^x", gitrepo.RevListOptions{}, Options{Direction: Forward})
	require.NoError(t, err)
	require.Equal(t, []string{revA}, forestRevisions(a))
	require.Len(t, a[0].Linked, 1, "forward references still expand")
	require.Equal(t, []string{revB}, forestRevisions(b))
}

func TestCompareByRevspecsQueriesProviderSequentially(t *testing.T) {
	t.Parallel()

	commitA := &commit.Commit{Revision: revA}
	commitB := &commit.Commit{Revision: revB}
	idx := buildIndex(t, []*commit.Commit{commitA, commitB})

	// Providers make no concurrency promises, so the two history queries must
	// never overlap in time.
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	provider := &fakeProvider{
		revListFunc: func(revspec string, _ gitrepo.RevListOptions) ([]string, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
			if revspec == "x ^y" {
				return []string{revA}, nil
			}
			return []string{revB}, nil
		},
	}

	_, _, err := CompareByRevspecs(idx, provider, "x ^y", "y ^x", gitrepo.RevListOptions{}, Options{Direction: Forward})
	require.NoError(t, err)
	assert.Equal(t, 1, maxInFlight, "history queries overlapped")
}

func TestDeduplicateRemovesCherryPickOriginal(t *testing.T) {
	t.Parallel()

	original := &commit.Commit{Revision: revB}
	merge := &commit.Commit{Revision: revA, ReferencedRevisions: []string{revB}, LikelyMerge: true}

	a := []*IncludedCommit{node(merge, node(original))}
	b := []*IncludedCommit{node(original), node(&commit.Commit{Revision: revC})}

	outA, outB := Deduplicate(a, b)

	require.Len(t, outA, 1, "the merge stays in its own set")
	assert.Equal(t, revA, outA[0].Commit.Revision)
	require.Len(t, outB, 1, "the original is dropped from the other set")
	assert.Equal(t, revC, outB[0].Commit.Revision)
}

func TestDeduplicateIsSymmetric(t *testing.T) {
	t.Parallel()

	originalInA := &commit.Commit{Revision: revC}
	mergeInB := &commit.Commit{Revision: revD, ReferencedRevisions: []string{revC}, LikelyMerge: true}

	a := []*IncludedCommit{node(originalInA)}
	b := []*IncludedCommit{node(mergeInB, node(originalInA))}

	outA, outB := Deduplicate(a, b)

	assert.Empty(t, outA)
	require.Len(t, outB, 1)
	assert.Equal(t, revD, outB[0].Commit.Revision)
}

func TestDeduplicateIgnoresNonMergeReferences(t *testing.T) {
	t.Parallel()

	// A plain mention is not a cherry-pick; nothing may be removed.
	mentioned := &commit.Commit{Revision: revB}
	mentioner := &commit.Commit{Revision: revA, ReferencedRevisions: []string{revB}}

	a := []*IncludedCommit{node(mentioner, node(mentioned))}
	b := []*IncludedCommit{node(mentioned)}

	outA, outB := Deduplicate(a, b)
	assert.Len(t, outA, 1)
	assert.Len(t, outB, 1)
}

func TestDeduplicateSkipsReferencesOfRemovedNodes(t *testing.T) {
	t.Parallel()

	// B's merge is itself removed as a cherry-pick original, so its linked
	// children must not knock anything out of A.
	sharedMerge := &commit.Commit{Revision: revB, ReferencedRevisions: []string{revC}, LikelyMerge: true}
	child := &commit.Commit{Revision: revC}
	outerMerge := &commit.Commit{Revision: revA, ReferencedRevisions: []string{revB}, LikelyMerge: true}

	a := []*IncludedCommit{node(outerMerge, node(sharedMerge)), node(child)}
	b := []*IncludedCommit{node(sharedMerge, node(child))}

	outA, outB := Deduplicate(a, b)

	assert.Equal(t, []string{revA, revC}, forestRevisions(outA))
	assert.Empty(t, outB)
}

func TestDeduplicateLeavesDisjointSetsAlone(t *testing.T) {
	t.Parallel()

	a := []*IncludedCommit{node(&commit.Commit{Revision: revA})}
	b := []*IncludedCommit{node(&commit.Commit{Revision: revB})}

	outA, outB := Deduplicate(a, b)
	assert.Equal(t, []string{revA}, forestRevisions(outA))
	assert.Equal(t, []string{revB}, forestRevisions(outB))
}
