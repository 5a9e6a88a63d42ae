package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/revtrace/revtrace/internal/commit"
	"github.com/revtrace/revtrace/internal/gitrepo"
)

// BranchSet groups the branches that contain exactly the same subset of the
// queried commits.
type BranchSet struct {
	Commits  []*commit.Commit
	Branches []string
}

// LocateBranches asks the provider which branches contain each commit, then
// transposes the answer into one entry per distinct commit subset, largest
// branch set first.
func LocateBranches(provider gitrepo.Provider, commits []*commit.Commit) ([]BranchSet, error) {
	commitsPerBranch := make(map[string][]*commit.Commit)
	for _, c := range commits {
		branches, err := provider.BranchesContaining(c.Revision)
		if err != nil {
			return nil, fmt.Errorf("get branches containing %s: %w", c.Revision, err)
		}
		for _, branch := range branches {
			commitsPerBranch[branch] = append(commitsPerBranch[branch], c)
		}
	}

	setsByKey := make(map[string]*BranchSet)
	for branch, set := range commitsPerBranch {
		key := commitSetKey(set)
		entry, exists := setsByKey[key]
		if !exists {
			entry = &BranchSet{Commits: set}
			setsByKey[key] = entry
		}
		entry.Branches = append(entry.Branches, branch)
	}

	sets := make([]BranchSet, 0, len(setsByKey))
	for _, entry := range setsByKey {
		sort.Strings(entry.Branches)
		sets = append(sets, *entry)
	}
	// Largest branch sets first; ties broken by name to keep the output
	// stable.
	sort.Slice(sets, func(i, j int) bool {
		if len(sets[i].Branches) != len(sets[j].Branches) {
			return len(sets[i].Branches) > len(sets[j].Branches)
		}
		return sets[i].Branches[0] < sets[j].Branches[0]
	})
	return sets, nil
}

func commitSetKey(commits []*commit.Commit) string {
	revisions := make([]string, 0, len(commits))
	for _, c := range commits {
		revisions = append(revisions, c.Revision)
	}
	return strings.Join(revisions, "\n")
}
