package gitrepo

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// RemoteBranchDatabase maps a remote name to the set of branch names it
// carries.
type RemoteBranchDatabase map[string]map[string]bool

// Matches the revspec pieces that are not ref names: whitespace, range dots,
// reflog selectors and traversal operators.
var revspecSeparatorPattern = regexp.MustCompile(`\s+|\.{2,3}|@\{.*\}|\^(?:-\d+|[!@])?|[~?\[]`)

// BuildRemoteBranchDatabase collects the remote branches of the repository,
// keyed by remote. Longer remote names are matched first so that a remote
// named "origin-fork" does not get swallowed by "origin".
func BuildRemoteBranchDatabase(provider Provider) (RemoteBranchDatabase, error) {
	const headMarkerArrow = "HEAD -> "

	remotes, err := provider.Remotes()
	if err != nil {
		return nil, fmt.Errorf("get remotes: %w", err)
	}
	sort.Slice(remotes, func(i, j int) bool {
		return len(remotes[i]) > len(remotes[j])
	})

	branches, err := provider.RemoteBranches()
	if err != nil {
		return nil, fmt.Errorf("get remote branches: %w", err)
	}

	database := make(RemoteBranchDatabase)
	for _, line := range branches {
		line = strings.TrimSpace(line)
		if strings.Contains(line, headMarkerArrow) {
			continue
		}
		for _, remote := range remotes {
			if strings.HasPrefix(line, remote+"/") {
				branch := line[len(remote)+1:]
				if database[remote] == nil {
					database[remote] = make(map[string]bool)
				}
				database[remote][branch] = true
				break
			}
		}
	}
	return database, nil
}

// UpstreamRevspec rewrites every ref in the revspec that names a remote
// branch to its remote-qualified form, leaving everything else untouched.
func UpstreamRevspec(database RemoteBranchDatabase, revspec string) string {
	var result strings.Builder
	result.Grow(len(revspec) * 2)

	lastIndex := 0
	for _, loc := range revspecSeparatorPattern.FindAllStringIndex(revspec, -1) {
		ref := revspec[lastIndex:loc[0]]
		separator := revspec[loc[0]:loc[1]]
		lastIndex = loc[1]

		if ref != "" {
			result.WriteString(upstreamRef(database, ref))
		}
		result.WriteString(separator)
	}
	if ref := revspec[lastIndex:]; ref != "" {
		result.WriteString(upstreamRef(database, ref))
	}
	return result.String()
}

func upstreamRef(database RemoteBranchDatabase, ref string) string {
	remotes := make([]string, 0, len(database))
	for remote := range database {
		remotes = append(remotes, remote)
	}
	sort.Strings(remotes)
	for _, remote := range remotes {
		if database[remote][ref] {
			return remote + "/" + ref
		}
	}
	return ref
}
