// Package index builds the read-only lookup structures over a finalized
// commit collection: an ordered revision map supporting unique-prefix
// resolution, the SVN-to-git revision map, and the forward/backward
// reference adjacency derived from commit messages.
package index

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/revtrace/revtrace/internal/commit"
)

var (
	// ErrUnknownRevision is returned when a lookup matches nothing.
	ErrUnknownRevision = errors.New("unknown revision")
	// ErrAmbiguousRevision is returned when a partial revision id matches
	// more than one stored revision.
	ErrAmbiguousRevision = errors.New("ambiguous revision")
)

// Index is built once from a complete commit collection and never mutated
// afterwards, so concurrent read-only queries are safe.
type Index struct {
	byRevision    *treemap.Map // revision id -> *commit.Commit
	svnToRevision map[uint32]string

	forward  map[string][]*commit.Commit
	backward map[string][]*commit.Commit
}

// Build constructs the index. A duplicate revision id is a hard error; a
// duplicate SVN revision number keeps the first mapping and logs the rest.
// References that do not resolve to a commit in the collection are dropped
// with a diagnostic.
func Build(commits []*commit.Commit) (*Index, error) {
	idx := &Index{
		byRevision:    treemap.NewWithStringComparator(),
		svnToRevision: make(map[uint32]string),
		forward:       make(map[string][]*commit.Commit),
		backward:      make(map[string][]*commit.Commit),
	}

	for _, c := range commits {
		if _, exists := idx.byRevision.Get(c.Revision); exists {
			return nil, fmt.Errorf("duplicate revision id %s in commit set", c.Revision)
		}
		idx.byRevision.Put(c.Revision, c)

		if c.SVN != nil {
			if prior, exists := idx.svnToRevision[c.SVN.Revision]; exists {
				slog.Warn("duplicate SVN revision number; keeping the first mapping",
					slog.Uint64("svn_revision", uint64(c.SVN.Revision)),
					slog.String("kept", prior),
					slog.String("dropped", c.Revision))
				continue
			}
			idx.svnToRevision[c.SVN.Revision] = c.Revision
		}
	}

	for _, c := range commits {
		for _, ref := range c.ReferencedRevisions {
			target, err := idx.LookupRevision(ref)
			if err != nil {
				if likelyRealRevision(ref) {
					slog.Debug("unresolved revision reference",
						slog.String("reference", ref),
						slog.String("commit", c.Revision),
						slog.Any("error", err))
				}
				continue
			}
			idx.addEdge(c, target)
		}
		for _, svnRef := range c.ReferencedSVNRevisions {
			target, err := idx.LookupSVNRevision(svnRef)
			if err != nil {
				slog.Debug("unresolved SVN revision reference",
					slog.Uint64("reference", uint64(svnRef)),
					slog.String("commit", c.Revision))
				continue
			}
			idx.addEdge(c, target)
		}
	}

	return idx, nil
}

func (idx *Index) addEdge(from, to *commit.Commit) {
	idx.forward[from.Revision] = append(idx.forward[from.Revision], to)
	idx.backward[to.Revision] = append(idx.backward[to.Revision], from)
}

// LookupRevision resolves a full or partial revision id. It succeeds only if
// exactly one stored revision has the given prefix.
func (idx *Index) LookupRevision(partial string) (*commit.Commit, error) {
	if partial == "" {
		return nil, fmt.Errorf("%w: empty revision", ErrUnknownRevision)
	}
	// The ordered map makes this two O(log n) probes: the first key at or
	// after the prefix, then that key's successor to detect a second match.
	foundKey, foundValue := idx.byRevision.Ceiling(partial)
	if foundKey == nil || !strings.HasPrefix(foundKey.(string), partial) {
		return nil, fmt.Errorf("%w: no commit matches %q", ErrUnknownRevision, partial)
	}
	if nextKey, _ := idx.byRevision.Ceiling(foundKey.(string) + "\x00"); nextKey != nil {
		if strings.HasPrefix(nextKey.(string), partial) {
			return nil, fmt.Errorf("%w: %q matches multiple commits", ErrAmbiguousRevision, partial)
		}
	}
	return foundValue.(*commit.Commit), nil
}

// LookupSVNRevision resolves an SVN revision number to its commit.
func (idx *Index) LookupSVNRevision(svnRevision uint32) (*commit.Commit, error) {
	revision, exists := idx.svnToRevision[svnRevision]
	if !exists {
		return nil, fmt.Errorf("%w: no commit matches SVN revision %d", ErrUnknownRevision, svnRevision)
	}
	value, exists := idx.byRevision.Get(revision)
	if !exists {
		// The SVN map is built from the same commits as the revision map.
		return nil, fmt.Errorf("%w: SVN revision %d maps to missing commit %s", ErrUnknownRevision, svnRevision, revision)
	}
	return value.(*commit.Commit), nil
}

// ForwardReferences returns the commits that c textually references.
func (idx *Index) ForwardReferences(c *commit.Commit) []*commit.Commit {
	return idx.forward[c.Revision]
}

// BackwardReferences returns the commits that textually reference c.
func (idx *Index) BackwardReferences(c *commit.Commit) []*commit.Commit {
	return idx.backward[c.Revision]
}

// Size returns the number of indexed commits.
func (idx *Index) Size() int {
	return idx.byRevision.Size()
}

// SVNMapping is one row of the SVN-to-git revision table.
type SVNMapping struct {
	SVNRevision uint32
	SVNURL      string
	Revision    string
}

// SVNMappings returns the revision table sorted by SVN revision number.
func (idx *Index) SVNMappings() []SVNMapping {
	mappings := make([]SVNMapping, 0, len(idx.svnToRevision))
	for svnRevision, revision := range idx.svnToRevision {
		value, exists := idx.byRevision.Get(revision)
		if !exists {
			continue
		}
		c := value.(*commit.Commit)
		mappings = append(mappings, SVNMapping{
			SVNRevision: svnRevision,
			SVNURL:      c.SVN.URL,
			Revision:    c.Revision,
		})
	}
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].SVNRevision < mappings[j].SVNRevision
	})
	return mappings
}

// likelyRealRevision filters out reference-looking strings that are almost
// certainly not revision ids (pure digits, or one repeated character), to
// keep the unresolved-reference diagnostics useful.
func likelyRealRevision(ref string) bool {
	hasAlpha := strings.ContainsAny(ref, "abcdefABCDEF")
	if !hasAlpha || ref == "" {
		return false
	}
	first := ref[0]
	for i := 1; i < len(ref); i++ {
		if ref[i] != first {
			return true
		}
	}
	return false
}
