package commit

// RevisionLength is the ASCII length of a full SHA-1 revision id.
const RevisionLength = 40

// SVNInfo is the migration metadata git-svn embeds in converted commits.
type SVNInfo struct {
	URL      string
	Revision uint32
}

// Commit is one parsed history entry. It is never mutated after parsing;
// the index and search results hold references into the collection that
// produced it.
type Commit struct {
	Revision string
	Parents  []string
	SVN      *SVNInfo

	// Tickets are the issue-tracker ids found in the message, in order of
	// first mention.
	Tickets []string
	// ReferencedRevisions are other revision ids (full or abbreviated)
	// mentioned in the message body.
	ReferencedRevisions []string
	// ReferencedSVNRevisions are SVN revision numbers mentioned in the
	// message body, with numeric ranges expanded.
	ReferencedSVNRevisions []uint32

	// LikelyMerge marks commits that probably reapply or integrate another
	// commit's change. It is a best-effort classification, not exact.
	LikelyMerge bool
}

// IsStructuralMerge reports whether the commit has more than one parent.
func (c *Commit) IsStructuralMerge() bool {
	return len(c.Parents) > 1
}
