package gitrepo

// Provider abstracts access to repository history data.
//
// The default implementation shells out to the git executable, but the interface
// allows alternative implementations (e.g. pure-Go) without changing callers.
//
// Implementations are not required to be safe for concurrent use; callers run
// history queries one at a time.
type Provider interface {
	RepoPath() string

	// Log streams the entire reachable history, one raw entry per commit.
	Log() (LogStream, error)

	// RevList returns the full revision ids matched by revspec, newest first.
	RevList(revspec string, opts RevListOptions) ([]string, error)

	// BranchesContaining returns the short names of the branches that contain
	// the given revision.
	BranchesContaining(revision string) ([]string, error)

	Remotes() ([]string, error)
	RemoteBranches() ([]string, error)
}

// RevListOptions narrows a RevList query.
type RevListOptions struct {
	// IncludeMerges keeps structural merge commits in the result. The default
	// mirrors `git log --no-merges`.
	IncludeMerges bool
	// Paths restricts the result to commits touching at least one of these
	// paths.
	Paths []string
}

// LogStream yields raw history entries until io.EOF. Each entry carries the
// revision id on the first line, the space-separated parent ids on the second
// line, and the commit message (subject + body) on the remaining lines.
type LogStream interface {
	Next() (string, error)
	Close() error
}
