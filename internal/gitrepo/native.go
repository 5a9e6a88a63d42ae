package gitrepo

import (
	"fmt"
	"io"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// native is a pure-Go Provider built on go-git. It avoids the dependency on a
// git executable, at the cost of supporting only the common revspec forms in
// RevList.
type native struct {
	path string
	repo *gitlib.Repository
}

// OpenNative opens the repository at repoPath using go-git.
func OpenNative(repoPath string) (Provider, error) {
	repo, err := gitlib.PlainOpenWithOptions(repoPath, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &native{path: repoPath, repo: repo}, nil
}

func (n *native) RepoPath() string {
	if n == nil {
		return ""
	}
	return n.path
}

func (n *native) Log() (LogStream, error) {
	iter, err := n.repo.Log(&gitlib.LogOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("read commits: %w", err)
	}
	return &nativeLogStream{iter: iter}, nil
}

type nativeLogStream struct {
	iter object.CommitIter
}

func (s *nativeLogStream) Next() (string, error) {
	commit, err := s.iter.Next()
	if err != nil {
		if err == io.EOF {
			return "", io.EOF
		}
		return "", fmt.Errorf("iterate commits: %w", err)
	}
	return formatLogEntry(commit), nil
}

func (s *nativeLogStream) Close() error {
	if s.iter != nil {
		s.iter.Close()
		s.iter = nil
	}
	return nil
}

func formatLogEntry(commit *object.Commit) string {
	parents := make([]string, 0, len(commit.ParentHashes))
	for _, parent := range commit.ParentHashes {
		parents = append(parents, parent.String())
	}
	var b strings.Builder
	b.WriteString(commit.Hash.String())
	b.WriteByte('\n')
	b.WriteString(strings.Join(parents, " "))
	b.WriteByte('\n')
	b.WriteString(strings.TrimRight(commit.Message, "\n"))
	return b.String()
}

func (n *native) RevList(revspec string, opts RevListOptions) ([]string, error) {
	includes, excludes, err := splitRevspec(revspec)
	if err != nil {
		return nil, err
	}
	if len(includes) == 0 {
		return nil, fmt.Errorf("revspec %q selects nothing", revspec)
	}

	excluded := make(map[plumbing.Hash]bool)
	for _, ref := range excludes {
		start, err := n.resolve(ref)
		if err != nil {
			return nil, err
		}
		if err := n.markReachable(start, excluded); err != nil {
			return nil, err
		}
	}

	var logOpts gitlib.LogOptions
	logOpts.Order = gitlib.LogOrderCommitterTime
	if len(opts.Paths) > 0 {
		wanted := make(map[string]bool, len(opts.Paths))
		for _, path := range opts.Paths {
			wanted[path] = true
		}
		logOpts.PathFilter = func(path string) bool {
			if wanted[path] {
				return true
			}
			for prefix := range wanted {
				if strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
					return true
				}
			}
			return false
		}
	}

	var revisions []string
	seen := make(map[plumbing.Hash]bool)
	for _, ref := range includes {
		start, err := n.resolve(ref)
		if err != nil {
			return nil, err
		}
		logOpts.From = *start
		iter, err := n.repo.Log(&logOpts)
		if err != nil {
			return nil, fmt.Errorf("read commits: %w", err)
		}
		err = iter.ForEach(func(commit *object.Commit) error {
			if seen[commit.Hash] || excluded[commit.Hash] {
				return nil
			}
			seen[commit.Hash] = true
			if !opts.IncludeMerges && len(commit.ParentHashes) > 1 {
				return nil
			}
			revisions = append(revisions, commit.Hash.String())
			return nil
		})
		iter.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate commits: %w", err)
		}
	}
	return revisions, nil
}

// splitRevspec understands plain refs, `^ref` exclusions, and the two-dot
// `a..b` range form. Anything fancier needs the CLI provider.
//
// The `^` marker is stripped before quotes so that a quoted exclusion like
// `^"release"` still yields the bare ref name.
func splitRevspec(revspec string) (includes, excludes []string, err error) {
	for _, field := range strings.Fields(revspec) {
		exclude := strings.HasPrefix(field, "^")
		if exclude {
			field = field[1:]
		}
		switch {
		case strings.Contains(field, "..."):
			return nil, nil, fmt.Errorf("revspec %q: symmetric-difference ranges are not supported by the native provider", revspec)
		case strings.Contains(field, ".."):
			parts := strings.SplitN(field, "..", 2)
			from := strings.Trim(parts[0], `"`)
			to := strings.Trim(parts[1], `"`)
			if from == "" || to == "" {
				return nil, nil, fmt.Errorf("revspec %q: open-ended ranges are not supported by the native provider", revspec)
			}
			excludes = append(excludes, from)
			includes = append(includes, to)
		default:
			field = strings.Trim(field, `"`)
			if field == "" {
				continue
			}
			if exclude {
				excludes = append(excludes, field)
			} else {
				includes = append(includes, field)
			}
		}
	}
	return includes, excludes, nil
}

func (n *native) resolve(ref string) (*plumbing.Hash, error) {
	hash, err := n.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", ref, err)
	}
	return hash, nil
}

func (n *native) markReachable(start *plumbing.Hash, reached map[plumbing.Hash]bool) error {
	commit, err := n.repo.CommitObject(*start)
	if err != nil {
		return fmt.Errorf("read commit %s: %w", start, err)
	}
	iter := object.NewCommitPreorderIter(commit, nil, nil)
	defer iter.Close()
	err = iter.ForEach(func(c *object.Commit) error {
		reached[c.Hash] = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk commits from %s: %w", start, err)
	}
	return nil
}

func (n *native) BranchesContaining(revision string) ([]string, error) {
	hash, err := n.resolve(revision)
	if err != nil {
		return nil, err
	}
	target, err := n.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", hash, err)
	}
	branchIter, err := n.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer branchIter.Close()

	var branches []string
	err = branchIter.ForEach(func(ref *plumbing.Reference) error {
		tip, err := n.repo.CommitObject(ref.Hash())
		if err != nil {
			return fmt.Errorf("read branch tip %s: %w", ref.Name().Short(), err)
		}
		if tip.Hash == target.Hash {
			branches = append(branches, ref.Name().Short())
			return nil
		}
		contained, err := target.IsAncestor(tip)
		if err != nil {
			return fmt.Errorf("ancestry check for %s: %w", ref.Name().Short(), err)
		}
		if contained {
			branches = append(branches, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (n *native) Remotes() ([]string, error) {
	remotes, err := n.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	names := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		names = append(names, remote.Config().Name)
	}
	return names, nil
}

func (n *native) RemoteBranches() ([]string, error) {
	refIter, err := n.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer refIter.Close()

	var branches []string
	err = refIter.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsRemote() {
			return nil
		}
		branches = append(branches, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return branches, nil
}
