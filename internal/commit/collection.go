package commit

import (
	"fmt"
	"io"

	"github.com/revtrace/revtrace/internal/gitrepo"
)

// Collect retrieves the complete reachable history from the provider and
// parses every entry. A single malformed entry aborts the whole extraction;
// everything downstream assumes a complete, valid commit set.
func Collect(provider gitrepo.Provider, parser *Parser) ([]*Commit, error) {
	stream, err := provider.Log()
	if err != nil {
		return nil, fmt.Errorf("get the repo log: %w", err)
	}
	defer stream.Close()

	var commits []*Commit
	for entryNum := 1; ; entryNum++ {
		entry, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("get the repo log: %w", err)
		}
		parsed, err := parser.ParseEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("process log entry %d: %w", entryNum, err)
		}
		commits = append(commits, parsed)
	}
	return commits, nil
}
