package report

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/revtrace/revtrace/internal/commit"
	"github.com/revtrace/revtrace/internal/index"
)

const revisionByteLength = commit.RevisionLength / 2

// WriteRevmapBinary writes the revision map in git-svn's .rev_map format:
// fixed-size records of a 4-byte big-endian SVN revision number followed by
// the 20 raw bytes of the revision id.
func WriteRevmapBinary(w io.Writer, mappings []index.SVNMapping) error {
	record := make([]byte, 4+revisionByteLength)
	for _, mapping := range mappings {
		binary.BigEndian.PutUint32(record[:4], mapping.SVNRevision)
		raw, err := hex.DecodeString(mapping.Revision)
		if err != nil {
			return fmt.Errorf("decode revision %s: %w", mapping.Revision, err)
		}
		if len(raw) != revisionByteLength {
			return fmt.Errorf("revision %s is not %d bytes", mapping.Revision, revisionByteLength)
		}
		copy(record[4:], raw)
		if _, err := w.Write(record); err != nil {
			return fmt.Errorf("write revision map record: %w", err)
		}
	}
	return nil
}

// WriteRevmapMarkdown writes the revision map as a markdown bullet list, one
// `svn revision -> git revision (repo url)` entry per line.
func WriteRevmapMarkdown(w io.Writer, mappings []index.SVNMapping, hashLength int) error {
	r := Renderer{HashLength: hashLength}
	for _, mapping := range mappings {
		_, err := fmt.Fprintf(w, "- `%d` -> `%s` (`%s`)\n",
			mapping.SVNRevision, r.truncate(mapping.Revision), mapping.SVNURL)
		if err != nil {
			return fmt.Errorf("write revision map line: %w", err)
		}
	}
	return nil
}
