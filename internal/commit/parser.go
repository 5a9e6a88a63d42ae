package commit

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	orderedset "github.com/emirpasic/gods/sets/linkedhashset"
)

// ErrMalformedEntry marks a history entry the parser could not accept. A
// single malformed entry aborts the whole extraction, since the index assumes
// a structurally complete commit set.
var ErrMalformedEntry = errors.New("malformed commit entry")

// svnMetadataMarker prefixes the metadata line git-svn leaves behind when a
// repository is converted with --metadata.
//
// https://github.com/git/git/blob/master/git-svn.perl
const svnMetadataMarker = "git-svn-id"

var (
	// Ticket right at the start of the subject, tolerating a "Pull request
	// #N" prefix.
	ticketStartPattern = regexp.MustCompile(`^\s*(?:Pull request #\d+.*?)?([A-Z][A-Z0-9_]+-[1-9][0-9]*)\b`)
	// Ticket anywhere on a line.
	ticketAnywherePattern = regexp.MustCompile(`\b([A-Z][A-Z0-9_]+-[1-9][0-9]*)\b`)
	// Revision ids 7 characters or longer, to avoid matching small numbers
	// that show up for other reasons.
	revisionRefPattern = regexp.MustCompile(`(?i)\b([0-9a-f]{7,40})\b`)
	// SVN revision references as a group: `r123`, `revision 123`,
	// `commits 16732, 16734-16735`.
	svnRefPattern = regexp.MustCompile(`(?i)\b(?:(?:commit|revision|rev)(?:s|\(s\))? |r)(\d+(?:-\d+)?(?:, ?\d+(?:-\d+)?)*)\b`)
	// Mentions of merging or cherry-picking.
	mergeMentionPattern = regexp.MustCompile(`(?i)(merg(?:e|ing)|cherry.?pick)`)
)

// Parser turns one raw history entry into a Commit. It is a pure function
// over the entry text; the compiled patterns above are shared, immutable
// process-lifetime values.
type Parser struct {
	ticketStart    *regexp.Regexp
	ticketAnywhere *regexp.Regexp
	revisionRef    *regexp.Regexp
	svnRef         *regexp.Regexp
	mergeMention   *regexp.Regexp

	includeMentionedTickets bool
}

// NewParser returns a parser. With includeMentionedTickets the ticket pattern
// is matched on every message line instead of only at the start of the
// subject.
func NewParser(includeMentionedTickets bool) *Parser {
	return &Parser{
		ticketStart:             ticketStartPattern,
		ticketAnywhere:          ticketAnywherePattern,
		revisionRef:             revisionRefPattern,
		svnRef:                  svnRefPattern,
		mergeMention:            mergeMentionPattern,
		includeMentionedTickets: includeMentionedTickets,
	}
}

// ParseEntry parses one raw log entry: the revision id on the first line, the
// space-separated parent ids on the second, and the commit message (subject +
// body) on the remaining lines.
func (p *Parser) ParseEntry(entry string) (*Commit, error) {
	lines := strings.Split(entry, "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: entry has too few lines", ErrMalformedEntry)
	}

	revision := lines[0]
	if len(revision) != RevisionLength || !isHex(revision) {
		return nil, fmt.Errorf("%w: revision id %q is not %d hex characters", ErrMalformedEntry, revision, RevisionLength)
	}
	parents := strings.Fields(lines[1])

	var svnInfo *SVNInfo
	ticketSet := orderedset.New()
	revisionRefSet := orderedset.New()
	svnRefSet := orderedset.New()
	mentionsMerging := false
	firstLine := true

	for _, line := range lines[2:] {
		if svnInfo == nil && strings.HasPrefix(line, svnMetadataMarker) {
			// The metadata looks like `git-svn-id: <URL>@<REVISION> <UUID>`.
			info, err := parseSVNMetadataLine(line)
			if err != nil {
				return nil, err
			}
			svnInfo = info
			// Without this, the UUID in the metadata would be mistaken for a
			// revision reference.
			continue
		}

		// Only the subject line is searched for tickets, unless the caller
		// asked for every mention.
		if p.includeMentionedTickets {
			for _, match := range p.ticketAnywhere.FindAllStringSubmatch(line, -1) {
				ticketSet.Add(match[1])
			}
		} else if firstLine {
			for _, match := range p.ticketStart.FindAllStringSubmatch(line, -1) {
				ticketSet.Add(match[1])
			}
		}

		for _, match := range p.revisionRef.FindAllStringSubmatch(line, -1) {
			revisionRefSet.Add(match[1])
		}
		for _, match := range p.svnRef.FindAllStringSubmatch(line, -1) {
			// The capture is a comma-delimited list of selections, each a
			// single number or an inclusive range: `16732, 16734-16735`.
			for _, selection := range strings.Split(match[1], ",") {
				addSVNSelection(svnRefSet, strings.TrimSpace(selection))
			}
		}

		if p.mergeMention.MatchString(line) {
			mentionsMerging = true
		}

		firstLine = false
	}

	revisionRefs := stringValues(revisionRefSet)
	svnRefs := uint32Values(svnRefSet)

	return &Commit{
		Revision:               revision,
		Parents:                parents,
		SVN:                    svnInfo,
		Tickets:                stringValues(ticketSet),
		ReferencedRevisions:    revisionRefs,
		ReferencedSVNRevisions: svnRefs,
		LikelyMerge:            classifyLikelyMerge(parents, revisionRefs, svnRefs, mentionsMerging),
	}, nil
}

func parseSVNMetadataLine(line string) (*SVNInfo, error) {
	parts := strings.Split(strings.TrimSpace(line), " ")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %s line is invalid", ErrMalformedEntry, svnMetadataMarker)
	}
	url, revisionStr, found := strings.Cut(parts[1], "@")
	if !found {
		return nil, fmt.Errorf("%w: %s info is invalid", ErrMalformedEntry, svnMetadataMarker)
	}
	revision, err := strconv.ParseUint(revisionStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SVN revision number %q", ErrMalformedEntry, revisionStr)
	}
	return &SVNInfo{URL: url, Revision: uint32(revision)}, nil
}

// maxSVNRangeSpan bounds how many revisions one `a-b` selection may expand
// to. A real merge message references a handful of revisions; a huge span is
// a version number or some other unrelated figure, and expanding it would
// allocate billions of entries.
const maxSVNRangeSpan = 100

// addSVNSelection expands one selection (`16734` or `16734-16735`) into the
// set. Numbers too large for a revision and implausibly wide ranges are
// dropped; the pattern guarantees digits but not magnitude.
func addSVNSelection(set *orderedset.Set, selection string) {
	if start, end, isRange := strings.Cut(selection, "-"); isRange {
		startRev, err1 := strconv.ParseUint(start, 10, 32)
		endRev, err2 := strconv.ParseUint(end, 10, 32)
		if err1 != nil || err2 != nil {
			return
		}
		if endRev >= startRev && endRev-startRev >= maxSVNRangeSpan {
			return
		}
		for rev := startRev; rev <= endRev; rev++ {
			set.Add(uint32(rev))
		}
		return
	}
	rev, err := strconv.ParseUint(selection, 10, 32)
	if err != nil {
		return
	}
	set.Add(uint32(rev))
}

// classifyLikelyMerge is the merge/cherry-pick heuristic. Conditions, in
// order:
//   - more than one parent (a structural merge)
//   - merge vocabulary plus at least one referenced commit
//   - exactly one referenced revision id, given in full (cherry-picks are
//     applied one commit at a time, and the auto-generated message carries
//     the full hash)
//   - more than one distinct referenced SVN revision
func classifyLikelyMerge(parents, revisionRefs []string, svnRefs []uint32, mentionsMerging bool) bool {
	if len(parents) > 1 {
		return true
	}
	if mentionsMerging && (len(revisionRefs) > 0 || len(svnRefs) > 0) {
		return true
	}
	if len(revisionRefs) == 1 && len(revisionRefs[0]) == RevisionLength {
		return true
	}
	return len(svnRefs) > 1
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func stringValues(set *orderedset.Set) []string {
	if set.Size() == 0 {
		return nil
	}
	values := make([]string, 0, set.Size())
	set.Each(func(_ int, value interface{}) {
		values = append(values, value.(string))
	})
	return values
}

func uint32Values(set *orderedset.Set) []uint32 {
	if set.Size() == 0 {
		return nil
	}
	values := make([]uint32, 0, set.Size())
	set.Each(func(_ int, value interface{}) {
		values = append(values, value.(uint32))
	})
	return values
}
