// Package report turns search results into the text, markdown and binary
// outputs the subcommands print or write to disk.
package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/revtrace/revtrace/internal/search"
)

// Group collects the commits that carry one ticket. The empty ticket groups
// the commits without any ticket; it always sorts first.
type Group struct {
	Ticket  string
	Commits []*search.IncludedCommit
}

// GroupPair holds one ticket's commits from each side of a comparison.
type GroupPair struct {
	Ticket string
	A, B   []*search.IncludedCommit
}

// Comparison is the outcome of intersecting two grouped result sets.
type Comparison struct {
	OnlyA []Group
	OnlyB []Group
	Both  []GroupPair
}

// GroupByTicket groups top-level results by ticket, sorted by project key and
// numeric ticket number. A commit with several tickets appears in each of its
// groups; commits without a ticket form the empty group.
func GroupByTicket(results []*search.IncludedCommit) []Group {
	byTicket := make(map[string][]*search.IncludedCommit)
	for _, result := range results {
		tickets := result.Commit.Tickets
		if len(tickets) == 0 {
			byTicket[""] = append(byTicket[""], result)
			continue
		}
		for _, ticket := range tickets {
			byTicket[ticket] = append(byTicket[ticket], result)
		}
	}

	groups := make([]Group, 0, len(byTicket))
	for ticket, commits := range byTicket {
		groups = append(groups, Group{Ticket: ticket, Commits: commits})
	}
	sort.Slice(groups, func(i, j int) bool {
		return ticketLess(groups[i].Ticket, groups[j].Ticket)
	})
	return groups
}

// Intersect splits two grouped sets into the tickets unique to each side and
// the tickets present on both. All three lists come back in ticket order.
func Intersect(a, b []Group) Comparison {
	bByTicket := make(map[string][]*search.IncludedCommit, len(b))
	for _, group := range b {
		bByTicket[group.Ticket] = group.Commits
	}
	aTickets := make(map[string]bool, len(a))

	var cmp Comparison
	for _, group := range a {
		aTickets[group.Ticket] = true
		if commits, shared := bByTicket[group.Ticket]; shared {
			cmp.Both = append(cmp.Both, GroupPair{Ticket: group.Ticket, A: group.Commits, B: commits})
		} else {
			cmp.OnlyA = append(cmp.OnlyA, group)
		}
	}
	for _, group := range b {
		if !aTickets[group.Ticket] {
			cmp.OnlyB = append(cmp.OnlyB, group)
		}
	}
	// OnlyA and Both inherit a's order; OnlyB inherits b's. Both inputs come
	// from GroupByTicket, so all three are already in ticket order.
	return cmp
}

// TicketCount returns how many real tickets a group list holds, leaving out
// the no-ticket group.
func TicketCount(groups []Group) int {
	count := len(groups)
	for _, group := range groups {
		if group.Ticket == "" {
			count--
		}
	}
	return count
}

// PairTicketCount is TicketCount for a comparison intersection.
func PairTicketCount(pairs []GroupPair) int {
	count := len(pairs)
	for _, pair := range pairs {
		if pair.Ticket == "" {
			count--
		}
	}
	return count
}

// ticketLess orders tickets by project key, then numerically by ticket
// number, so PROJ-9 sorts before PROJ-10. The empty (no ticket) key sorts
// before everything.
func ticketLess(a, b string) bool {
	if a == "" || b == "" {
		return a == "" && b != ""
	}
	aKey, aNum := splitTicket(a)
	bKey, bNum := splitTicket(b)
	if aKey != bKey {
		return aKey < bKey
	}
	return aNum < bNum
}

func splitTicket(ticket string) (project string, number uint64) {
	idx := strings.LastIndexByte(ticket, '-')
	if idx < 0 {
		return ticket, 0
	}
	number, err := strconv.ParseUint(ticket[idx+1:], 10, 64)
	if err != nil {
		return ticket, 0
	}
	return ticket[:idx], number
}
