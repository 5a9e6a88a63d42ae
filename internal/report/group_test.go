package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revtrace/revtrace/internal/commit"
	"github.com/revtrace/revtrace/internal/search"
)

func included(revision string, tickets ...string) *search.IncludedCommit {
	return &search.IncludedCommit{
		Commit: &commit.Commit{Revision: revision, Tickets: tickets},
	}
}

func groupTickets(groups []Group) []string {
	tickets := make([]string, 0, len(groups))
	for _, group := range groups {
		tickets = append(tickets, group.Ticket)
	}
	return tickets
}

func TestGroupByTicket(t *testing.T) {
	t.Parallel()

	results := []*search.IncludedCommit{
		included("a", "PROJ-10"),
		included("b", "PROJ-2"),
		included("c"),
		included("d", "PROJ-2", "OTHER-1"),
	}

	groups := GroupByTicket(results)

	// No-ticket group first, then project key, then numeric ticket number.
	require.Equal(t, []string{"", "OTHER-1", "PROJ-2", "PROJ-10"}, groupTickets(groups))
	assert.Len(t, groups[2].Commits, 2, "multi-ticket commits appear in every group")
	assert.Equal(t, 3, TicketCount(groups), "the no-ticket group is not a ticket")
}

func TestGroupByTicketEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GroupByTicket(nil))
}

func TestIntersect(t *testing.T) {
	t.Parallel()

	a := GroupByTicket([]*search.IncludedCommit{
		included("a1", "PROJ-1"),
		included("a2", "PROJ-2"),
		included("a3", "PROJ-2"),
	})
	b := GroupByTicket([]*search.IncludedCommit{
		included("b1", "PROJ-2"),
		included("b2", "PROJ-3"),
	})

	cmp := Intersect(a, b)

	require.Equal(t, []string{"PROJ-1"}, groupTickets(cmp.OnlyA))
	require.Equal(t, []string{"PROJ-3"}, groupTickets(cmp.OnlyB))
	require.Len(t, cmp.Both, 1)
	assert.Equal(t, "PROJ-2", cmp.Both[0].Ticket)
	assert.Len(t, cmp.Both[0].A, 2)
	assert.Len(t, cmp.Both[0].B, 1)
	assert.Equal(t, 1, PairTicketCount(cmp.Both))
}

func TestTicketLess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"", "PROJ-1", true},
		{"PROJ-1", "", false},
		{"PROJ-9", "PROJ-10", true},
		{"PROJ-10", "PROJ-9", false},
		{"ABC-5", "PROJ-1", true},
		{"PROJ-1", "PROJ-1", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ticketLess(tc.a, tc.b), "ticketLess(%q, %q)", tc.a, tc.b)
	}
}
