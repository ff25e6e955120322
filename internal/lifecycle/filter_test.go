package lifecycle_test

import (
	"testing"

	"dvtboard/db"
	"dvtboard/internal/lifecycle"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDisplayValueFallback(t *testing.T) {
	p := &db.Proposal{
		EstimatedValue: decimal.NewFromInt(500),
		SentValue:      decimal.NewFromInt(1000),
	}
	require.True(t, lifecycle.DisplayValue(p).Equal(decimal.NewFromInt(1000)))

	p.SentValue = decimal.Zero
	require.True(t, lifecycle.DisplayValue(p).Equal(decimal.NewFromInt(500)))
}

func TestFilterSearchMatchesNumberAndClient(t *testing.T) {
	f := lifecycle.Filter{Search: "ABC"}

	byNumber := &db.Proposal{DVTNumber: "ABC-01", Client: "Metalurgica Sul"}
	byClient := &db.Proposal{DVTNumber: "DVT-77", Client: "Abc Ltda"}
	neither := &db.Proposal{DVTNumber: "DVT-78", Client: "Outra"}

	require.True(t, f.Matches(byNumber))
	require.True(t, f.Matches(byClient))
	require.False(t, f.Matches(neither))
}

func TestFilterIsConjunctive(t *testing.T) {
	p := &db.Proposal{
		DVTNumber:            "ABC-01",
		Client:               "Metalurgica Sul",
		Status:               lifecycle.StatusSent,
		CommercialConsultant: "Ana",
		TechnicalResponsible: "Carlos",
		ProposalType:         "Technical",
	}

	f := lifecycle.Filter{Search: "abc", Status: lifecycle.StatusSent, Consultant: "ana"}
	require.True(t, f.Matches(p))

	f.Status = lifecycle.StatusClosed
	require.False(t, f.Matches(p))

	f.Status = ""
	f.ProposalType = "Commercial"
	require.False(t, f.Matches(p))
}

func TestApplyKeepsOrder(t *testing.T) {
	proposals := []db.Proposal{
		{DVTNumber: "A-1", Client: "One", Status: lifecycle.StatusSent},
		{DVTNumber: "A-2", Client: "Two", Status: lifecycle.StatusPending},
		{DVTNumber: "A-3", Client: "Three", Status: lifecycle.StatusSent},
	}

	out := lifecycle.Apply(proposals, lifecycle.Filter{Status: lifecycle.StatusSent})
	require.Len(t, out, 2)
	require.Equal(t, "A-1", out[0].DVTNumber)
	require.Equal(t, "A-3", out[1].DVTNumber)
}

func TestKanbanColumns(t *testing.T) {
	proposals := []db.Proposal{
		{DVTNumber: "A-1", Status: lifecycle.StatusSent, SentValue: decimal.NewFromInt(1000)},
		{DVTNumber: "A-2", Status: lifecycle.StatusSent, EstimatedValue: decimal.NewFromInt(500)},
		{DVTNumber: "A-3", Status: lifecycle.StatusPending, EstimatedValue: decimal.NewFromInt(200)},
	}

	columns := lifecycle.KanbanColumns(proposals)
	require.Len(t, columns, len(lifecycle.Statuses))

	byStatus := map[string]lifecycle.KanbanColumn{}
	for _, c := range columns {
		byStatus[c.Status] = c
	}

	sent := byStatus[lifecycle.StatusSent]
	require.Len(t, sent.Proposals, 2)
	// итог колонки считается по отображаемой стоимости
	require.True(t, sent.Total.Equal(decimal.NewFromInt(1500)))

	pending := byStatus[lifecycle.StatusPending]
	require.Len(t, pending.Proposals, 1)
	require.True(t, pending.Total.Equal(decimal.NewFromInt(200)))

	// пустые колонки присутствуют с нулевым итогом
	require.Empty(t, byStatus[lifecycle.StatusClosed].Proposals)
	require.True(t, byStatus[lifecycle.StatusClosed].Total.IsZero())
}
