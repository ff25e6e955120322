package lifecycle_test

import (
	"testing"
	"time"

	"dvtboard/db"
	"dvtboard/internal/lifecycle"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validProposal() *db.Proposal {
	return &db.Proposal{
		ID:                   "p-1",
		DVTNumber:            "DVT-2024-001",
		Client:               "Metalurgica Sul",
		ProjectType:          "QGBT",
		ProposalType:         "Technical/Commercial",
		Status:               lifecycle.StatusDrafting,
		ManagerChecklist:     lifecycle.ChecklistNo,
		EstimatedValue:       decimal.NewFromInt(1000),
		TechnicalResponsible: "Carlos",
		CommercialConsultant: "Ana",
	}
}

func TestValidateRequiredFields(t *testing.T) {
	p := validProposal()
	require.NoError(t, lifecycle.Validate(p))

	p.Client = "  "
	require.EqualError(t, lifecycle.Validate(p), "client is required")

	p = validProposal()
	p.DVTNumber = ""
	require.EqualError(t, lifecycle.Validate(p), "dvtNumber is required")

	p = validProposal()
	p.ProjectType = "Turbina"
	require.Error(t, lifecycle.Validate(p))

	p = validProposal()
	p.Status = "Shipped"
	require.Error(t, lifecycle.Validate(p))
}

func TestNeedsChecklistOnlyOnEnteringSent(t *testing.T) {
	require.True(t, lifecycle.NeedsChecklist(lifecycle.StatusDrafting, lifecycle.StatusSent))
	require.True(t, lifecycle.NeedsChecklist("", lifecycle.StatusSent))
	require.False(t, lifecycle.NeedsChecklist(lifecycle.StatusSent, lifecycle.StatusSent))
	require.False(t, lifecycle.NeedsChecklist(lifecycle.StatusDrafting, lifecycle.StatusNegotiation))
	require.False(t, lifecycle.NeedsChecklist(lifecycle.StatusSent, lifecycle.StatusDrafting))
}

func TestApplyTransitionGateLeavesStateUntouched(t *testing.T) {
	p := validProposal()
	before := *p

	details, err := lifecycle.ApplyTransition(p, lifecycle.StatusSent, "", time.Now())
	require.ErrorIs(t, err, lifecycle.ErrChecklistRequired)
	require.Empty(t, details)
	require.Equal(t, before, *p)
}

func TestApplyTransitionAnswerNoStillCompletes(t *testing.T) {
	p := validProposal()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	details, err := lifecycle.ApplyTransition(p, lifecycle.StatusSent, lifecycle.ChecklistNo, now)
	require.NoError(t, err)
	require.Equal(t, lifecycle.StatusSent, p.Status)
	require.Equal(t, lifecycle.ChecklistNo, p.ManagerChecklist)
	require.Equal(t, now, p.UpdatedAt)
	require.Equal(t, "Status: Drafting → Sent | Manager Checklist: No", details)
}

func TestApplyTransitionLogDetails(t *testing.T) {
	p := validProposal()

	details, err := lifecycle.ApplyTransition(p, lifecycle.StatusSent, lifecycle.ChecklistYes, time.Now())
	require.NoError(t, err)
	require.Equal(t, "Status: Drafting → Sent | Manager Checklist: Yes", details)

	// без смены статуса журналу нечего фиксировать
	details, err = lifecycle.ApplyTransition(p, lifecycle.StatusSent, "", time.Now())
	require.NoError(t, err)
	require.Empty(t, details)
}

func TestApplyTransitionNoChecklistOutsideSent(t *testing.T) {
	p := validProposal()

	details, err := lifecycle.ApplyTransition(p, lifecycle.StatusNegotiation, "", time.Now())
	require.NoError(t, err)
	require.Equal(t, lifecycle.StatusNegotiation, p.Status)
	require.Equal(t, "Status: Drafting → Negotiation", details)
}

func TestApplyTransitionRejectsBadInput(t *testing.T) {
	p := validProposal()

	_, err := lifecycle.ApplyTransition(p, "Archived", "", time.Now())
	require.Error(t, err)

	_, err = lifecycle.ApplyTransition(p, lifecycle.StatusSent, "Maybe", time.Now())
	require.Error(t, err)
	require.Equal(t, lifecycle.StatusDrafting, p.Status)
}

func TestIsLostStatus(t *testing.T) {
	require.True(t, lifecycle.IsLostStatus(lifecycle.StatusLostDeadline))
	require.True(t, lifecycle.IsLostStatus(lifecycle.StatusLostPrice))
	require.True(t, lifecycle.IsLostStatus(lifecycle.StatusCancelledByClient))
	require.False(t, lifecycle.IsLostStatus(lifecycle.StatusClosed))
}
