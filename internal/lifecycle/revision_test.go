package lifecycle_test

import (
	"testing"
	"time"

	"dvtboard/internal/lifecycle"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestApplyRevisionSequence(t *testing.T) {
	p := validProposal()
	p.SentValue = decimal.NewFromInt(5000)
	now := time.Now().UTC()

	r1, err := lifecycle.ApplyRevision(p, lifecycle.ReasonClientRequest, "scope change", "Ana", now)
	require.NoError(t, err)
	require.Equal(t, 1, r1.RevisionNumber)
	require.Equal(t, 1, p.RevisionNumber)

	r2, err := lifecycle.ApplyRevision(p, lifecycle.ReasonTechnical, "wrong breaker model", "Carlos", now)
	require.NoError(t, err)
	require.Equal(t, 2, r2.RevisionNumber)

	r3, err := lifecycle.ApplyRevision(p, lifecycle.ReasonCommercialAdjustment, "discount applied", "Ana", now)
	require.NoError(t, err)
	require.Equal(t, 3, r3.RevisionNumber)
	require.Equal(t, 3, p.RevisionNumber)

	// свежая ревизия всегда в начале списка
	require.Len(t, p.Revisions, 3)
	require.Equal(t, 3, p.Revisions[0].RevisionNumber)
	require.Equal(t, 1, p.Revisions[2].RevisionNumber)
}

func TestApplyRevisionValueSnapshot(t *testing.T) {
	p := validProposal()
	p.SentValue = decimal.NewFromFloat(1234.56)
	now := time.Now().UTC()

	// техническая причина не фиксирует стоимость
	rev, err := lifecycle.ApplyRevision(p, lifecycle.ReasonTechnical, "diagram fix", "Carlos", now)
	require.NoError(t, err)
	require.False(t, rev.ValueAtRevision.Valid)

	rev, err = lifecycle.ApplyRevision(p, lifecycle.ReasonClientRequest, "added panel", "Ana", now)
	require.NoError(t, err)
	require.True(t, rev.ValueAtRevision.Valid)
	require.True(t, rev.ValueAtRevision.Decimal.Equal(decimal.NewFromFloat(1234.56)))
}

func TestApplyRevisionRejectsBadInput(t *testing.T) {
	p := validProposal()

	_, err := lifecycle.ApplyRevision(p, lifecycle.ReasonTechnical, "   ", "Ana", time.Now())
	require.Error(t, err)
	require.Equal(t, 0, p.RevisionNumber)

	_, err = lifecycle.ApplyRevision(p, "Weather", "rain delay", "Ana", time.Now())
	require.Error(t, err)
	require.Equal(t, 0, p.RevisionNumber)
	require.Empty(t, p.Revisions)
}

func TestApplyRevisionFillsIdentity(t *testing.T) {
	p := validProposal()
	now := time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

	rev, err := lifecycle.ApplyRevision(p, lifecycle.ReasonClientRequest, "new deadline", "Ana", now)
	require.NoError(t, err)
	require.NotEmpty(t, rev.ID)
	require.Equal(t, p.ID, rev.ProposalID)
	require.Equal(t, "Ana", rev.UserName)
	require.Equal(t, now, rev.CreatedAt)
	require.Equal(t, now, p.UpdatedAt)
}
