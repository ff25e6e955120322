package handlers

import (
	"context"
	"dvtboard/db"
)

type StorageInterface interface {
	CreateProposal(ctx context.Context, proposal *db.Proposal) error
	GetProposal(ctx context.Context, proposalID string) (*db.Proposal, error)
	GetProposals(ctx context.Context) ([]db.Proposal, error)
	UpdateProposal(ctx context.Context, proposal *db.Proposal) error
	DeleteProposal(ctx context.Context, proposalID string) error

	CreateRevisionWithCounter(ctx context.Context, revision *db.ProposalRevision, proposal *db.Proposal) error
	GetRevisions(ctx context.Context, proposalID string) ([]db.ProposalRevision, error)

	CreateLog(ctx context.Context, entry *db.LogEntry) error
	GetLogs(ctx context.Context, proposalID string) ([]db.LogEntry, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	CreateTeamMember(ctx context.Context, member *db.TeamMember) error
	GetTeamMembers(ctx context.Context) ([]db.TeamMember, error)
	GetTeamMemberByEmail(ctx context.Context, email string) (*db.TeamMember, error)
	DeleteTeamMember(ctx context.Context, email string) error
}
