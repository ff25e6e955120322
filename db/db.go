package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Proposal (Предложение DVT)
type Proposal struct {
	ID                   string             `db:"id" json:"id"`
	DVTNumber            string             `db:"dvt_number" json:"dvtNumber"`
	Client               string             `db:"client" json:"client"`
	ProjectType          string             `db:"project_type" json:"projectType"`
	ProposalType         string             `db:"proposal_type" json:"proposalType"`
	Status               string             `db:"status" json:"status"`
	RevisionNumber       int                `db:"revision_number" json:"revisionNumber"`
	ManagerChecklist     string             `db:"manager_checklist" json:"managerChecklist"`
	EstimatedValue       decimal.Decimal    `db:"estimated_value" json:"estimatedValue"`
	SentValue            decimal.Decimal    `db:"sent_value" json:"sentValue"`
	OpeningDate          string             `db:"opening_date" json:"openingDate"`
	StartDate            string             `db:"start_date" json:"startDate"`
	ExpectedTechDate     string             `db:"expected_tech_date" json:"expectedTechDate"`
	ExpectedCommDate     string             `db:"expected_comm_date" json:"expectedCommDate"`
	ActualTechDate       string             `db:"actual_tech_date" json:"actualTechDate"`
	ActualCommDate       string             `db:"actual_comm_date" json:"actualCommDate"`
	TechnicalResponsible string             `db:"technical_responsible" json:"technicalResponsible"`
	CommercialConsultant string             `db:"commercial_consultant" json:"commercialConsultant"`
	Competitor           string             `db:"competitor" json:"competitor"`
	LossReasonDetails    string             `db:"loss_reason_details" json:"lossReasonDetails"`
	UserID               string             `db:"user_id" json:"userId"`
	CreatedAt            time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time          `db:"updated_at" json:"updatedAt"`
	Revisions            []ProposalRevision `db:"-" json:"revisions,omitempty"`
}

// ProposalRevision (Ревизия предложения, append-only)
type ProposalRevision struct {
	ID              string              `db:"id" json:"id"`
	ProposalID      string              `db:"proposal_id" json:"proposalId"`
	RevisionNumber  int                 `db:"revision_number" json:"revisionNumber"`
	ReasonType      string              `db:"reason_type" json:"reasonType"`
	Description     string              `db:"description" json:"description"`
	ValueAtRevision decimal.NullDecimal `db:"value_at_revision" json:"valueAtRevision"`
	UserName        string              `db:"user_name" json:"userName"`
	CreatedAt       time.Time           `db:"created_at" json:"createdAt"`
}

// LogEntry (Журнал действий; слабая ссылка на proposal_id, без каскада)
type LogEntry struct {
	ID         string    `db:"id" json:"id"`
	ProposalID string    `db:"proposal_id" json:"proposalId"`
	UserName   string    `db:"user_name" json:"userName"`
	Action     string    `db:"action" json:"action"`
	Details    string    `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// TeamMember (Участник команды)
type TeamMember struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateProposal(ctx context.Context, p *Proposal) error {
	query := `
        INSERT INTO proposals
            (dvt_number, client, project_type, proposal_type, status, revision_number,
             manager_checklist, estimated_value, sent_value,
             opening_date, start_date, expected_tech_date, expected_comm_date,
             actual_tech_date, actual_comm_date,
             technical_responsible, commercial_consultant, competitor, loss_reason_details,
             user_id, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
        RETURNING id`
	return s.db.QueryRowContext(ctx, query,
		p.DVTNumber, p.Client, p.ProjectType, p.ProposalType, p.Status, p.RevisionNumber,
		p.ManagerChecklist, p.EstimatedValue, p.SentValue,
		p.OpeningDate, p.StartDate, p.ExpectedTechDate, p.ExpectedCommDate,
		p.ActualTechDate, p.ActualCommDate,
		p.TechnicalResponsible, p.CommercialConsultant, p.Competitor, p.LossReasonDetails,
		p.UserID, p.CreatedAt, p.UpdatedAt).
		Scan(&p.ID)
}

func (s *Storage) GetProposal(ctx context.Context, id string) (*Proposal, error) {
	p := &Proposal{}
	query := `SELECT * FROM proposals WHERE id=$1`
	if err := s.db.GetContext(ctx, p, query, id); err != nil {
		return nil, err
	}
	revs, err := s.GetRevisions(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Revisions = revs
	return p, nil
}

// GetProposals возвращает всю коллекцию; фильтрация идёт в памяти (см. internal/lifecycle)
func (s *Storage) GetProposals(ctx context.Context) ([]Proposal, error) {
	query := `SELECT * FROM proposals ORDER BY created_at DESC`
	proposals := []Proposal{}
	err := s.db.SelectContext(ctx, &proposals, query)
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

func (s *Storage) UpdateProposal(ctx context.Context, p *Proposal) error {
	query := `
        UPDATE proposals
        SET dvt_number=$1, client=$2, project_type=$3, proposal_type=$4, status=$5,
            revision_number=$6, manager_checklist=$7, estimated_value=$8, sent_value=$9,
            opening_date=$10, start_date=$11, expected_tech_date=$12, expected_comm_date=$13,
            actual_tech_date=$14, actual_comm_date=$15,
            technical_responsible=$16, commercial_consultant=$17, competitor=$18,
            loss_reason_details=$19, updated_at=$20
        WHERE id=$21`
	_, err := s.db.ExecContext(ctx, query,
		p.DVTNumber, p.Client, p.ProjectType, p.ProposalType, p.Status,
		p.RevisionNumber, p.ManagerChecklist, p.EstimatedValue, p.SentValue,
		p.OpeningDate, p.StartDate, p.ExpectedTechDate, p.ExpectedCommDate,
		p.ActualTechDate, p.ActualCommDate,
		p.TechnicalResponsible, p.CommercialConsultant, p.Competitor,
		p.LossReasonDetails, p.UpdatedAt, p.ID)
	return err
}

func (s *Storage) DeleteProposal(ctx context.Context, id string) error {
	query := `DELETE FROM proposals WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// Ревизии неизменяемы: только INSERT и SELECT, без UPDATE/DELETE.
// CreateRevisionWithCounter пишет ревизию и новый счётчик предложения одной
// транзакцией: частичная запись рассинхронизировала бы revision_number
// с UNIQUE (proposal_id, revision_number).
func (s *Storage) CreateRevisionWithCounter(ctx context.Context, r *ProposalRevision, p *Proposal) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
        INSERT INTO proposal_revisions
            (id, proposal_id, revision_number, reason_type, description, value_at_revision, user_name, created_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, insert,
		r.ID, r.ProposalID, r.RevisionNumber, r.ReasonType, r.Description,
		r.ValueAtRevision, r.UserName, r.CreatedAt); err != nil {
		return err
	}

	update := `UPDATE proposals SET revision_number=$1, updated_at=$2 WHERE id=$3`
	if _, err := tx.ExecContext(ctx, update, p.RevisionNumber, p.UpdatedAt, p.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Storage) GetRevisions(ctx context.Context, proposalID string) ([]ProposalRevision, error) {
	query := `
        SELECT * FROM proposal_revisions
        WHERE proposal_id = $1
        ORDER BY revision_number DESC`
	revisions := []ProposalRevision{}
	err := s.db.SelectContext(ctx, &revisions, query, proposalID)
	return revisions, err
}

func (s *Storage) CreateLog(ctx context.Context, l *LogEntry) error {
	query := `
        INSERT INTO logs (proposal_id, user_name, action, details)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query, l.ProposalID, l.UserName, l.Action, l.Details).
		Scan(&l.ID, &l.CreatedAt)
}

func (s *Storage) GetLogs(ctx context.Context, proposalID string) ([]LogEntry, error) {
	query := `
        SELECT * FROM logs
        WHERE proposal_id = $1
        ORDER BY created_at DESC`
	logs := []LogEntry{}
	err := s.db.SelectContext(ctx, &logs, query, proposalID)
	return logs, err
}

func (s *Storage) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	query := `SELECT value FROM settings WHERE key=$1`
	err := s.db.GetContext(ctx, &value, query, key)
	return value, err
}

func (s *Storage) SetSetting(ctx context.Context, key, value string) error {
	query := `
        INSERT INTO settings (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

func (s *Storage) CreateTeamMember(ctx context.Context, m *TeamMember) error {
	query := `
        INSERT INTO team_members (name, email, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query, m.Name, m.Email, m.Role).
		Scan(&m.ID, &m.CreatedAt)
}

func (s *Storage) GetTeamMembers(ctx context.Context) ([]TeamMember, error) {
	query := `SELECT * FROM team_members ORDER BY created_at ASC`
	members := []TeamMember{}
	err := s.db.SelectContext(ctx, &members, query)
	return members, err
}

func (s *Storage) GetTeamMemberByEmail(ctx context.Context, email string) (*TeamMember, error) {
	m := &TeamMember{}
	query := `SELECT * FROM team_members WHERE LOWER(email)=LOWER($1)`
	err := s.db.GetContext(ctx, m, query, email)
	return m, err
}

func (s *Storage) DeleteTeamMember(ctx context.Context, email string) error {
	query := `DELETE FROM team_members WHERE LOWER(email)=LOWER($1)`
	_, err := s.db.ExecContext(ctx, query, email)
	return err
}
