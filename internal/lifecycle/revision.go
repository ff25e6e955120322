package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dvtboard/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ReasonTechnical            = "Technical Reason"
	ReasonClientRequest        = "Client Request"
	ReasonCommercialAdjustment = "Commercial Adjustment"
)

var allowedReasons = map[string]bool{
	ReasonTechnical:            true,
	ReasonClientRequest:        true,
	ReasonCommercialAdjustment: true,
}

func ValidReason(r string) bool { return allowedReasons[r] }

// ApplyRevision добавляет ревизию в начало списка и инкрементирует счётчик.
// Для нетехнических причин снимается снимок коммерческой стоимости.
// Запись в БД делает вызывающий код; сама ревизия после создания неизменяема.
func ApplyRevision(p *db.Proposal, reasonType, description, userName string, now time.Time) (*db.ProposalRevision, error) {
	if strings.TrimSpace(description) == "" {
		return nil, errors.New("revision description is required")
	}
	if !allowedReasons[reasonType] {
		return nil, fmt.Errorf("invalid reasonType %q", reasonType)
	}

	next := p.RevisionNumber + 1
	rev := &db.ProposalRevision{
		ID:             uuid.NewString(),
		ProposalID:     p.ID,
		RevisionNumber: next,
		ReasonType:     reasonType,
		Description:    description,
		UserName:       userName,
		CreatedAt:      now,
	}
	if reasonType != ReasonTechnical {
		rev.ValueAtRevision = decimal.NewNullDecimal(p.SentValue)
	}

	p.Revisions = append([]db.ProposalRevision{*rev}, p.Revisions...)
	p.RevisionNumber = next
	p.UpdatedAt = now
	return rev, nil
}
