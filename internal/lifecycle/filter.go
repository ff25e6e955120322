package lifecycle

import (
	"strings"

	"dvtboard/db"

	"github.com/shopspring/decimal"
)

// Filter — конъюнкция предикатов; пустое значение всегда совпадает
type Filter struct {
	Search          string
	Status          string
	Consultant      string
	TechResponsible string
	ProposalType    string
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (f Filter) Matches(p *db.Proposal) bool {
	if f.Search != "" &&
		!containsFold(p.DVTNumber, f.Search) && !containsFold(p.Client, f.Search) {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Consultant != "" && !containsFold(p.CommercialConsultant, f.Consultant) {
		return false
	}
	if f.TechResponsible != "" && !containsFold(p.TechnicalResponsible, f.TechResponsible) {
		return false
	}
	if f.ProposalType != "" && p.ProposalType != f.ProposalType {
		return false
	}
	return true
}

func Apply(proposals []db.Proposal, f Filter) []db.Proposal {
	filtered := []db.Proposal{}
	for i := range proposals {
		if f.Matches(&proposals[i]) {
			filtered = append(filtered, proposals[i])
		}
	}
	return filtered
}

// DisplayValue — единое правило отображаемой стоимости: отправленная,
// при нулевой — внутренняя оценка. Используется таблицей, канбаном и экспортом.
func DisplayValue(p *db.Proposal) decimal.Decimal {
	if !p.SentValue.IsZero() {
		return p.SentValue
	}
	return p.EstimatedValue
}

type KanbanColumn struct {
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Proposals []db.Proposal   `json:"proposals"`
}

// KanbanColumns раскладывает коллекцию по статусным колонкам с итогом по каждой
func KanbanColumns(proposals []db.Proposal) []KanbanColumn {
	columns := make([]KanbanColumn, 0, len(Statuses))
	for _, status := range Statuses {
		col := KanbanColumn{Status: status, Total: decimal.Zero, Proposals: []db.Proposal{}}
		for i := range proposals {
			if proposals[i].Status != status {
				continue
			}
			col.Proposals = append(col.Proposals, proposals[i])
			col.Total = col.Total.Add(DisplayValue(&proposals[i]))
		}
		columns = append(columns, col)
	}
	return columns
}
