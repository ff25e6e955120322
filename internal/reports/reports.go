package reports

import (
	"strings"

	"dvtboard/db"
	"dvtboard/internal/lifecycle"

	"github.com/shopspring/decimal"
)

// Column — колонка экспорта; порядок в AvailableColumns канонический
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var AvailableColumns = []Column{
	{ID: "client", Label: "Client"},
	{ID: "dvt_number", Label: "DVT"},
	{ID: "project_type", Label: "Project Type"},
	{ID: "proposal_type", Label: "Proposal Type"},
	{ID: "commercial_consultant", Label: "Consultant"},
	{ID: "technical_responsible", Label: "Tech Responsible"},
	{ID: "value", Label: "Value (R$)"},
	{ID: "status", Label: "Status"},
	{ID: "opening_date", Label: "Opening Date"},
	{ID: "manager_checklist", Label: "Manager Checklist"},
	{ID: "loss_reason_details", Label: "Loss Reason"},
	{ID: "competitor", Label: "Competitor"},
}

// Filter — срез отчёта; границы дат сравниваются с opening_date (YYYY-MM-DD)
type Filter struct {
	StartDate  string
	EndDate    string
	Status     string
	Consultant string
	Client     string
}

func (f Filter) Matches(p *db.Proposal) bool {
	if f.StartDate != "" && (p.OpeningDate == "" || p.OpeningDate < f.StartDate) {
		return false
	}
	if f.EndDate != "" && (p.OpeningDate == "" || p.OpeningDate > f.EndDate) {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Consultant != "" &&
		!strings.Contains(strings.ToLower(p.CommercialConsultant), strings.ToLower(f.Consultant)) {
		return false
	}
	if f.Client != "" &&
		!strings.Contains(strings.ToLower(p.Client), strings.ToLower(f.Client)) {
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

// SelectColumns сохраняет канонический порядок независимо от порядка выбора;
// пустой выбор означает все колонки
func SelectColumns(ids []string) []Column {
	if len(ids) == 0 {
		return AvailableColumns
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	selected := []Column{}
	for _, c := range AvailableColumns {
		if wanted[c.ID] {
			selected = append(selected, c)
		}
	}
	return selected
}

func cellValue(p *db.Proposal, colID string, currency bool) string {
	switch colID {
	case "client":
		return p.Client
	case "dvt_number":
		return p.DVTNumber
	case "project_type":
		return p.ProjectType
	case "proposal_type":
		return p.ProposalType
	case "commercial_consultant":
		return p.CommercialConsultant
	case "technical_responsible":
		return p.TechnicalResponsible
	case "value":
		if currency {
			return FormatCurrency(lifecycle.DisplayValue(p))
		}
		return lifecycle.DisplayValue(p).StringFixed(2)
	case "status":
		return p.Status
	case "opening_date":
		return FormatDisplayDate(p.OpeningDate)
	case "manager_checklist":
		if p.ManagerChecklist == "" {
			return "Pending"
		}
		return p.ManagerChecklist
	case "loss_reason_details":
		// атрибуция потери имеет смысл только для потерянных статусов
		if !lifecycle.IsLostStatus(p.Status) {
			return ""
		}
		return p.LossReasonDetails
	case "competitor":
		if !lifecycle.IsLostStatus(p.Status) {
			return ""
		}
		return p.Competitor
	}
	return ""
}

func buildTable(proposals []db.Proposal, ids []string, currency bool) ([]string, [][]string) {
	columns := SelectColumns(ids)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Label
	}
	rows := make([][]string, 0, len(proposals))
	for i := range proposals {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = cellValue(&proposals[i], c.ID, currency)
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// BuildTable возвращает заголовки и строки для выбранного набора колонок;
// стоимость идёт числом с фиксированной точкой (машиночитаемый CSV)
func BuildTable(proposals []db.Proposal, ids []string) ([]string, [][]string) {
	return buildTable(proposals, ids, false)
}

// BuildDisplayTable — то же, но стоимость в печатном денежном формате (PDF)
func BuildDisplayTable(proposals []db.Proposal, ids []string) ([]string, [][]string) {
	return buildTable(proposals, ids, true)
}

// FormatDisplayDate переводит YYYY-MM-DD в DD/MM/YYYY; пустая дата — "---"
func FormatDisplayDate(dateStr string) string {
	if dateStr == "" {
		return "---"
	}
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return dateStr
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// FormatCurrency печатает значение в виде "R$ 1.234,56"
func FormatCurrency(v decimal.Decimal) string {
	fixed := v.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

type Summary struct {
	Total      int             `json:"total"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Conversion string          `json:"conversion"`
}

// BuildSummary — итоги по срезу: количество, суммарная отображаемая стоимость
// и конверсия как доля закрытых, в процентах с одним знаком
func BuildSummary(proposals []db.Proposal) Summary {
	s := Summary{TotalValue: decimal.Zero}
	closed := 0
	for i := range proposals {
		s.Total++
		s.TotalValue = s.TotalValue.Add(lifecycle.DisplayValue(&proposals[i]))
		if proposals[i].Status == lifecycle.StatusClosed {
			closed++
		}
	}
	if s.Total > 0 {
		s.Conversion = decimal.NewFromInt(int64(closed)).
			Div(decimal.NewFromInt(int64(s.Total))).
			Mul(decimal.NewFromInt(100)).
			StringFixed(1)
	} else {
		s.Conversion = "0"
	}
	return s
}
