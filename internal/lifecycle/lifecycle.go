package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dvtboard/db"
)

// Статусы воронки в порядке колонок канбана.
const (
	StatusPending           = "Pending"
	StatusDrafting          = "Drafting"
	StatusPaused            = "Paused"
	StatusSent              = "Sent"
	StatusUnderRevision     = "Under Revision"
	StatusNegotiation       = "Negotiation"
	StatusClosed            = "Closed"
	StatusLostDeadline      = "Lost-Deadline"
	StatusLostPrice         = "Lost-Price"
	StatusCancelledByClient = "Cancelled-by-Client"
)

var Statuses = []string{
	StatusPending,
	StatusDrafting,
	StatusPaused,
	StatusSent,
	StatusUnderRevision,
	StatusNegotiation,
	StatusClosed,
	StatusLostDeadline,
	StatusLostPrice,
	StatusCancelledByClient,
}

const (
	ChecklistYes = "Yes"
	ChecklistNo  = "No"
)

const (
	ActionCreation = "Creation"
	ActionUpdate   = "Update"
	ActionDeletion = "Deletion"
)

var allowedStatuses = func() map[string]bool {
	m := make(map[string]bool, len(Statuses))
	for _, s := range Statuses {
		m[s] = true
	}
	return m
}()

// Последние четыре статуса считаются терминальными по смыслу процесса,
// но переходы из них не запрещаются.
var lostStatuses = map[string]bool{
	StatusLostDeadline:      true,
	StatusLostPrice:         true,
	StatusCancelledByClient: true,
}

var allowedProjectTypes = map[string]bool{
	"Eletrocentro":       true,
	"Cubículo MT":        true,
	"QGBT":               true,
	"CCM":                true,
	"QDCA":               true,
	"QDCC":               true,
	"QDL":                true,
	"Painel de Controle": true,
	"Serviços":           true,
}

var allowedProposalTypes = map[string]bool{
	"Technical":            true,
	"Commercial":           true,
	"Technical/Commercial": true,
}

// ErrChecklistRequired сигнализирует, что переход в Sent ждёт решения чеклиста
var ErrChecklistRequired = errors.New("manager checklist decision required")

func ValidStatus(s string) bool { return allowedStatuses[s] }

func IsLostStatus(s string) bool { return lostStatuses[s] }

// Validate проверяет обязательные поля и перечисления до любой логики переходов
func Validate(p *db.Proposal) error {
	if strings.TrimSpace(p.DVTNumber) == "" {
		return errors.New("dvtNumber is required")
	}
	if strings.TrimSpace(p.Client) == "" {
		return errors.New("client is required")
	}
	if strings.TrimSpace(p.TechnicalResponsible) == "" {
		return errors.New("technicalResponsible is required")
	}
	if strings.TrimSpace(p.CommercialConsultant) == "" {
		return errors.New("commercialConsultant is required")
	}
	if !allowedStatuses[p.Status] {
		return fmt.Errorf("invalid status %q", p.Status)
	}
	if !allowedProjectTypes[p.ProjectType] {
		return fmt.Errorf("invalid projectType %q", p.ProjectType)
	}
	if !allowedProposalTypes[p.ProposalType] {
		return fmt.Errorf("invalid proposalType %q", p.ProposalType)
	}
	if p.ManagerChecklist != "" && p.ManagerChecklist != ChecklistYes && p.ManagerChecklist != ChecklistNo {
		return fmt.Errorf("invalid managerChecklist %q", p.ManagerChecklist)
	}
	return nil
}

// NeedsChecklist: подтверждение нужно только при входе в Sent из другого статуса.
// Функция чистая, ничего не меняет: отказ оператора от диалога не оставляет следов.
func NeedsChecklist(current, target string) bool {
	return target == StatusSent && current != StatusSent
}

// ApplyTransition переводит предложение в target и фиксирует ответ чеклиста.
// Ответ сохраняется как есть: "No" не блокирует переход в Sent, а остаётся
// пометкой для отчётности. Возвращает текст для журнала, если статус менялся.
func ApplyTransition(p *db.Proposal, target, answer string, now time.Time) (string, error) {
	if !allowedStatuses[target] {
		return "", fmt.Errorf("invalid status %q", target)
	}
	if answer != "" && answer != ChecklistYes && answer != ChecklistNo {
		return "", fmt.Errorf("invalid checklist answer %q", answer)
	}
	if NeedsChecklist(p.Status, target) && answer == "" {
		return "", ErrChecklistRequired
	}

	details := ""
	if p.Status != target {
		details = fmt.Sprintf("Status: %s → %s", p.Status, target)
		if answer != "" {
			details += " | Manager Checklist: " + answer
		}
	}

	p.Status = target
	if answer != "" {
		p.ManagerChecklist = answer
	}
	p.UpdatedAt = now
	return details, nil
}
