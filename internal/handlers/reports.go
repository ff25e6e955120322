package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"dvtboard/internal/reports"

	"go.uber.org/zap"
)

func parseReportFilter(r *http.Request) reports.Filter {
	q := r.URL.Query()
	return reports.Filter{
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
		Status:     q.Get("status"),
		Consultant: q.Get("consultant"),
		Client:     q.Get("client"),
	}
}

func parseColumns(r *http.Request) []string {
	raw := r.URL.Query().Get("columns")
	if raw == "" {
		return nil
	}
	ids := []string{}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReportSummaryHandler возвращает итоги по срезу отчёта
func (h *Handler) ReportSummaryHandler(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.Store.GetProposals(r.Context())
	if err != nil {
		h.Log.Error("failed to load proposals for report", zap.Error(err))
		http.Error(w, "Failed to get proposals", http.StatusInternalServerError)
		return
	}

	filtered := reports.Apply(proposals, parseReportFilter(r))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary":   reports.BuildSummary(filtered),
		"proposals": filtered,
		"columns":   reports.AvailableColumns,
	})
}

// ExportReportHandler отдаёт отчёт файлом: format=csv|pdf, columns=id,id,...
func (h *Handler) ExportReportHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "pdf" {
		http.Error(w, "Invalid format, expected csv or pdf", http.StatusBadRequest)
		return
	}

	proposals, err := h.Store.GetProposals(r.Context())
	if err != nil {
		h.Log.Error("failed to load proposals for export", zap.Error(err))
		http.Error(w, "Failed to get proposals", http.StatusInternalServerError)
		return
	}

	filtered := reports.Apply(proposals, parseReportFilter(r))
	columns := parseColumns(r)

	// Файл собирается в буфер: частично записанный ответ хуже ошибки
	var buf bytes.Buffer
	switch format {
	case "csv":
		err = reports.WriteCSV(&buf, filtered, columns)
	case "pdf":
		err = reports.WritePDF(&buf, filtered, columns)
	}
	if err != nil {
		h.Log.Error("failed to render export", zap.String("format", format), zap.Error(err))
		http.Error(w, "Failed to build export", http.StatusInternalServerError)
		return
	}

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="relatorio_ea_drive.csv"`)
	} else {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="relatorio_ea_drive.pdf"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
