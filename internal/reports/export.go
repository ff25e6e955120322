package reports

import (
	"encoding/csv"
	"io"

	"dvtboard/db"

	"github.com/go-pdf/fpdf"
)

// WriteCSV выгружает срез в CSV с выбранными колонками
func WriteCSV(w io.Writer, proposals []db.Proposal, ids []string) error {
	headers, rows := BuildTable(proposals, ids)
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePDF рисует табличный отчёт: альбомный A4, шапка на цветном фоне,
// стоимость в денежном формате
func WritePDF(w io.Writer, proposals []db.Proposal, ids []string) error {
	headers, rows := BuildDisplayTable(proposals, ids)

	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(headers))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(133, 168, 57)
	pdf.SetTextColor(255, 255, 255)
	for _, h := range headers {
		pdf.CellFormat(colW, 7, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for _, cell := range row {
			pdf.CellFormat(colW, 6, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
