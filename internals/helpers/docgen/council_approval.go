package docgen

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// CouncilApprovalData adalah isi surat keputusan pembentukan dewan penguji.
type CouncilApprovalData struct {
	TopicName   string
	Students    []string
	Supervisor  string
	Chairman    string
	Secretary   string
	Members     []string
	ApprovedBy  string
	ApprovedAt  time.Time
	ReferenceNo string
}

// RenderCouncilApproval menghasilkan dokumen PDF A4.
func RenderCouncilApproval(d CouncilApprovalData) ([]byte, error) {
	if d.TopicName == "" || d.Chairman == "" || d.Secretary == "" {
		return nil, errors.New("docgen: topic, chairman and secretary are required")
	}
	if d.ApprovedAt.IsZero() {
		d.ApprovedAt = time.Now().UTC()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Council approval "+d.ReferenceNo, true)
	pdf.SetCreationDate(d.ApprovedAt)
	pdf.SetCompression(true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr("THESIS EXAMINATION COUNCIL APPROVAL"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if d.ReferenceNo != "" {
		pdf.CellFormat(0, 6, tr("No. "+d.ReferenceNo), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr("The examination council for the thesis topic below has been approved by the university administration."), "", "L", false)
	pdf.Ln(3)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 7, tr(label), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(value), "1", 1, "L", false, 0, "")
	}
	row("Topic", d.TopicName)
	for i, s := range d.Students {
		label := ""
		if i == 0 {
			label = "Students"
		}
		row(label, s)
	}
	if d.Supervisor != "" {
		row("Supervisor", d.Supervisor)
	}
	row("Chairman", d.Chairman)
	row("Secretary", d.Secretary)
	for i, m := range d.Members {
		row(fmt.Sprintf("Member %d", i+1), m)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Approved on "+d.ApprovedAt.Format("02 January 2006")), "", 1, "R", false, 0, "")
	if d.ApprovedBy != "" {
		pdf.Ln(16)
		pdf.CellFormat(0, 6, tr(d.ApprovedBy), "", 1, "R", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("docgen: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("docgen: %w", err)
	}
	return buf.Bytes(), nil
}
