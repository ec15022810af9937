package payroll

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PayslipArtifact is the opaque outcome of rendering: the core stores this
// metadata and nothing about the document itself.
type PayslipArtifact struct {
	Path   string
	SHA256 string
	Size   int64
}

// EmployeeDirectory resolves the display name printed on a payslip. The
// employee feature implements it; payroll only needs this one lookup.
type EmployeeDirectory interface {
	FullName(ctx context.Context, employeeID string) (string, error)
}

type PayslipGenerator interface {
	Generate(rec *PayrollRecord, employeeName string) (PayslipArtifact, error)
}

// pdfPayslipGenerator renders a minimal single-page PDF without external
// tooling and writes it under dir.
type pdfPayslipGenerator struct {
	dir string
}

func NewPDFPayslipGenerator(dir string) PayslipGenerator {
	if dir == "" {
		dir = "payslips"
	}
	return &pdfPayslipGenerator{dir: dir}
}

func (g *pdfPayslipGenerator) Generate(rec *PayrollRecord, employeeName string) (PayslipArtifact, error) {
	lines := payslipLines(rec, employeeName)
	pdf, err := buildSimplePayslipPDF(lines)
	if err != nil {
		return PayslipArtifact{}, err
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return PayslipArtifact{}, err
	}
	path := filepath.Join(g.dir, rec.PayrollNumber+".pdf")
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return PayslipArtifact{}, err
	}

	sum := sha256.Sum256(pdf)
	return PayslipArtifact{
		Path:   path,
		SHA256: hex.EncodeToString(sum[:]),
		Size:   int64(len(pdf)),
	}, nil
}

func payslipLines(rec *PayrollRecord, employeeName string) []string {
	lines := []string{
		fmt.Sprintf("Payslip %s", rec.PayrollNumber),
		fmt.Sprintf("Employee: %s", employeeName),
		fmt.Sprintf("Period: %04d-%02d", rec.Year, rec.Month),
		fmt.Sprintf("Base salary: %s %s", rec.BaseSalary.StringFixed(2), rec.Currency),
		"",
	}
	for _, item := range rec.Items {
		sign := "+"
		if item.Kind == ItemDeduction {
			sign = "-"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s (%s)",
			sign, item.Amount.StringFixed(2), item.Currency, item.Category, item.Description))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Total earnings: %s %s", rec.TotalEarnings.StringFixed(2), rec.Currency),
		fmt.Sprintf("Total deductions: %s %s", rec.TotalDeductions.StringFixed(2), rec.Currency),
		fmt.Sprintf("Net salary: %s %s", rec.NetSalary.StringFixed(2), rec.Currency),
	)
	return lines
}

// GeneratePayslip renders and attaches the payslip document. It is invoked
// by the kafka consumer, not by HTTP handlers.
func (s *service) GeneratePayslip(ctx context.Context, id string) (PayslipResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayslipResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := s.loadRecord(ctx, qtx, id)
	if err != nil {
		return PayslipResponse{}, err
	}

	name := rec.EmployeeID.String()
	if s.directory != nil {
		if full, err := s.directory.FullName(ctx, rec.EmployeeID.String()); err == nil && full != "" {
			name = full
		}
	}

	artifact, err := s.payslip.Generate(rec, name)
	if err != nil {
		return PayslipResponse{}, err
	}
	if err := rec.RecordPayslip(artifact.Path, artifact.SHA256, artifact.Size, s.clock()); err != nil {
		return PayslipResponse{}, err
	}
	if err := qtx.Update(ctx, rec); err != nil {
		return PayslipResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayslipResponse{}, err
	}

	return PayslipResponse{
		PayrollID:     rec.ID.String(),
		PayrollNumber: rec.PayrollNumber,
		Path:          artifact.Path,
		SHA256:        artifact.SHA256,
		Size:          artifact.Size,
		GeneratedAt:   rec.PayslipGeneratedAt,
	}, nil
}

func buildSimplePayslipPDF(lines []string) ([]byte, error) {
	if len(lines) == 0 {
		lines = []string{"Payslip"}
	}

	var content strings.Builder
	content.WriteString("BT\n/F1 12 Tf\n50 800 Td\n14 TL\n")
	for i, line := range lines {
		escaped := pdfEscape(line)
		if i == 0 {
			content.WriteString(fmt.Sprintf("(%s) Tj\n", escaped))
			continue
		}
		content.WriteString(fmt.Sprintf("T* (%s) Tj\n", escaped))
	}
	content.WriteString("ET")

	stream := content.String()
	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>\nendobj\n",
		"4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n",
		fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects)+1)
	offsets = append(offsets, 0)

	for _, obj := range objects {
		offsets = append(offsets, out.Len())
		out.WriteString(obj)
	}

	xrefStart := out.Len()
	out.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)))
	out.WriteString("0000000000 65535 f \n")
	for i := 1; i < len(offsets); i++ {
		out.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[i]))
	}
	out.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets), xrefStart))

	return out.Bytes(), nil
}

func pdfEscape(v string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return replacer.Replace(v)
}
