// Package report renders trip reports for the skipper and the office:
// an xlsx workbook with crew manifest, watch roster, and payments ledger,
// optionally extended with the sensitive embarkation sheet, plus a plain
// CSV manifest.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// CrewRow is one crew member line of the manifest.
type CrewRow struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Role         domain.CrewRole
	Vision       domain.VisionStatus
	WatchGroup   string
	Status       domain.RegistrationStatus
	SailedBefore bool
	Paid         domain.Cents
	Due          domain.Cents
}

// WatchRow is one member line of the watch sheet, grouped by watch.
// A group without members still gets a single row so the skipper sees it.
type WatchRow struct {
	Group  string
	Member string
	Role   domain.CrewRole
	Vision domain.VisionStatus
}

// PaymentRow is one ledger line of the payments sheet, oldest first.
type PaymentRow struct {
	FullName    string
	Kind        domain.MovementKind
	Amount      domain.Cents
	Description string
	OrderID     string
	RecordedAt  time.Time
}

// SensitiveRow is one line of the embarkation sheet. Plaintext on purpose:
// this sheet only exists in the admin-requested export, and the export itself
// is an audited processing event.
type SensitiveRow struct {
	FullName       string
	NationalID     string
	DocumentType   domain.DocumentType
	DocumentNumber string
}

// TripReport is everything a report render needs, already assembled.
// Sensitive is nil when the embarkation sheet was not requested.
type TripReport struct {
	Trip      domain.Trip
	Crew      []CrewRow
	Watches   []WatchRow
	Payments  []PaymentRow
	Sensitive []SensitiveRow
}

var crewHeader = []string{
	"Last name", "First name", "Email", "Phone", "Role", "Vision",
	"Watch group", "Status", "Sailed before", "Paid", "Due",
}

// BuildXLSX renders the workbook.
func BuildXLSX(r TripReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const crewSheet = "Crew"
	if err := f.SetSheetName("Sheet1", crewSheet); err != nil {
		return nil, fmt.Errorf("report.BuildXLSX: %w", err)
	}

	if err := f.SetSheetRow(crewSheet, "A1", &crewHeader); err != nil {
		return nil, fmt.Errorf("report.BuildXLSX: %w", err)
	}
	for i, row := range r.Crew {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{
			row.LastName, row.FirstName, row.Email, row.Phone,
			string(row.Role), string(row.Vision), row.WatchGroup, string(row.Status),
			row.SailedBefore, row.Paid.Float64(), row.Due.Float64(),
		}
		if err := f.SetSheetRow(crewSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("report.BuildXLSX: %w", err)
		}
	}

	const watchSheet = "Watches"
	if _, err := f.NewSheet(watchSheet); err != nil {
		return nil, fmt.Errorf("report.BuildXLSX: %w", err)
	}
	watchHeader := []string{"Watch group", "Member", "Role", "Vision"}
	if err := f.SetSheetRow(watchSheet, "A1", &watchHeader); err != nil {
		return nil, fmt.Errorf("report.BuildXLSX: %w", err)
	}
	for i, row := range r.Watches {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{row.Group, row.Member, string(row.Role), string(row.Vision)}
		if err := f.SetSheetRow(watchSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("report.BuildXLSX: %w", err)
		}
	}

	const paySheet = "Payments"
	if _, err := f.NewSheet(paySheet); err != nil {
		return nil, fmt.Errorf("report.BuildXLSX: %w", err)
	}
	payHeader := []string{"Date", "Name", "Kind", "Amount", "Description", "Order ID"}
	if err := f.SetSheetRow(paySheet, "A1", &payHeader); err != nil {
		return nil, fmt.Errorf("report.BuildXLSX: %w", err)
	}
	for i, row := range r.Payments {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{
			row.RecordedAt.Format("2006-01-02 15:04"), row.FullName, string(row.Kind),
			row.Amount.Float64(), row.Description, row.OrderID,
		}
		if err := f.SetSheetRow(paySheet, cell, &values); err != nil {
			return nil, fmt.Errorf("report.BuildXLSX: %w", err)
		}
	}

	if r.Sensitive != nil {
		const sheet = "Embarkation"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("report.BuildXLSX: %w", err)
		}
		header := []string{"Full name", "National ID", "Document type", "Document number"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, fmt.Errorf("report.BuildXLSX: %w", err)
		}
		for i, row := range r.Sensitive {
			cell := fmt.Sprintf("A%d", i+2)
			values := []any{row.FullName, row.NationalID, string(row.DocumentType), row.DocumentNumber}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, fmt.Errorf("report.BuildXLSX: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("report.BuildXLSX: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildCSV renders the crew manifest as CSV for imports into other tools.
func BuildCSV(rows []CrewRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(crewHeader); err != nil {
		return nil, fmt.Errorf("report.BuildCSV: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.LastName, row.FirstName, row.Email, row.Phone,
			string(row.Role), string(row.Vision), row.WatchGroup, string(row.Status),
			fmt.Sprintf("%t", row.SailedBefore), row.Paid.String(), row.Due.String(),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("report.BuildCSV: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("report.BuildCSV: %w", err)
	}
	return buf.Bytes(), nil
}
