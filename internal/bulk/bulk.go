// Package bulk reads and writes spreadsheet snapshots of the family table.
// Import runs each row through the same ingestion engine as a form
// submission, so bulk data gets identical validation, deduplication and
// rejection handling.
package bulk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"takaful/internal/ingest"
	"takaful/internal/normalize"
	"takaful/internal/store"
	"takaful/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Familles"

// exportHeaders are written in French; import accepts headers in any of the
// supported languages through normalize.FieldName.
var exportHeaders = []string{
	"ID",
	"Nom",
	"Prénom",
	"Téléphone",
	"Téléphone secondaire",
	"Email",
	"Adresse",
	"Adultes",
	"Enfants",
	"Zakat",
	"Sadaqa",
	"Se déplace",
	"Langue",
	"Criticité",
	"Statut",
	"Situation",
	"Ressenti",
	"Précisions",
}

var exportColumnWidths = []float64{
	6, 18, 18, 20, 20, 28, 40, 9, 9, 8, 8, 11, 12, 10, 14, 40, 40, 40,
}

type ImportReport struct {
	Total    int      `json:"total"`
	Created  int      `json:"created"`
	Merged   int      `json:"merged"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

type Service struct {
	engine   *ingest.Engine
	families store.FamilyStore
	logger   *logrus.Logger
}

func NewService(engine *ingest.Engine, families store.FamilyStore, logger *logrus.Logger) *Service {
	return &Service{engine: engine, families: families, logger: logger}
}

// Import parses an xlsx stream and feeds every data row to the ingestion
// engine. A row that fails terminally is counted and reported, it never
// aborts the rest of the file.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return &ImportReport{}, nil
	}

	columns := mapHeaders(rows[0])
	report := &ImportReport{}
	for i := 1; i < len(rows); i++ {
		if rowEmpty(rows[i]) {
			continue
		}
		report.Total++

		sub := rowToSubmission(columns, rows[i])
		out, err := s.engine.Process(ctx, sub)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		switch {
		case out.Rejected:
			report.Rejected++
		case out.Merged:
			report.Merged++
		default:
			report.Created++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"total":    report.Total,
		"created":  report.Created,
		"merged":   report.Merged,
		"rejected": report.Rejected,
		"errors":   len(report.Errors),
	}).Info("spreadsheet import finished")
	return report, nil
}

// Export renders the whole table as a styled xlsx workbook.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	records, err := s.families.Families(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load families: %w", err)
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(sheetName, colName, colName, exportColumnWidths[col]); err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, record := range records {
		row := i + 2
		values := []any{
			record.ID,
			record.LastName,
			record.FirstName,
			record.Phone,
			record.PhoneSecondary,
			record.Email,
			record.Address,
			record.AdultCount,
			record.ChildCount,
			yesNo(record.ZakatEligible),
			yesNo(record.SadaqaEligible),
			yesNo(record.CanTravel),
			record.Language,
			record.Severity,
			string(record.Status),
			record.Circumstance,
			record.Feeling,
			record.Specifics,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yesNo(v bool) string {
	if v {
		return "Oui"
	}
	return "Non"
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// mapHeaders resolves the header row to canonical field names. Unknown
// headers are ignored rather than failing the whole file.
func mapHeaders(headerRow []string) map[string]int {
	columns := map[string]int{}
	for i, header := range headerRow {
		trimmed := strings.TrimSpace(header)
		if strings.EqualFold(trimmed, "id") {
			columns["id"] = i
			continue
		}
		if name, ok := normalize.FieldName(trimmed); ok {
			columns[name] = i
		}
	}
	return columns
}

func col(columns map[string]int, field string) int {
	if idx, ok := columns[field]; ok {
		return idx
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func rowToSubmission(columns map[string]int, row []string) types.Submission {
	sub := types.Submission{
		LastName:        cellAt(row, col(columns, "lastName")),
		FirstName:       cellAt(row, col(columns, "firstName")),
		Phone:           cellAt(row, col(columns, "phone")),
		PhoneSecondary:  cellAt(row, col(columns, "phoneSecondary")),
		Email:           cellAt(row, col(columns, "email")),
		Street:          cellAt(row, col(columns, "street")),
		PostalCode:      cellAt(row, col(columns, "postalCode")),
		City:            cellAt(row, col(columns, "city")),
		AdultCount:      cellAt(row, col(columns, "adultCount")),
		ChildCount:      cellAt(row, col(columns, "childCount")),
		ZakatEligible:   cellAt(row, col(columns, "zakatEligible")),
		SadaqaEligible:  cellAt(row, col(columns, "sadaqaEligible")),
		CanTravel:       cellAt(row, col(columns, "canTravel")),
		Language:        cellAt(row, col(columns, "language")),
		Severity:        cellAt(row, col(columns, "severity")),
		Circumstance:    cellAt(row, col(columns, "circumstance")),
		Feeling:         cellAt(row, col(columns, "feeling")),
		Specifics:       cellAt(row, col(columns, "specifics")),
		IdentityDocRefs: cellAt(row, col(columns, "identityDocRefs")),
		AidDocRefs:      cellAt(row, col(columns, "aidDocRefs")),
		Origin:          "import",
	}
	// exported files carry the whole address in one column; split it back
	// into components when the file has no separate postal code or city
	if sub.Street != "" && sub.PostalCode == "" && sub.City == "" {
		components := normalize.ParseAddressComponents(sub.Street)
		if components.PostalCode != "" || components.City != "" {
			sub.Street = components.Street
			sub.PostalCode = components.PostalCode
			sub.City = components.City
		}
	}

	// an explicit id column turns the row into an update
	if idx, ok := columns["id"]; ok {
		if raw := cellAt(row, idx); raw != "" {
			if _, err := strconv.Atoi(raw); err == nil {
				sub.TargetID = raw
			}
		}
	}
	return sub
}
