// Package export renders the candidate list as a spreadsheet.
package export

import (
	"bytes"
	"fmt"
	"time"

	"iisa-recruitment-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Candidates"

type column struct {
	header string
	width  float64
	value  func(c domain.Candidate, loc *time.Location) interface{}
}

var columns = []column{
	{"FULL NAME", 24, func(c domain.Candidate, _ *time.Location) interface{} { return c.FullName }},
	{"EMAIL", 28, func(c domain.Candidate, _ *time.Location) interface{} { return c.Email }},
	{"PHONE", 14, func(c domain.Candidate, _ *time.Location) interface{} { return c.Phone }},
	{"AGE", 8, func(c domain.Candidate, _ *time.Location) interface{} { return c.Age }},
	{"CITY", 16, func(c domain.Candidate, _ *time.Location) interface{} { return c.City }},
	{"HOBBIES", 30, func(c domain.Candidate, _ *time.Location) interface{} { return c.Hobbies }},
	{"WHY PERFECT CANDIDATE", 50, func(c domain.Candidate, _ *time.Location) interface{} { return c.PerfectCandidateReason }},
	{"REGISTERED", 18, func(c domain.Candidate, loc *time.Location) interface{} {
		if c.RegistrationDate == nil {
			return ""
		}
		return c.RegistrationDate.In(loc).Format("2006-01-02 15:04")
	}},
	{"LAST UPDATED", 18, func(c domain.Candidate, loc *time.Location) interface{} {
		if c.LastUpdated.IsZero() {
			return ""
		}
		return c.LastUpdated.In(loc).Format("2006-01-02 15:04")
	}},
	{"PHOTO", 40, func(c domain.Candidate, _ *time.Location) interface{} { return c.ProfileImageURL }},
}

// Headers lists the header row in column order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = col.header
	}
	return out
}

// CandidatesXLSX writes one styled header row and one row per candidate.
// Timestamps are rendered in loc.
func CandidatesXLSX(candidates []domain.Candidate, loc *time.Location, now time.Time) ([]byte, string, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, "", fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, col.header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, name, name, col.width)
	}

	// Dark blue header with white bold text
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
	_ = f.SetCellStyle(SheetName, "A1", endCell, headerStyle)
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for rowIdx, c := range candidates {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(SheetName, cell, col.value(c, loc)); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", rowIdx+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("iisa_candidates_%s.xlsx", now.In(loc).Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}
