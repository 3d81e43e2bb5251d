package roster

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/warp/workday-engine/generic"
)

// birthdayLayouts are the textual date formats accepted in the birthday column.
var birthdayLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01-02T15:04:05",
}

// LoadFile reads a roster spreadsheet from disk.
func LoadFile(path, sheet string) ([]Person, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return LoadXLSX(f, sheet)
}

// LoadXLSX reads a roster from an .xlsx workbook. The first row is a header
// with a name column ("name") and a birthday column ("date_of_birth",
// "birthday" or "dob"). An empty sheet name reads the first sheet. Rows
// without a parseable birthday are skipped; row order is kept.
func LoadXLSX(r io.Reader, sheet string) ([]Person, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	if sheet == "" {
		sheet = file.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []Person{}, nil
	}

	nameIdx, dobIdx, idIdx := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "full name":
			nameIdx = i
		case "date_of_birth", "date of birth", "birthday", "dob":
			dobIdx = i
		case "user_id", "id":
			idIdx = i
		}
	}
	if nameIdx < 0 || dobIdx < 0 {
		return nil, fmt.Errorf("sheet %q: header must contain name and date_of_birth columns", sheet)
	}

	people := []Person{}
	for _, row := range rows[1:] {
		name := cell(row, nameIdx)
		dob, ok := ParseBirthday(cell(row, dobIdx))
		if name == "" || !ok {
			continue
		}
		people = append(people, Person{
			UserID:      generic.UserID(cell(row, idIdx)),
			Name:        name,
			DateOfBirth: dob,
		})
	}
	return people, nil
}

// ParseBirthday accepts ISO and common US/textual dates, plus Excel serial
// day numbers.
func ParseBirthday(value string) (generic.TimePoint, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return generic.TimePoint{}, false
	}

	// Plausible serials only, so a bare year is not read as a date.
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial < 1000 || serial > 80000 {
			return generic.TimePoint{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return generic.TimePoint{}, false
		}
		return generic.NewTimePoint(t.Year(), t.Month(), t.Day()), true
	}

	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return generic.NewTimePoint(t.Year(), t.Month(), t.Day()), true
		}
	}
	return generic.TimePoint{}, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
