package exportsvc

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/course"
)

const (
	maxSheetNameLen = 31
	defaultSheet    = "Sheet1"
)

var marks = map[attendance.Status]string{
	attendance.Present: "+",
	attendance.Absent:  "-",
}

// AttendanceWorkbook writes the attendance grid of crs as an XLSX workbook:
// one row per student with a column per class date, the attendance % and the total paid.
func AttendanceWorkbook(
	w io.Writer,
	crs course.Course,
	students []course.Student,
	dates []course.ClassDate,
	sheet attendance.Sheet,
) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := SheetName(crs.Name)
	if err := f.SetSheetName(defaultSheet, name); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	header := make([]interface{}, 0, len(dates)+4)
	header = append(header, "Student", "Phone")
	for _, d := range dates {
		header = append(header, d.Label)
	}
	header = append(header, "%", "Paid")
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, std := range students {
		row := make([]interface{}, 0, len(header))
		row = append(row, std.Name, std.Phone.String)
		for _, d := range dates {
			row = append(row, marks[sheet.Mark(std.ID, d.ID)])
		}
		row = append(row, sheet.Stats[std.ID], std.TotalPaid)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		if err = f.SetSheetRow(name, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row of student %d", std.ID)
		}
	}

	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return errors.Wrap(err, "freezing panes")
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// SheetName makes a course name usable as a worksheet name.
func SheetName(courseName string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(courseName))
	name = strings.Trim(name, "'")

	if utf8.RuneCountInString(name) > maxSheetNameLen {
		name = string([]rune(name)[:maxSheetNameLen])
	}
	if name == "" {
		return "Attendance"
	}
	return name
}

// FileName is the download name of the workbook of crs.
func FileName(crs course.Course) string {
	return strings.ReplaceAll(SheetName(crs.Name), " ", "_") + "_attendance.xlsx"
}
