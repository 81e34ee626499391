package calendar

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []interface{}{
	"Date", "Day", "Day Type", "Holiday", "Condition", "Temp (°C)", "Rain Chance (%)", "Rainfall (mm)",
	"Job Number", "Title", "Customer", "Type", "Team", "Status",
}

// Fill colours per day type, matching the cell style tokens.
var exportFills = map[DayType]string{
	DayTypeWeekend: "DBEAFE",
	DayTypeHoliday: "FEE2E2",
}

// WriteWorkbook writes the month view as a single-sheet .xlsx schedule: one
// row per job, or one row for a day without jobs.
func WriteWorkbook(w io.Writer, view *MonthView) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := view.Title
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E2E8F0"}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	fillStyles := make(map[DayType]int, len(exportFills))
	for dayType, color := range exportFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return fmt.Errorf("creating %s style: %w", dayType, err)
		}
		fillStyles[dayType] = id
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	row := 2
	for _, cell := range orderedCells(view) {
		for _, values := range exportRows(cell) {
			start, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, start, &values); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			if style, ok := fillStyles[cell.DayType]; ok {
				end, _ := excelize.CoordinatesToCellName(len(exportHeader), row)
				if err := f.SetCellStyle(sheet, start, end, style); err != nil {
					return fmt.Errorf("styling row %d: %w", row, err)
				}
			}
			row++
		}
	}

	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	return f.Write(w)
}

func orderedCells(view *MonthView) []Cell {
	cells := make([]Cell, 0, len(view.WeekdayCells)+len(view.WeekendCells))
	cells = append(cells, view.WeekdayCells...)
	cells = append(cells, view.WeekendCells...)
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].Date < cells[j].Date })
	return cells
}

func exportRows(cell Cell) [][]interface{} {
	base := []interface{}{cell.Date, cell.Weekday, string(cell.DayType), "", "", "", "", ""}
	if cell.Holiday != nil {
		base[3] = cell.Holiday.Name
	}
	if r := cell.Weather; r != nil {
		base[4] = string(r.Condition)
		base[5] = r.Temperature
		base[6] = r.RainChance
		base[7] = r.Rainfall
	}

	jobs := cell.Jobs
	if len(jobs) == 0 {
		return [][]interface{}{append(base, "", "", "", "", "", "")}
	}

	rows := make([][]interface{}, 0, len(jobs))
	for _, j := range jobs {
		values := append(append([]interface{}{}, base...), j.JobNumber, j.Title, j.Customer, j.Type, j.Team, j.Status)
		rows = append(rows, values)
	}
	return rows
}
