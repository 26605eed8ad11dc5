package api

import (
	"fmt"
	"io"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportSheet     = "Bookings"
	exportTimeFmt   = "02.01.2006 15:04"
)

var exportHeaders = []string{"ID", "Item", "Booker", "Start", "End", "Status"}

// writeBookingsXLSX renders one row per booking, coloured by status.
func writeBookingsXLSX(w io.Writer, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	styles := make(map[models.BookingStatus]int)
	for i, b := range bookings {
		row := i + 2
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), b.ItemName)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), b.BookerName)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), b.Start.Format(exportTimeFmt))
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), b.End.Format(exportTimeFmt))
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), string(b.Status))

		style, ok := styles[b.Status]
		if !ok {
			style, err = statusStyle(f, b.Status)
			if err != nil {
				return err
			}
			styles[b.Status] = style
		}
		_ = f.SetCellStyle(exportSheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), style)
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "C", 25)
	_ = f.SetColWidth(exportSheet, "D", "E", 18)
	_ = f.SetColWidth(exportSheet, "F", "F", 12)
	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}
	return nil
}

func statusStyle(f *excelize.File, status models.BookingStatus) (int, error) {
	color := "#FFFFFF"
	switch status {
	case models.StatusApproved:
		color = "#C6EFCE"
	case models.StatusWaiting:
		color = "#FFEB9C"
	case models.StatusRejected, models.StatusCanceled:
		color = "#FFC7CE"
	}
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}
