// Package audit renders booking data as downloadable Excel exports for the
// admin panel.
package audit

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/BerakaStudio/spinbook-two/internal/models"
)

const sheetName = "Reservas"

var exportColumns = []string{
	"ID", "Fecha", "Horas", "Servicios", "Cliente", "Email", "Teléfono", "Observaciones", "Creada",
}

// WriteBookingsExcel writes one sheet with a bold header row and one row per
// booking, in the order given.
func WriteBookingsExcel(w io.Writer, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return err
		}
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = f.SetCellStyle(sheetName, startCell, endCell, style)
	}

	for row, b := range bookings {
		created := ""
		if !b.CreatedAt.IsZero() {
			created = b.CreatedAt.Format(time.RFC3339)
		}
		values := []interface{}{
			b.ID,
			b.Date,
			models.FormatSlotRanges(b.Slots),
			models.ServiceDisplayNames(b.Services),
			b.UserData.Name,
			b.UserData.Email,
			b.UserData.Phone,
			b.UserData.Observations,
			created,
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write excel: %w", err)
	}
	return nil
}
