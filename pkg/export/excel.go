// Package export renders registration snapshots as spreadsheets for the
// organizers who live in Excel rather than CSV.
package export

import (
	"fmt"
	"io"

	"github.com/dareleague/registration/internal/registration"
	"github.com/xuri/excelize/v2"
)

const (
	SHEET_NAME = "Inscripciones"
)

var columns = []string{
	"ID", "Nombre", "Cédula", "Email", "Teléfono",
	"Categoría", "Género", "Talla Camisa", "Estado", "Fecha",
}

// WriteXlsx writes the full snapshot as a one-sheet workbook with the same
// column order as the CSV export.
func WriteXlsx(w io.Writer, regs []registration.Registration) error {
	f := excelize.NewFile()
	defer f.Close()

	index := f.NewSheet(SHEET_NAME)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("WriteXlsx failed: %w", err)
		}
		if err := f.SetCellValue(SHEET_NAME, cell, name); err != nil {
			return fmt.Errorf("WriteXlsx failed: %w", err)
		}
	}

	for i, r := range regs {
		shirt := r.ShirtSize
		if shirt == "" {
			shirt = "N/A"
		}
		values := []interface{}{
			r.RegistrationID, r.FullName, r.DocumentID, r.Email, r.Phone,
			string(r.Category), string(r.Gender), shirt, string(r.Status),
			r.CreatedAt.Format("02/01/2006"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("WriteXlsx failed: %w", err)
			}
			if err := f.SetCellValue(SHEET_NAME, cell, v); err != nil {
				return fmt.Errorf("WriteXlsx failed: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("WriteXlsx failed: %w", err)
	}
	return nil
}
