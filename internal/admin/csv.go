package admin

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dareleague/registration/internal/registration"
)

// csvHeader is the fixed export column order. Consumers key on these names;
// never reorder.
var csvHeader = []string{
	"ID", "Nombre", "Cédula", "Email", "Teléfono",
	"Categoría", "Género", "Talla Camisa", "Estado", "Fecha",
}

// WriteCSV streams the snapshot as CSV. Free-text fields containing the
// delimiter come out quoted, so a full name with a comma survives a
// re-parse intact.
func WriteCSV(w io.Writer, regs []registration.Registration) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("WriteCSV failed: %w", err)
	}

	for _, r := range regs {
		shirt := r.ShirtSize
		if shirt == "" {
			shirt = "N/A"
		}
		row := []string{
			r.RegistrationID,
			r.FullName,
			r.DocumentID,
			r.Email,
			r.Phone,
			string(r.Category),
			string(r.Gender),
			shirt,
			string(r.Status),
			r.CreatedAt.Format("02/01/2006"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("WriteCSV failed: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
