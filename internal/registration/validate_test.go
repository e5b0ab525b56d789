package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() Form {
	return Form{
		FullName:       "Laura Gómez",
		DocumentID:     "1002003004",
		Age:            "27",
		Phone:          "3001234567",
		Email:          "laura@example.com",
		Category:       "INTERMEDIO",
		Gender:         "FEMENINO",
		ShirtSize:      "M",
		Gym:            "Box Norte",
		EmergencyName:  "Carlos Gómez",
		EmergencyPhone: "3017654321",
		PaymentMethod:  "Nequi",
		TermsAccepted:  true,
	}
}

func TestValidateStep1(t *testing.T) {
	t.Run("it should accept a complete personal step", func(t *testing.T) {
		assert.Empty(t, ValidateStep1(validForm()))
	})

	t.Run("it should require every identity field", func(t *testing.T) {
		errs := ValidateStep1(Form{})
		assert.Equal(t, "Requerido", errs["full_name"])
		assert.Equal(t, "Requerido", errs["document_id"])
		assert.Equal(t, "Requerido", errs["age"])
		assert.Equal(t, "Requerido", errs["email"])
		assert.Equal(t, "Requerido", errs["phone"])
	})

	t.Run("it should reject a malformed email", func(t *testing.T) {
		f := validForm()
		f.Email = "laura@nodomain"
		assert.Equal(t, "Email inválido", ValidateStep1(f)["email"])
	})

	t.Run("it should reject letters in the phone", func(t *testing.T) {
		f := validForm()
		f.Phone = "300ABC4567"
		assert.Equal(t, "Solo números", ValidateStep1(f)["phone"])
	})

	t.Run("it should reject a non-numeric age", func(t *testing.T) {
		f := validForm()
		f.Age = "veinte"
		assert.Equal(t, "Edad inválida", ValidateStep1(f)["age"])
	})
}

func TestValidateStep2(t *testing.T) {
	empty := map[string]int{}

	t.Run("it should accept a complete competition step", func(t *testing.T) {
		assert.Empty(t, ValidateStep2(validForm(), empty, 32))
	})

	t.Run("it should require a known category and gender", func(t *testing.T) {
		f := validForm()
		f.Category = "ELITE"
		f.Gender = ""
		errs := ValidateStep2(f, empty, 32)
		assert.Equal(t, "Selecciona una categoría", errs["category"])
		assert.Equal(t, "Selecciona tu género", errs["gender"])
	})

	t.Run("it should flag a full bucket", func(t *testing.T) {
		counts := map[string]int{"INTERMEDIO_FEMENINO": 32}
		errs := ValidateStep2(validForm(), counts, 32)
		assert.Equal(t, "Cupo agotado para esta selección", errs["category"])
	})

	t.Run("it should leave other buckets unaffected", func(t *testing.T) {
		counts := map[string]int{"INTERMEDIO_MASCULINO": 32}
		assert.Empty(t, ValidateStep2(validForm(), counts, 32))
	})
}

func TestValidateStep3(t *testing.T) {
	t.Run("it should require the waiver", func(t *testing.T) {
		f := validForm()
		f.TermsAccepted = false
		assert.Equal(t, "Debes aceptar los términos", ValidateStep3(f, true)["terms_accepted"])
	})

	t.Run("it should require the payment proof", func(t *testing.T) {
		assert.Equal(t, "Comprobante requerido", ValidateStep3(validForm(), false)["payment_proof"])
	})
}

func TestValidateProof(t *testing.T) {
	t.Run("it should accept jpeg png and pdf", func(t *testing.T) {
		for _, ct := range []string{"image/jpeg", "image/png", "application/pdf"} {
			assert.Empty(t, ValidateProof(ct, 1024), ct)
		}
	})

	t.Run("it should reject other content types", func(t *testing.T) {
		assert.Equal(t, "Solo JPG, PNG o PDF", ValidateProof("image/gif", 1024)["payment_proof"])
	})

	t.Run("it should reject files over five megabytes", func(t *testing.T) {
		assert.Equal(t, "Máximo 5MB", ValidateProof("image/png", MaxProofSize+1)["payment_proof"])
	})

	t.Run("it should accept a file exactly at the limit", func(t *testing.T) {
		assert.Empty(t, ValidateProof("image/png", MaxProofSize))
	})
}

func TestModelHelpers(t *testing.T) {
	t.Run("it should build the bucket key upper-cased", func(t *testing.T) {
		assert.Equal(t, "PRINCIPIANTE_MASCULINO", BucketKey(CategoryPrincipiante, GenderMasculino))
	})

	t.Run("it should slug the proof path from category and gender", func(t *testing.T) {
		path := ProofPath(CategoryIntermedio, GenderFemenino, "DL-2026-1234", "recibo.PNG")
		assert.Equal(t, "intermedio-femenino/DL-2026-1234.png", path)
	})

	t.Run("it should validate well-formed reference ids", func(t *testing.T) {
		assert.True(t, ValidReferenceID("DL-2026-1234"))
		assert.False(t, ValidReferenceID("DL-2026-123"))
		assert.False(t, ValidReferenceID("XX-2026-1234"))
	})
}
