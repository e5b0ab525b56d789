package registration

import (
	"regexp"
	"strconv"
	"strings"
)

// Form carries the raw wizard fields as submitted. Values stay strings until
// validated so error messages can point at exactly what the athlete typed.
type Form struct {
	FullName       string `json:"full_name"`
	DocumentID     string `json:"document_id"`
	Age            string `json:"age"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Category       string `json:"category"`
	Gender         string `json:"gender"`
	ShirtSize      string `json:"shirt_size"`
	Gym            string `json:"gym"`
	EmergencyName  string `json:"emergency_name"`
	EmergencyPhone string `json:"emergency_phone"`
	PaymentMethod  string `json:"payment_method"`
	TermsAccepted  bool   `json:"terms_accepted"`
}

// FieldErrors maps form field name to a user-facing message.
type FieldErrors map[string]string

func (e FieldErrors) Empty() bool { return len(e) == 0 }

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateStep1 covers the personal-info step: identity fields required,
// email well-formed, phone digits only.
func ValidateStep1(f Form) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.FullName) == "" {
		errs["full_name"] = "Requerido"
	}
	if strings.TrimSpace(f.DocumentID) == "" {
		errs["document_id"] = "Requerido"
	}
	if strings.TrimSpace(f.Age) == "" {
		errs["age"] = "Requerido"
	} else if n, err := strconv.Atoi(strings.TrimSpace(f.Age)); err != nil || n <= 0 {
		errs["age"] = "Edad inválida"
	}

	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = "Requerido"
	} else if !emailPattern.MatchString(f.Email) {
		errs["email"] = "Email inválido"
	}

	if strings.TrimSpace(f.Phone) == "" {
		errs["phone"] = "Requerido"
	} else if !phonePattern.MatchString(f.Phone) {
		errs["phone"] = "Solo números"
	}

	return errs
}

// ValidateStep2 covers the competition-info step. The quota check here is the
// soft pre-check against the supplied counts; the authoritative check happens
// inside the insert transaction.
func ValidateStep2(f Form, counts map[string]int, maxSlots int) FieldErrors {
	errs := FieldErrors{}

	cat, catOK := parseCategory(f.Category)
	if !catOK {
		errs["category"] = "Selecciona una categoría"
	}
	gen, genOK := parseGender(f.Gender)
	if !genOK {
		errs["gender"] = "Selecciona tu género"
	}
	if f.ShirtSize == "" {
		errs["shirt_size"] = "Selecciona tu talla"
	}
	if strings.TrimSpace(f.Gym) == "" {
		errs["gym"] = `Ingresa tu gimnasio o "Independiente"`
	}
	if strings.TrimSpace(f.EmergencyName) == "" {
		errs["emergency_name"] = "Contacto de emergencia requerido"
	}
	if strings.TrimSpace(f.EmergencyPhone) == "" {
		errs["emergency_phone"] = "Requerido"
	}

	if catOK && genOK {
		if counts[BucketKey(cat, gen)] >= maxSlots {
			errs["category"] = "Cupo agotado para esta selección"
		}
	}

	return errs
}

// ValidateStep3 covers the payment step: waiver accepted, proof attached.
// Proof content checks live in ValidateProof since they need file metadata.
func ValidateStep3(f Form, hasProof bool) FieldErrors {
	errs := FieldErrors{}
	if !f.TermsAccepted {
		errs["terms_accepted"] = "Debes aceptar los términos"
	}
	if !hasProof {
		errs["payment_proof"] = "Comprobante requerido"
	}
	return errs
}

const MaxProofSize = 5 << 20 // 5 MB

var allowedProofTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// ValidateProof enforces the upload restrictions: JPEG/PNG/PDF, at most 5 MB.
func ValidateProof(contentType string, size int64) FieldErrors {
	errs := FieldErrors{}
	if !allowedProofTypes[strings.ToLower(strings.TrimSpace(contentType))] {
		errs["payment_proof"] = "Solo JPG, PNG o PDF"
		return errs
	}
	if size > MaxProofSize {
		errs["payment_proof"] = "Máximo 5MB"
	}
	return errs
}

func parseCategory(s string) (Category, bool) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryPrincipiante:
		return CategoryPrincipiante, true
	case CategoryIntermedio:
		return CategoryIntermedio, true
	}
	return "", false
}

func parseGender(s string) (Gender, bool) {
	switch Gender(strings.ToUpper(strings.TrimSpace(s))) {
	case GenderMasculino:
		return GenderMasculino, true
	case GenderFemenino:
		return GenderFemenino, true
	}
	return "", false
}
