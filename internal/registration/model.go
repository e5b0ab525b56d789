package registration

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

type Category string

const (
	CategoryPrincipiante Category = "PRINCIPIANTE"
	CategoryIntermedio   Category = "INTERMEDIO"
)

func Categories() []Category {
	return []Category{CategoryPrincipiante, CategoryIntermedio}
}

type Gender string

const (
	GenderMasculino Gender = "MASCULINO"
	GenderFemenino  Gender = "FEMENINO"
)

func Genders() []Gender {
	return []Gender{GenderMasculino, GenderFemenino}
}

type Status string

const (
	StatusPending  Status = "PENDING_VALIDATION"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var (
	ErrSlotsFull    = errors.New("slots exhausted for this bucket")
	ErrClosed       = errors.New("registration is closed")
	ErrNotFound     = errors.New("registration not found")
	ErrDuplicateRef = errors.New("reference id already taken")
)

// Registration is one athlete submission. Mutated only through admin actions
// after creation.
type Registration struct {
	ID               string
	RegistrationID   string
	FullName         string
	DocumentID       string
	Age              int
	Phone            string
	Email            string
	Category         Category
	Gender           Gender
	ShirtSize        string
	Gym              string
	EmergencyName    string
	EmergencyPhone   string
	PaymentMethod    string
	Status           Status
	PaymentProofPath string
	RejectionNotes   string
	CreatedAt        time.Time
}

// BucketKey is the capacity-accounting unit: "{CATEGORY}_{GENDER}", upper-cased.
func BucketKey(c Category, g Gender) string {
	return strings.ToUpper(fmt.Sprintf("%s_%s", c, g))
}

// NewReferenceID produces the human-readable id shown to athletes,
// format DL-<event-year>-<4 digits>. Uniqueness is enforced by the store.
func NewReferenceID(year int, rnd *rand.Rand) string {
	return fmt.Sprintf("DL-%d-%d", year, 1000+rnd.Intn(9000))
}

var refIDPattern = regexp.MustCompile(`^DL-\d{4}-\d{4}$`)

func ValidReferenceID(id string) bool {
	return refIDPattern.MatchString(id)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)

// ProofPath derives the storage path for an uploaded payment proof:
// "<category>-<gender>/<reference id>.<ext>", one folder per bucket.
func ProofPath(c Category, g Gender, refID, filename string) string {
	ext := "bin"
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		ext = strings.ToLower(filename[i+1:])
	}
	slug := slugStrip.ReplaceAllString(strings.ToLower(fmt.Sprintf("%s-%s", c, g)), "")
	return fmt.Sprintf("%s/%s.%s", slug, refID, ext)
}
