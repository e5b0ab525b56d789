//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/dareleague/registration/internal/registration"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Needs a live database with the migrations applied:
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/store/
func newIntegrationStore(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.Connect(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), `TRUNCATE registrations`)
	require.NoError(t, err)

	return NewPostgres(pool, zap.NewNop())
}

func integrationRegistration(i int) *registration.Registration {
	return &registration.Registration{
		RegistrationID:   fmt.Sprintf("DL-2026-%04d", 1000+i),
		FullName:         fmt.Sprintf("Atleta %d", i),
		DocumentID:       fmt.Sprintf("90%06d", i),
		Age:              30,
		Phone:            "3000000000",
		Email:            fmt.Sprintf("atleta%d@example.com", i),
		Category:         registration.CategoryPrincipiante,
		Gender:           registration.GenderMasculino,
		ShirtSize:        "M",
		Gym:              "Box Norte",
		EmergencyName:    "Contacto",
		EmergencyPhone:   "3010000000",
		PaymentMethod:    "Nequi",
		PaymentProofPath: fmt.Sprintf("principiante-masculino/DL-2026-%04d.png", 1000+i),
	}
}

func TestInsertWithQuotaConcurrency(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	const maxSlots = 32
	const contenders = 40

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.InsertWithQuota(ctx, integrationRegistration(i), maxSlots)
		}(i)
	}
	wg.Wait()

	accepted, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, registration.ErrSlotsFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, maxSlots, accepted, "the bucket must fill exactly to capacity")
	assert.Equal(t, contenders-maxSlots, full, "everyone past capacity must be refused")

	counts, err := store.BucketCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, maxSlots, counts["PRINCIPIANTE_MASCULINO"])
}

func TestInsertWithQuotaDuplicateRef(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	first := integrationRegistration(1)
	require.NoError(t, store.InsertWithQuota(ctx, first, 32))

	clash := integrationRegistration(2)
	clash.RegistrationID = first.RegistrationID
	err := store.InsertWithQuota(ctx, clash, 32)
	assert.ErrorIs(t, err, registration.ErrDuplicateRef)
}
