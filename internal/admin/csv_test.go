package admin

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/dareleague/registration/internal/registration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	t.Run("it should write a header plus one row per registration", func(t *testing.T) {
		regs := []registration.Registration{
			sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusApproved),
			sample("2", "DL-2026-2222", "Pedro Mejía", registration.StatusPending),
		}

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, regs))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, csvHeader, records[0])
		assert.Equal(t, "DL-2026-1111", records[1][0])
		assert.Equal(t, "APPROVED", records[1][8])
		assert.Equal(t, "10/02/2026", records[1][9])
	})

	t.Run("it should survive a comma in the name on re-parse", func(t *testing.T) {
		reg := sample("1", "DL-2026-1111", "Ríos, Ana", registration.StatusPending)

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, []registration.Registration{reg}))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, "Ríos, Ana", records[1][1])
	})

	t.Run("it should fill a missing shirt size with N/A", func(t *testing.T) {
		reg := sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusPending)
		reg.ShirtSize = ""

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, []registration.Registration{reg}))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, "N/A", records[1][7])
	})

	t.Run("it should produce only the header for an empty snapshot", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, nil))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 1)
	})
}
