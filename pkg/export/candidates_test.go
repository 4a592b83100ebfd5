package export

import (
	"bytes"
	"testing"
	"time"

	"iisa-recruitment-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCandidatesXLSX(t *testing.T) {
	registered := time.Date(2025, 9, 1, 7, 30, 0, 0, time.UTC)
	candidates := []domain.Candidate{
		{
			ID:                     "c-1",
			FullName:               "Dana Levi",
			Email:                  "dana@example.com",
			Phone:                  "0521234567",
			Age:                    29,
			City:                   "Haifa",
			PerfectCandidateReason: "Pilot",
			RegistrationDate:       &registered,
			LastUpdated:            registered,
		},
		{ID: "c-2", FullName: "Legacy Row", Age: 40},
	}

	data, filename, err := CandidatesXLSX(candidates, time.UTC, registered)
	require.NoError(t, err)
	assert.Equal(t, "iisa_candidates_20250901_073000.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, "Dana Levi", rows[1][0])
	assert.Equal(t, "29", rows[1][3])
	assert.Equal(t, "2025-09-01 07:30", rows[1][7])
	assert.Equal(t, "Legacy Row", rows[2][0])
}

func TestCandidatesXLSXEmpty(t *testing.T) {
	data, _, err := CandidatesXLSX(nil, nil, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
