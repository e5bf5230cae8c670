package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/taxlens/taxdoc/internal/repository"
)

type fakeRecordStore struct {
	records  []repository.StoredRecord
	lastFrom *time.Time
	lastTo   *time.Time
}

func (f *fakeRecordStore) Insert(context.Context, repository.StoredRecord) error { return nil }

func (f *fakeRecordStore) List(_ context.Context, from, to *time.Time) ([]repository.StoredRecord, error) {
	f.lastFrom, f.lastTo = from, to
	return f.records, nil
}

func (f *fakeRecordStore) Close() error { return nil }

func TestExportRecordsXLSX(t *testing.T) {
	store := &fakeRecordStore{records: []repository.StoredRecord{
		{
			Filename:         "receipt.png",
			Date:             "2024-03-15",
			CounterpartyName: "ACME CAFE",
			Amount:           12.50,
			Category:         "Food",
			IsDeductible:     true,
			DeductionType:    "Meals",
			DeductionDetails: "business meal",
			Description:      "lunch",
		},
		{
			Filename:         "invoice.pdf",
			Date:             "2024-04-01",
			CounterpartyName: "CloudCo",
			Amount:           99.00,
			Category:         "Software",
			IsDeductible:     false,
			DeductionType:    "N/A",
			DeductionDetails: "N/A",
		},
	}}

	data, err := NewService(store, nil).ExportRecordsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records

	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2024-03-15", rows[1][0])
	assert.Equal(t, "ACME CAFE", rows[1][1])
	assert.Equal(t, "Yes", rows[1][4])
	assert.Equal(t, "No", rows[2][4])
	assert.Equal(t, "invoice.pdf", rows[2][8])
}

func TestExportRecordsXLSX_WindowDefaults(t *testing.T) {
	store := &fakeRecordStore{}
	svc := NewService(store, nil)

	from := time.Date(2024, 3, 1, 15, 4, 5, 0, time.Local)
	_, err := svc.ExportRecordsXLSX(context.Background(), &from, nil)
	require.NoError(t, err)

	// from is normalized to a UTC date; a missing to defaults to today
	require.NotNil(t, store.lastFrom)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *store.lastFrom)
	require.NotNil(t, store.lastTo)
	assert.Equal(t, time.UTC, store.lastTo.Location())
}
