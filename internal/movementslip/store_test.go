package movementslip

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSlip() Slip {
	end := time.Date(2026, 10, 17, 12, 15, 0, 0, time.UTC)
	return Slip{
		BookingID:      "4001",
		Owner:          "jsmith",
		PrisonerName:   "John Saunders",
		PrisonerNumber: "G6123VU",
		CellLocation:   "1-1-035",
		Reason:         "Adjudication Hearing",
		Location:       "Local name two",
		Comments:       "Comment x",
		Start:          time.Date(2026, 10, 17, 11, 5, 0, 0, time.UTC),
		End:            &end,
		CreatedBy:      "Jo Smith",
		CreatedAt:      time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_ConsumeOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, sampleSlip()))

	_, err := store.Consume(ctx, "4001", "someone-else", "G6123VU")
	assert.ErrorIs(t, err, ErrNotFound)

	slip, err := store.Consume(ctx, "4001", "jsmith", "G6123VU")
	require.NoError(t, err)
	assert.Equal(t, "G6123VU", slip.PrisonerNumber)
	assert.Equal(t, "11:05 to 12:15", slip.TimeRange())

	_, err = store.Consume(ctx, "4001", "jsmith", "G6123VU")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_WrongPrisonerDoesNotConsume(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, sampleSlip()))

	_, err := store.Consume(ctx, "4001", "jsmith", "A1234BC")
	assert.ErrorIs(t, err, ErrNotFound)

	slip, err := store.Consume(ctx, "4001", "jsmith", " g6123vu ")
	require.NoError(t, err)
	assert.Equal(t, "G6123VU", slip.PrisonerNumber)
}

func TestMemoryStore_ConcurrentConsumeSingleWinner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, sampleSlip()))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Consume(ctx, "4001", "jsmith", "G6123VU"); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestPostgresStore_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newPostgresStoreWithExec(mock)
	slip := sampleSlip()

	mock.ExpectExec("INSERT INTO movement_slips").
		WithArgs("4001", "jsmith", "G6123VU", pgxmock.AnyArg(), slip.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Create(context.Background(), slip))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Consume(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newPostgresStoreWithExec(mock)
	details, err := json.Marshal(sampleSlip())
	require.NoError(t, err)

	mock.ExpectQuery("UPDATE movement_slips").
		WithArgs("4001", "jsmith", "G6123VU", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"details"}).AddRow(details))
	mock.ExpectQuery("UPDATE movement_slips").
		WithArgs("4001", "jsmith", "G6123VU", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	slip, err := store.Consume(context.Background(), "4001", "jsmith", "g6123vu")
	require.NoError(t, err)
	assert.Equal(t, "Local name two", slip.Location)
	assert.Equal(t, "Jo Smith", slip.CreatedBy)

	_, err = store.Consume(context.Background(), "4001", "jsmith", "G6123VU")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ConsumeDatabaseError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newPostgresStoreWithExec(mock)
	mock.ExpectQuery("UPDATE movement_slips").WillReturnError(errors.New("connection reset"))

	_, err = store.Consume(context.Background(), "4001", "jsmith", "G6123VU")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestNewPostgresStore_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewPostgresStore(nil) })
}
