package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/indieauth-client-discovery/internal/audit"
	"github.com/JakeFAU/indieauth-client-discovery/internal/discovery"
)

const recordID = "01890a5d-ac96-774b-bcce-b302099a8057"

func sampleRecord() audit.Record {
	return audit.Record{
		ID:               recordID,
		ClientID:         "https://app.example/",
		ResolvedClientID: "https://app.example/",
		Format:           "html",
		Outcome:          "ok",
		StatusCode:       200,
		DurationMs:       42,
		DiscoveredAt:     time.Unix(1700000000, 0).UTC(),
		Result:           discovery.Result{ClientID: "https://app.example/", ClientName: "App"},
	}
}

func TestInsertDiscoveryInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewAuditStoreWithPool(mock, "discoveries")
	require.NoError(t, err)

	rec := sampleRecord()
	mock.ExpectExec("INSERT INTO discoveries").
		WithArgs(
			rec.ID,
			rec.ClientID,
			rec.ResolvedClientID,
			rec.Format,
			rec.Outcome,
			rec.StatusCode,
			rec.DurationMs,
			rec.DiscoveredAt,
			[]byte(`{"client_id":"https://app.example/","client_name":"App","client_icon":"","client_uri":"","rels":null,"mf2":null,"html":null,"json":null}`),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.InsertDiscovery(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDiscoveryWrapsExecError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewAuditStoreWithPool(mock, "")
	require.NoError(t, err)

	boom := errors.New("connection lost")
	mock.ExpectExec("INSERT INTO discoveries").WillReturnError(boom)

	err = store.InsertDiscovery(context.Background(), sampleRecord())
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDiscoveryRejectsInvalidID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewAuditStoreWithPool(mock, "audit_rows")
	require.NoError(t, err)

	rec := sampleRecord()
	rec.ID = ""
	require.Error(t, store.InsertDiscovery(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewAuditStoreWithPool(mock, "audit_rows")
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_rows").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditStoreConstructorValidation(t *testing.T) {
	t.Parallel()

	_, err := NewAuditStoreWithPool(nil, "discoveries")
	assert.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	_, err = NewAuditStoreWithPool(mock, "bad; DROP TABLE")
	assert.Error(t, err)

	_, err = NewAuditStore(context.Background(), AuditStoreConfig{})
	assert.Error(t, err)

	_, err = NewAuditStore(context.Background(), AuditStoreConfig{DSN: "postgres://localhost/db", Table: "1bad"})
	assert.Error(t, err)

	var nilStore *AuditStore
	assert.Error(t, nilStore.InsertDiscovery(context.Background(), sampleRecord()))
	nilStore.Close()
}
