package postgres

import (
	"context"
	"errors"
	"testing"

	"docbridge/internal/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteTable(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		want    string
		wantErr bool
	}{
		{name: "path-like name", table: "cw2/documents", want: `"cw2/documents"`},
		{name: "schema qualified", table: "public.documents", want: `"public"."documents"`},
		{name: "quote injection", table: `docs"; DROP TABLE x; --`, want: `"docs""; DROP TABLE x; --"`},
		{name: "empty", table: " ", wantErr: true},
		{name: "empty part", table: "public.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuoteTable(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDocumentPostgres(t *testing.T) {
	_, err := NewDocumentPostgres(nil, "documents")
	assert.Error(t, err)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewDocumentPostgres(db, "")
	assert.Error(t, err)
}

func TestDocumentPostgres_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo, err := NewDocumentPostgres(db, "cw2/documents")
	require.NoError(t, err)
	ctx := context.Background()

	doc := &model.Document{
		ID:   "test-uuid",
		Name: "test-uuid_report.pdf",
		URL:  "https://example.com/report.pdf",
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "cw2/documents" \(id, name, url\) VALUES \(\$1, \$2, \$3\) ON CONFLICT \(id\) DO UPDATE`).
			WithArgs(doc.ID, doc.Name, doc.URL).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Upsert(ctx, doc)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO").
			WithArgs(doc.ID, doc.Name, doc.URL).
			WillReturnError(errors.New("write failed"))

		err := repo.Upsert(ctx, doc)

		assert.EqualError(t, err, "write failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo, err := NewDocumentPostgres(db, "cw2/documents")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "url"}).
			AddRow("id-1", "id-1_a.pdf", "https://example.com/a.pdf").
			AddRow("id-2", "id-2_b.pdf", "https://example.com/b.pdf")

		mock.ExpectQuery(`SELECT id, name, url FROM "cw2/documents"$`).WillReturnRows(rows)

		items, err := repo.List(ctx)

		assert.NoError(t, err)
		assert.Equal(t, []model.Document{
			{ID: "id-1", Name: "id-1_a.pdf", URL: "https://example.com/a.pdf"},
			{ID: "id-2", Name: "id-2_b.pdf", URL: "https://example.com/b.pdf"},
		}, items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM").WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url"}))

		items, err := repo.List(ctx)

		assert.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM").WillReturnError(errors.New("read failed"))

		items, err := repo.List(ctx)

		assert.Error(t, err)
		assert.Nil(t, items)
	})

	t.Run("row error", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "url"}).
			AddRow("id-1", "id-1_a.pdf", "u").
			RowError(0, errors.New("broken row"))
		mock.ExpectQuery("SELECT (.+) FROM").WillReturnRows(rows)

		items, err := repo.List(ctx)

		assert.Error(t, err)
		assert.Nil(t, items)
	})
}
