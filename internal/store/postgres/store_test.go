package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/redline-bd/redline/internal/store"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithDB(mock, zap.NewNop()), mock
}

func TestSourceIDByName(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(sourceIDQuery)).
		WithArgs("The Daily Star").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := s.SourceIDByName(context.Background(), "The Daily Star")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceIDByNameMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(sourceIDQuery)).
		WithArgs("Unknown Outlet").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := s.SourceIDByName(context.Background(), "Unknown Outlet")

	var notFound *store.SourceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Unknown Outlet", notFound.Name)
}

func TestExists(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).
		WithArgs("https://example.com/news/a/b").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.Exists(context.Background(), "https://example.com/news/a/b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpsertArticle(t *testing.T) {
	s, mock := newMockStore(t)

	published := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	scraped := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

	article := store.Article{
		SourceID:    1,
		URL:         "https://example.com/news/bangladesh/clash-345678",
		Title:       "Clash reported in capital",
		Content:     "Long body text",
		Author:      "Staff Correspondent",
		PublishedAt: published,
		ScrapedAt:   scraped,
		ContentHash: "abc123",
	}

	mock.ExpectQuery(regexp.QuoteMeta(upsertArticleQuery)).
		WithArgs(article.SourceID, article.URL, article.Title, article.Content,
			article.Author, article.PublishedAt, article.ScrapedAt, article.ContentHash).
		WillReturnRows(pgxmock.NewRows([]string{"id", "inserted"}).AddRow(int64(42), true))

	id, inserted, err := s.UpsertArticle(context.Background(), article)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnclassified(t *testing.T) {
	s, mock := newMockStore(t)

	published := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(unclassifiedQuery)).
		WithArgs("claude-haiku-4-5", 50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "content", "published_at", "name"}).
			AddRow(int64(1), "First", "Body one", published, "The Daily Star").
			AddRow(int64(2), "Second", "Body two", published, "Prothom Alo"))

	pending, err := s.ListUnclassified(context.Background(), "claude-haiku-4-5", 50)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Equal(t, "Prothom Alo", pending[1].SourceName)
}

func TestSaveClassification(t *testing.T) {
	s, mock := newMockStore(t)

	processed := time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC)
	c := store.Classification{
		ArticleID:           42,
		IsPoliticalViolence: true,
		Confidence:          0.85,
		Reasoning:           "Describes an armed clash between party activists",
		KeyIndicators:       []string{"clash", "injured"},
		ModelVersion:        "claude-haiku-4-5",
		ProcessingTimeMs:    1200,
		ProcessedAt:         processed,
	}

	mock.ExpectQuery(regexp.QuoteMeta(saveClassificationQuery)).
		WithArgs(c.ArticleID, c.IsPoliticalViolence, c.Confidence, c.Reasoning,
			c.KeyIndicators, c.ModelVersion, c.ProcessingTimeMs, c.ProcessedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))

	id, err := s.SaveClassification(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
}

func TestSaveLocationsCommitsTransaction(t *testing.T) {
	s, mock := newMockStore(t)

	at := time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC)
	wkt := "POINT(90.4125 23.8103)"
	rows := []store.LocationRow{
		{
			ExtractedText:  "Dhaka",
			NormalizedName: "Dhaka, Bangladesh",
			WKT:            &wkt,
			Confidence:     "high",
			Method:         "ai",
			Context:        "clashes in Dhaka on Friday",
		},
		{
			ExtractedText: "Mirpur",
			Confidence:    "medium",
			Method:        "ai",
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertLocationQuery)).
		WithArgs(int64(42), "Dhaka", "Dhaka, Bangladesh", &wkt, "high",
			"ai", "clashes in Dhaka on Friday").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery(regexp.QuoteMeta(insertLocationQuery)).
		WithArgs(int64(42), "Mirpur", "", (*string)(nil), "medium",
			"ai", "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectExec(regexp.QuoteMeta(markProcessedQuery)).
		WithArgs(int64(42), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	ids, err := s.SaveLocations(context.Background(), 42, rows, at)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLocationsRollsBackOnInsertError(t *testing.T) {
	s, mock := newMockStore(t)

	at := time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC)
	rows := []store.LocationRow{{ExtractedText: "Dhaka", Confidence: "low", Method: "m"}}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertLocationQuery)).
		WithArgs(int64(42), "Dhaka", "", (*string)(nil), "low", "m", "").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := s.SaveLocations(context.Background(), 42, rows, at)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLocationsEmptyStillMarksProcessed(t *testing.T) {
	s, mock := newMockStore(t)

	at := time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(markProcessedQuery)).
		WithArgs(int64(42), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	ids, err := s.SaveLocations(context.Background(), 42, nil, at)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRecordSession(t *testing.T) {
	s, mock := newMockStore(t)

	started := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Minute)
	sess := store.Session{
		SourceID:      1,
		RunID:         "0190b5a0-0000-7000-8000-000000000000",
		StartedAt:     started,
		CompletedAt:   finished,
		Status:        "completed",
		ArticlesFound: 10,
		ArticlesNew:   8,
		ErrorsCount:   2,
	}

	mock.ExpectExec(regexp.QuoteMeta(recordSessionQuery)).
		WithArgs(sess.SourceID, sess.StartedAt, sess.CompletedAt, sess.Status,
			sess.ArticlesFound, sess.ArticlesNew, sess.ArticlesUpdated,
			sess.ErrorsCount, []byte(`{"run_id":"0190b5a0-0000-7000-8000-000000000000"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.RecordSession(context.Background(), sess))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchSourceScraped(t *testing.T) {
	s, mock := newMockStore(t)

	at := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(touchSourceQuery)).
		WithArgs(int64(1), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.TouchSourceScraped(context.Background(), 1, at))
}
