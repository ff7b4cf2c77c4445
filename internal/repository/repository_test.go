package repository_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/b2breeze/constants"
	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
	"github.com/joseph-ayodele/b2breeze/internal/extract"
	"github.com/joseph-ayodele/b2breeze/internal/repository"
)

func newTestDB(t *testing.T) *repository.DB {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.HealthCheck(ctx, time.Second))
	return db
}

func newCardFile(t *testing.T, db *repository.DB, hash string) *entity.CardFile {
	t.Helper()
	f, _, err := repository.NewCardFileRepository(db, nil).UpsertByHash(context.Background(), &entity.CardFile{
		SourcePath:  "/inbox/" + hash + ".png",
		ContentHash: []byte(hash),
		Filename:    hash + ".png",
		FileExt:     "png",
		FileSize:    42,
	})
	require.NoError(t, err)
	return f
}

func TestIsSQLite(t *testing.T) {
	t.Parallel()

	assert.True(t, repository.IsSQLite(":memory:"))
	assert.True(t, repository.IsSQLite("sqlite://cards.db"))
	assert.True(t, repository.IsSQLite("file:cards.db?cache=shared"))
	assert.False(t, repository.IsSQLite("postgres://u:p@localhost/b2b"))
}

func TestContactRepository_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewContactRepository(newTestDB(t), nil)

	created, err := repo.Create(ctx, &entity.Contact{Name: "Ann Lee", Company: "Acme Inc", Email: "ann@acme.com", Category: "Client"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", got.Name)
	assert.Equal(t, "Client", got.Category)
	assert.Nil(t, got.SourceFileID)

	got.Title = "CTO"
	updated, err := repo.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "CTO", updated.Title)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), common.ErrNotFound)

	_, err = repo.Update(ctx, &entity.Contact{ID: uuid.New()})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestContactRepository_ListFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewContactRepository(newTestDB(t), nil)

	for _, c := range []entity.Contact{
		{Name: "Ann Lee", Company: "Acme Inc", Category: "Client"},
		{Name: "Bob Stone", Company: "Globex", Category: "Vendor"},
		{Name: "Cy Young", Email: "cy@acme.io", Category: "Client"},
	} {
		_, err := repo.Create(ctx, &c)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, entity.ContactFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	acme, err := repo.List(ctx, entity.ContactFilter{Query: "ACME"})
	require.NoError(t, err)
	assert.Len(t, acme, 2)

	clients, err := repo.List(ctx, entity.ContactFilter{Category: "Client", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	n, err := repo.Count(ctx, entity.ContactFilter{Category: "Client"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := repo.List(ctx, entity.ContactFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestContactRepository_UpsertFromScan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	repo := repository.NewContactRepository(db, nil)
	file := newCardFile(t, db, "h1")

	first, created, err := repo.UpsertFromScan(ctx, extract.ContactFields{Name: "Ann Lee", Email: "ann@acme.com"}, &file.ID)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first.SourceFileID)
	assert.Equal(t, file.ID, *first.SourceFileID)

	// same e-mail, different case: fills blanks, keeps existing values
	second, created, err := repo.UpsertFromScan(ctx, extract.ContactFields{
		Name:    "A. Lee",
		Email:   "ANN@acme.com",
		Company: "Acme Inc",
	}, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ann Lee", second.Name)
	assert.Equal(t, "Acme Inc", second.Company)

	byPhone, created, err := repo.UpsertFromScan(ctx, extract.ContactFields{Phone: "+14155550199"}, nil)
	require.NoError(t, err)
	assert.True(t, created)
	again, created, err := repo.UpsertFromScan(ctx, extract.ContactFields{Phone: "+14155550199", Title: "CEO"}, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, byPhone.ID, again.ID)
	assert.Equal(t, "CEO", again.Title)
}

func TestContactRepository_UpsertFromScanConcurrent(t *testing.T) {
	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "cards.db")
	db, err := repository.Open(ctx, repository.Config{DSN: dsn, MaxConns: 4}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	repo := repository.NewContactRepository(db, nil)

	const rounds, scans = 20, 4
	for i := 0; i < rounds; i++ {
		email := fmt.Sprintf("ann.lee.%02d@acme.com", i)
		var created atomic.Int32
		var g errgroup.Group
		for j := 0; j < scans; j++ {
			g.Go(func() error {
				_, isNew, err := repo.UpsertFromScan(ctx, extract.ContactFields{Name: "Ann Lee", Email: email}, nil)
				if isNew {
					created.Add(1)
				}
				return err
			})
		}
		require.NoError(t, g.Wait(), "round %d", i)
		assert.EqualValues(t, 1, created.Load(), "round %d", i)

		n, err := repo.Count(ctx, entity.ContactFilter{Query: email})
		require.NoError(t, err)
		assert.Equal(t, 1, n, "round %d", i)
	}
}

func TestCardFileRepository_UpsertByHash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewCardFileRepository(newTestDB(t), nil)
	in := &entity.CardFile{SourcePath: "/a.png", ContentHash: []byte{1, 2, 3}, Filename: "a.png", FileExt: "png", FileSize: 3}

	first, existed, err := repo.UpsertByHash(ctx, in)
	require.NoError(t, err)
	assert.False(t, existed)

	second, existed, err := repo.UpsertByHash(ctx, &entity.CardFile{SourcePath: "/copy.png", ContentHash: []byte{1, 2, 3}, Filename: "copy.png", FileExt: "png"})
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "/a.png", second.SourcePath)

	_, err = repo.GetByHash(ctx, []byte{9})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestScanJobRepository_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	jobs := repository.NewScanJobRepository(db, nil)
	contacts := repository.NewContactRepository(db, nil)
	file := newCardFile(t, db, "h2")

	job, err := jobs.Start(ctx, file.ID, constants.IMAGE)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusRunning), job.Status)

	require.NoError(t, jobs.FinishOCR(ctx, job.ID, repository.OCROutcome{
		Text: "Ann Lee", Method: "image-ocr", Confidence: 0.5, NeedsReview: true,
	}))
	got, gotFile, err := jobs.GetWithFile(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, gotFile.ID)
	assert.Equal(t, string(constants.JobStatusOCROK), got.Status)
	require.NotNil(t, got.OCRText)
	assert.Equal(t, "Ann Lee", *got.OCRText)
	require.NotNil(t, got.OCRConfidence)
	assert.InDelta(t, 0.5, *got.OCRConfidence, 0.0001)
	assert.True(t, got.NeedsReview)
	assert.Nil(t, got.FinishedAt)

	c, err := contacts.Create(ctx, &entity.Contact{Name: "Ann Lee"})
	require.NoError(t, err)
	fields, _ := json.Marshal(extract.ContactFields{Name: "Ann Lee"})
	require.NoError(t, jobs.FinishParseSuccess(ctx, job.ID, repository.ParseOutcome{Fields: fields, ContactID: &c.ID}))

	got, err = jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusParsed), got.Status)
	assert.JSONEq(t, `{"name":"Ann Lee"}`, string(got.ExtractedJSON))
	require.NotNil(t, got.ContactID)
	assert.Equal(t, c.ID, *got.ContactID)
	assert.NotNil(t, got.FinishedAt)
	assert.Nil(t, got.ModelName)

	failed, err := jobs.Start(ctx, file.ID, constants.IMAGE)
	require.NoError(t, err)
	require.NoError(t, jobs.FinishFailure(ctx, failed.ID, "tesseract: exit status 1"))
	require.NoError(t, jobs.SetContactID(ctx, failed.ID, c.ID))

	list, err := jobs.ListByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	statuses := []string{list[0].Status, list[1].Status}
	assert.ElementsMatch(t, []string{string(constants.JobStatusParsed), string(constants.JobStatusFailed)}, statuses)

	assert.ErrorIs(t, jobs.FinishFailure(ctx, uuid.New(), "x"), common.ErrNotFound)
	_, err = jobs.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
