package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/namkunwoo/workreport-front/internal/domain"
	"github.com/namkunwoo/workreport-front/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, database *sql.DB, username string) string {
	t.Helper()
	u := &UserRecord{PasswordHash: "hash"}
	u.ID = uuid.New().String()
	u.Username = username
	require.NoError(t, NewSQLiteUserRepo(database).Create(context.Background(), u))
	return u.ID
}

func TestReportRepo_CreateAndGetByID(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteReportRepo(database)
	ctx := context.Background()
	userID := seedUser(t, database, "kim")

	r := testutil.NewTestReport("2024-05-01",
		testutil.WithOut("Busan"),
		testutil.WithBackup(),
		testutil.WithProducts("nxKey, AC"),
	)
	r.SupportTeamMember = "Lee"
	require.NoError(t, repo.Create(ctx, userID, &r))
	require.NotEmpty(t, r.ID)

	got, err := repo.GetByID(ctx, userID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, *got)
}

func TestReportRepo_GetByID_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteReportRepo(database)

	_, err := repo.GetByID(context.Background(), seedUser(t, database, "kim"), "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportRepo_ScopedToUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteReportRepo(database)
	ctx := context.Background()
	kim := seedUser(t, database, "kim")
	lee := seedUser(t, database, "lee")

	r := testutil.NewTestReport("2024-05-01")
	require.NoError(t, repo.Create(ctx, kim, &r))

	_, err := repo.GetByID(ctx, lee, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, lee, r.ID), ErrNotFound)

	list, err := repo.ListByDate(ctx, lee, r.WorkDate)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReportRepo_ListByDateAndDates(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteReportRepo(database)
	ctx := context.Background()
	userID := seedUser(t, database, "kim")

	for _, d := range []string{"2024-05-03", "2024-05-01", "2024-05-03"} {
		r := testutil.NewTestReport(d)
		require.NoError(t, repo.Create(ctx, userID, &r))
	}

	list, err := repo.ListByDate(ctx, userID, testutil.MustDate("2024-05-03"))
	require.NoError(t, err)
	assert.Len(t, list, 2)

	dates, err := repo.DatesWithReports(ctx, userID)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, "2024-05-01", domain.FormatDate(dates[0]))
	assert.Equal(t, "2024-05-03", domain.FormatDate(dates[1]))
}

func TestReportRepo_ListRange(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteReportRepo(database)
	ctx := context.Background()
	userID := seedUser(t, database, "kim")

	for _, d := range []string{"2024-04-30", "2024-05-01", "2024-05-31", "2024-06-01"} {
		r := testutil.NewTestReport(d)
		require.NoError(t, repo.Create(ctx, userID, &r))
	}

	may, err := repo.ListRange(ctx, userID, testutil.MustDate("2024-05-01"), testutil.MustDate("2024-05-31"))
	require.NoError(t, err)
	assert.Len(t, may, 2)

	all, err := repo.ListRange(ctx, userID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "2024-04-30", domain.FormatDate(all[0].WorkDate))
}

func TestReportRepo_Update(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteReportRepo(database)
	ctx := context.Background()
	userID := seedUser(t, database, "kim")

	r := testutil.NewTestReport("2024-05-01")
	require.NoError(t, repo.Create(ctx, userID, &r))

	r.WorkDate = testutil.MustDate("2024-05-02")
	r.WorkHours = 2.5
	r.IsOut = true
	require.NoError(t, repo.Update(ctx, userID, &r))

	got, err := repo.GetByID(ctx, userID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", domain.FormatDate(got.WorkDate))
	assert.Equal(t, 2.5, got.WorkHours)
	assert.True(t, got.IsOut)

	missing := testutil.NewTestReport("2024-05-01", testutil.WithReportID("12345"))
	assert.ErrorIs(t, repo.Update(ctx, userID, &missing), ErrNotFound)
}

func TestReportRepo_DeleteAndDeleteAll(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteReportRepo(database)
	ctx := context.Background()
	userID := seedUser(t, database, "kim")

	var ids []string
	for i := 0; i < 3; i++ {
		r := testutil.NewTestReport("2024-05-01")
		require.NoError(t, repo.Create(ctx, userID, &r))
		ids = append(ids, r.ID)
	}

	require.NoError(t, repo.Delete(ctx, userID, ids[1]))
	assert.ErrorIs(t, repo.Delete(ctx, userID, ids[1]), ErrNotFound)

	n, err := repo.DeleteAll(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
