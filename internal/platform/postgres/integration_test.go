package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/phrazzld/tasker-api/internal/platform/postgres/migrations"
	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var integrationDB *sqlx.DB

// TestMain migrates the database named by DATABASE_URL, when set, so the
// integration tests below run against the real schema.
func TestMain(m *testing.M) {
	url := os.Getenv("DATABASE_URL")
	if url != "" {
		db, err := sql.Open("pgx", url)
		if err != nil {
			panic(err)
		}
		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			panic(err)
		}
		if err := goose.Up(db, "."); err != nil {
			panic(err)
		}
		integrationDB = sqlx.NewDb(db, "pgx")
	}

	code := m.Run()
	if integrationDB != nil {
		_ = integrationDB.Close()
	}
	os.Exit(code)
}

// withTx runs fn in a transaction that is always rolled back.
func withTx(t *testing.T, fn func(tx *sqlx.Tx)) {
	t.Helper()
	if integrationDB == nil {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	tx, err := integrationDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	fn(tx)
}

func seedUser(t *testing.T, ctx context.Context, users *postgres.PostgresUserStore, name string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name, "password123", "")
	require.NoError(t, err)
	u.HashedPassword = "$2a$10$integration"
	u.Password = ""
	require.NoError(t, users.Create(ctx, u))
	return u
}

func TestIntegration_TaskQueryEngine(t *testing.T) {
	withTx(t, func(tx *sqlx.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)
		tasks := postgres.NewPostgresTaskStore(tx, nil)
		alice := seedUser(t, ctx, users, "alice_"+uuid.NewString()[:8])
		bob := seedUser(t, ctx, users, "bob_"+uuid.NewString()[:8])

		base := time.Now().UTC().Truncate(time.Microsecond)
		soon := base.Add(2 * time.Hour)
		later := base.Add(72 * time.Hour)
		inputs := []domain.TaskInput{
			{Title: "Team Meeting", Priority: domain.PriorityLow, Deadline: &later},
			{Title: "Budget Review", Priority: domain.PriorityHigh},
			{Title: "Plan 100% coverage", Description: "meeting notes", Deadline: &soon},
		}
		for i, in := range inputs {
			task, err := domain.NewTask(alice.ID, in, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, err)
			require.NoError(t, tasks.Create(ctx, task))
		}
		other, err := domain.NewTask(bob.ID, domain.TaskInput{Title: "Bob's meeting"}, base)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, other))

		page, err := tasks.Query(ctx, domain.OwnerScope(alice.ID), domain.TaskFilter{Search: "MEETING"}.Normalize())
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		for _, item := range page.Items {
			assert.Equal(t, alice.ID, item.UserID)
		}

		page, err = tasks.Query(ctx, domain.OwnerScope(alice.ID), domain.TaskFilter{Search: "100%"}.Normalize())
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)

		page, err = tasks.Query(ctx, domain.OwnerScope(alice.ID),
			domain.TaskFilter{Sort: domain.SortPriority, Limit: 2}.Normalize())
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, domain.PriorityHigh, page.Items[0].Priority)
		assert.Equal(t, domain.PriorityMedium, page.Items[1].Priority)

		page, err = tasks.Query(ctx, domain.OwnerScope(alice.ID),
			domain.TaskFilter{Sort: domain.SortDeadline}.Normalize())
		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, "Plan 100% coverage", page.Items[0].Title)
		assert.Nil(t, page.Items[2].Deadline)

		// foreign task is invisible to scoped update and delete
		title := "hijacked"
		_, err = tasks.Update(ctx, other.ID, alice.ID, domain.TaskPatch{Title: &title}, time.Now())
		assert.Error(t, err)
		deleted, err := tasks.Delete(ctx, other.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
		still, err := tasks.Get(ctx, other.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bob's meeting", still.Title)
	})
}

func TestIntegration_UpdateAdvancesUpdatedAt(t *testing.T) {
	withTx(t, func(tx *sqlx.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)
		tasks := postgres.NewPostgresTaskStore(tx, nil)
		owner := seedUser(t, ctx, users, "carol_"+uuid.NewString()[:8])

		created := time.Now().UTC().Truncate(time.Microsecond)
		deadline := created.Add(time.Hour)
		task, err := domain.NewTask(owner.ID, domain.TaskInput{Title: "Draft", Deadline: &deadline}, created)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, task))

		updated, err := tasks.Update(ctx, task.ID, owner.ID,
			domain.TaskPatch{ClearDeadline: true}, created.Add(-time.Hour))
		require.NoError(t, err)
		assert.Nil(t, updated.Deadline)
		assert.Equal(t, "Draft", updated.Title)
		assert.True(t, updated.UpdatedAt.Equal(created), "updatedAt must not move backwards")
	})
}

func TestIntegration_UserRoles(t *testing.T) {
	withTx(t, func(tx *sqlx.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)
		u := seedUser(t, ctx, users, "dave_"+uuid.NewString()[:8])

		updated, err := users.UpdateRole(ctx, u.ID, domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, updated.Role)

		// last statement: a unique violation aborts the transaction
		dup := *u
		dup.ID = uuid.New()
		assert.ErrorIs(t, users.Create(ctx, &dup), store.ErrUsernameExists)
	})
}
