package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

type seedUser struct {
	username string
	password string
	role     domain.Role
}

var seedUsers = []seedUser{
	{username: "demo", password: "demo1234", role: domain.RoleUser},
	{username: "admin", password: "admin1234", role: domain.RoleAdmin},
}

// seedTasks builds the demo user's sample tasks relative to now.
func seedTasks(now time.Time) []domain.TaskInput {
	tomorrow := now.AddDate(0, 0, 1)
	nextWeek := now.AddDate(0, 0, 7)
	return []domain.TaskInput{
		{
			Title:       "Review Project Proposal",
			Description: "Review the new project proposal and provide feedback by EOD.",
			Priority:    domain.PriorityHigh,
			Status:      domain.StatusPending,
			Deadline:    &tomorrow,
		},
		{
			Title:       "Team Meeting",
			Description: "Weekly sync with the engineering team.",
			Priority:    domain.PriorityMedium,
			Status:      domain.StatusCompleted,
		},
		{
			Title:       "Update Documentation",
			Description: "Update the API documentation to reflect recent changes.",
			Priority:    domain.PriorityLow,
			Status:      domain.StatusInProgress,
			Deadline:    &nextWeek,
		},
	}
}

// seedDemoData creates the demo and admin accounts and the demo tasks when
// no demo user exists. On Postgres all writes share one transaction.
func seedDemoData(ctx context.Context, st *storage, hasher auth.PasswordHasher, logger *slog.Logger) error {
	if st.db == nil {
		return seedInto(ctx, st.users, st.tasks, hasher, time.Now(), logger)
	}
	return store.RunInTransaction(ctx, st.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return seedInto(ctx, st.pgUsers.WithTx(tx), st.pgTasks.WithTx(tx), hasher, time.Now(), logger)
	})
}

func seedInto(
	ctx context.Context,
	users store.UserStore,
	tasks store.TaskStore,
	hasher auth.PasswordHasher,
	now time.Time,
	logger *slog.Logger,
) error {
	_, err := users.GetByUsername(ctx, seedUsers[0].username)
	switch {
	case err == nil:
		logger.Debug("demo data already present; skipping seed")
		return nil
	case !errors.Is(err, store.ErrUserNotFound):
		return fmt.Errorf("failed to look up demo user: %w", err)
	}

	created := make(map[string]*domain.User, len(seedUsers))
	for _, su := range seedUsers {
		if existing, err := users.GetByUsername(ctx, su.username); err == nil {
			created[su.username] = existing
			continue
		}

		user, err := domain.NewUser(su.username, su.password, "")
		if err != nil {
			return fmt.Errorf("invalid seed user %s: %w", su.username, err)
		}
		user.Role = su.role
		if user.HashedPassword, err = hasher.Hash(su.password); err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		user.Password = ""
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create seed user %s: %w", su.username, err)
		}
		created[su.username] = user
	}

	demo := created[seedUsers[0].username]
	for _, in := range seedTasks(now) {
		task, err := domain.NewTask(demo.ID, in, now)
		if err != nil {
			return fmt.Errorf("invalid seed task: %w", err)
		}
		if err := tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create seed task: %w", err)
		}
	}

	logger.Info("seeded demo data",
		slog.Int("users", len(created)),
		slog.Int("tasks", len(seedTasks(now))))
	return nil
}
