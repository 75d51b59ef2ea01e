package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTaskWhere(t *testing.T) {
	t.Parallel()
	owner := uuid.New()

	tests := []struct {
		name      string
		scope     domain.Scope
		filter    domain.TaskFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "global without filters",
			scope:     domain.GlobalScope(),
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "owner scope",
			scope:     domain.OwnerScope(owner),
			wantWhere: " WHERE user_id = $1",
			wantArgs:  []any{owner},
		},
		{
			name:      "status and priority are ANDed",
			scope:     domain.OwnerScope(owner),
			filter:    domain.TaskFilter{Status: domain.StatusPending, Priority: domain.PriorityHigh},
			wantWhere: " WHERE user_id = $1 AND status = $2::task_status AND priority = $3::task_priority",
			wantArgs:  []any{owner, "pending", "high"},
		},
		{
			name:      "search reuses one placeholder for both columns",
			scope:     domain.GlobalScope(),
			filter:    domain.TaskFilter{Search: "meeting"},
			wantWhere: ` WHERE (title ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\')`,
			wantArgs:  []any{"%meeting%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := taskWhere(tt.scope, tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `C:\\temp`, escapeLike(`C:\temp`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestTaskOrderBy(t *testing.T) {
	t.Parallel()
	assert.Equal(t, " ORDER BY created_at DESC, id ASC", taskOrderBy(domain.SortCreatedAt))
	assert.Equal(t, " ORDER BY deadline ASC NULLS LAST, created_at DESC, id ASC", taskOrderBy(domain.SortDeadline))
	assert.Equal(t, " ORDER BY priority DESC, created_at DESC, id ASC", taskOrderBy(domain.SortPriority))
	assert.Equal(t, " ORDER BY created_at DESC, id ASC", taskOrderBy(""))
}

func TestBuildTaskQueries(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	filter := domain.TaskFilter{Status: domain.StatusCompleted, Sort: domain.SortDeadline, Page: 2, Limit: 5}

	countSQL, pageSQL, args := buildTaskQueries(domain.OwnerScope(owner), filter)

	assert.Equal(t, "SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND status = $2::task_status", countSQL)
	assert.Contains(t, pageSQL, " FROM tasks WHERE user_id = $1 AND status = $2::task_status")
	assert.Contains(t, pageSQL, "ORDER BY deadline ASC NULLS LAST, created_at DESC, id ASC LIMIT $3 OFFSET $4")
	assert.Equal(t, []any{owner, "completed"}, args)
}
