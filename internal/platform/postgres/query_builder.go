package postgres

import (
	"fmt"
	"strings"

	"github.com/phrazzld/tasker-api/internal/domain"
)

// Enum columns are read back as text so they scan into plain string types.
const taskColumns = `id, title, description, priority::text AS priority, status::text AS status, ` +
	`deadline, user_id, created_at, updated_at`

// taskWhere renders the WHERE clause for scope and filter with positional
// placeholders starting at $1. An unconstrained query yields "".
func taskWhere(scope domain.Scope, filter domain.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !scope.IsGlobal() {
		conds = append(conds, "user_id = "+next(scope.OwnerID()))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+next(string(filter.Status))+"::task_status")
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = "+next(string(filter.Priority))+"::task_priority")
	}
	if filter.Search != "" {
		p := next("%" + escapeLike(filter.Search) + "%")
		conds = append(conds, fmt.Sprintf(`(title ILIKE %s ESCAPE '\' OR description ILIKE %s ESCAPE '\')`, p, p))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// taskOrderBy renders the ORDER BY clause. Every ordering ends with
// created_at DESC, id ASC so pages are stable.
func taskOrderBy(sort domain.SortField) string {
	const tieBreak = "created_at DESC, id ASC"
	switch sort {
	case domain.SortDeadline:
		return " ORDER BY deadline ASC NULLS LAST, " + tieBreak
	case domain.SortPriority:
		// enum values compare in declaration order: low < medium < high
		return " ORDER BY priority DESC, " + tieBreak
	default:
		return " ORDER BY " + tieBreak
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// buildTaskQueries returns the count and page statements for one query,
// sharing the filter arguments. The page statement takes limit and offset
// as its final two arguments.
func buildTaskQueries(scope domain.Scope, filter domain.TaskFilter) (countSQL, pageSQL string, args []any) {
	where, args := taskWhere(scope, filter)
	countSQL = "SELECT COUNT(*) FROM tasks" + where
	pageSQL = fmt.Sprintf("SELECT %s FROM tasks%s%s LIMIT $%d OFFSET $%d",
		taskColumns, where, taskOrderBy(filter.Sort), len(args)+1, len(args)+2)
	return countSQL, pageSQL, args
}
