package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// principal returns the authenticated caller. When none is present it
// writes a 401 and returns false.
func principal(w http.ResponseWriter, r *http.Request) (shared.Principal, bool) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return shared.Principal{}, false
	}
	return p, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required")
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format")
	}
	return id, nil
}

// decodeAndValidate decodes the JSON body into v and validates it.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		return err
	}
	return shared.ValidateRequest(v)
}

// parseTaskFilter reads the task query parameters. Enum values are checked
// by the service; here only integers and the page-size ceiling are.
func parseTaskFilter(r *http.Request) (domain.TaskFilter, error) {
	q := r.URL.Query()
	filter := domain.TaskFilter{
		Status:   domain.Status(q.Get("status")),
		Priority: domain.Priority(q.Get("priority")),
		Search:   q.Get("search"),
		Sort:     domain.SortField(q.Get("sort")),
	}

	var err error
	if filter.Page, err = intParam(q.Get("page"), "page"); err != nil {
		return domain.TaskFilter{}, err
	}
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return domain.TaskFilter{}, err
	}
	if filter.Limit > domain.MaxPageLimit {
		return domain.TaskFilter{}, domain.NewValidationError("limit", "must be at most 100")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	if filter.Page > 1 && filter.Page-1 > math.MaxInt/limit {
		return domain.TaskFilter{}, domain.NewValidationError("page", "is too large")
	}
	return filter, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}
