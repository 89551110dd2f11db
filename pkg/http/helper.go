package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"verleih/pkg/config"
	apperrors "verleih/pkg/errors"
)

// ActorHeader carries the authenticated user id, set by the gateway in front
// of the service.
const ActorHeader = "X-User-ID"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

func ActorID(r *http.Request) (string, error) {
	actor := strings.TrimSpace(r.Header.Get(ActorHeader))
	if actor == "" {
		return "", apperrors.Unauthorized("Missing " + ActorHeader + " header")
	}
	return actor, nil
}

// ExtractTime parses an optional RFC3339 query parameter. The boolean reports
// whether the parameter was present.
func ExtractTime(r *http.Request, name string) (time.Time, bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, apperrors.InvalidInput("invalid " + name + " parameter, expected RFC3339: " + s)
	}
	return t.UTC(), true, nil
}
