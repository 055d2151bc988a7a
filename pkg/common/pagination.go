package common

import (
	"net/http"
	"strconv"
)

const (
	DefaultMaxKeys = 100
	MaxMaxKeys     = 1000
)

// ListParams are the query parameters accepted by object listings.
type ListParams struct {
	Prefix   string `json:"prefix,omitempty"`
	MaxKeys  int    `json:"maxKeys"`
	UserOnly bool   `json:"userOnly"`
}

// ExtractListParams reads prefix, maxKeys and userOnly from the query string.
// maxKeys defaults to 100 and is capped at 1000.
func ExtractListParams(r *http.Request) ListParams {
	q := r.URL.Query()
	params := ListParams{
		Prefix:  q.Get("prefix"),
		MaxKeys: DefaultMaxKeys,
	}

	if mk := q.Get("maxKeys"); mk != "" {
		if n, err := strconv.Atoi(mk); err == nil && n > 0 {
			if n > MaxMaxKeys {
				n = MaxMaxKeys
			}
			params.MaxKeys = n
		}
	}

	if uo := q.Get("userOnly"); uo != "" {
		params.UserOnly, _ = strconv.ParseBool(uo)
	}

	return params
}
