package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lakshyafoods/storefront/middleware"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/services/audit"
)

const maxBodyBytes = 1 << 20

// MessageResponse is the body of action endpoints that only confirm success
type MessageResponse struct {
	Message string `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pageFromQuery reads page and limit. Missing or malformed values fall back
// to the defaults applied by PageRequest.Normalize.
func pageFromQuery(r *http.Request) models.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.PageRequest{Page: page, Limit: limit}
}

// actorFromRequest identifies the admin behind a back-office request
func actorFromRequest(r *http.Request) audit.Actor {
	meta := middleware.GetRequestMetadata(r)
	return audit.Actor{
		UserID:    middleware.GetUserIDFromContext(r.Context()),
		RequestID: meta.RequestID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
}
