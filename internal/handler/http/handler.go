package http

import (
	"net/http"
	"strconv"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/middleware"
)

// actorFrom converts the authenticated claims into the domain actor. An
// anonymous request yields the zero Actor.
func actorFrom(r *http.Request) domain.Actor {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return domain.Actor{}
	}
	return domain.Actor{UserID: claims.UserID, Role: claims.Role}
}

// queryBool parses an optional boolean query parameter. A missing or
// malformed value yields nil.
func queryBool(r *http.Request, name string) *bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
