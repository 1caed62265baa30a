package httpx

import (
	"net/http"

	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-form/forms"
)

// Actor returns the caller authenticated by the bearer token of r, or nil
// when the request carries no valid token.
func Actor(r *http.Request) *forms.Actor {
	claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string)
	if !ok || claims[ClaimUserID] == "" {
		return nil
	}
	return &forms.Actor{
		UserID: claims[ClaimUserID],
		Email:  claims[ClaimEmail],
	}
}
