package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired accepts only unrevoked access tokens and stores the caller as a
// user.Actor on the request context. It runs after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "invalid token")
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.Unauthorized(w, "invalid token type")
				return
			}
			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.Unauthorized(w, "token has been revoked")
				return
			}

			actor, ok := actorFromClaims(claims)
			if !ok {
				response.Unauthorized(w, "invalid token claims")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}

func actorFromClaims(claims map[string]interface{}) (user.Actor, bool) {
	userID, _ := claims["user_id"].(string)
	orgID, _ := claims["organization_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || orgID == "" || role == "" {
		return user.Actor{}, false
	}
	employeeID, _ := claims["employee_id"].(string)
	return user.Actor{
		UserID:         userID,
		EmployeeID:     employeeID,
		OrganizationID: orgID,
		Role:           user.Role(role),
	}, true
}

// WithActor stores the authenticated caller on ctx.
func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns the caller stored by AuthRequired.
func GetActor(r *http.Request) user.Actor {
	actor, _ := r.Context().Value(actorKey{}).(user.Actor)
	return actor
}
