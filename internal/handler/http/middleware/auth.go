package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/handler/http/response"
)

// AuthRequired rejects requests without a verified access token and stores
// the token's actor in the request context for the permission checker.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "Missing or invalid token")
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, "Missing or invalid token")
				return
			}
			if tokenType, ok := claims["type"].(string); !ok || tokenType != "access" {
				response.Unauthorized(w, "Missing or invalid token")
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				response.Unauthorized(w, "Token has no subject")
				return
			}
			employeeID, _ := claims["employee_id"].(string)
			role, _ := claims["role"].(string)

			ctx := identity.WithActor(r.Context(), identity.Actor{
				ID:         userID,
				EmployeeID: employeeID,
				Role:       identity.Role(role),
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// RequireRole gates a route on the actor's role.
func RequireRole(roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := identity.ActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Missing or invalid token")
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.HandleError(w, identity.ErrForbidden)
		})
	}
}
