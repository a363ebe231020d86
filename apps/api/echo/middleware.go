package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core/user"
)

// roleMiddleware only lets through principals holding one of the given roles.
func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if user.Role(claims.Role) == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

// committeeMiddleware restricts an endpoint to committee-level principals.
func committeeMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleCommitteeMember, user.RoleManagingCommittee)
}

// managingCommitteeMiddleware restricts an endpoint to the managing committee.
func managingCommitteeMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleManagingCommittee)
}
