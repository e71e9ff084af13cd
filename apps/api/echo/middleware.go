package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classpig/backend/core/schedule"
	"github.com/classpig/backend/core/user"
)

const contextObjectKey = "object"

// ctxUserMiddleware rejects tokens whose user no longer exists.
func ctxUserMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextUser(ctx, svc); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// ctxClassMiddleware loads the `:id` class of the context user into the context.
// Classes of other users are not found.
func ctxClassMiddleware(usrSvc *user.Service, classSvc *schedule.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := strconv.Atoi(ctx.Param("id"))
			if err != nil {
				return errHttpNotFound
			}
			usr, err := getContextUser(ctx, usrSvc)
			if err != nil {
				return err
			}
			cls, err := classSvc.Get(reqContext(ctx), usr.ID, id)
			if err != nil {
				if err == schedule.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding class by ID")
			}
			ctx.Set(contextObjectKey, cls)
			return next(ctx)
		}
	}
}
