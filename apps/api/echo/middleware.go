package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core/instance"
)

var contextInstanceKey = "instance"

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// stageGateMiddleware admits the request only while the instance identified by
// the `:id` path param is within the half-open stage range [min, max).
// An empty max means "min or any later stage". Admins bypass the gate;
// a stage mismatch is a routing decision, not a validation error.
// The fetched instance is stored in the context for handlers to reuse.
func stageGateMiddleware(svc instance.ServiceInterface, min, max instance.Stage) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			inst, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding instance by ID")
			}
			ctx.Set(contextInstanceKey, inst)

			if claims, err := getContextClaims(ctx); err == nil && claims.IsAdmin {
				return next(ctx)
			}

			var open bool
			if max == "" {
				open = inst.Stage.AfterOrEq(min)
			} else {
				open = instance.StageIn(inst.Stage, min, max)
			}
			if !open {
				return errStageClosed
			}
			return next(ctx)
		}
	}
}

// getContextInstance returns the instance stored by stageGateMiddleware.
func getContextInstance(ctx echo.Context) (instance.Instance, error) {
	if inst, ok := ctx.Get(contextInstanceKey).(instance.Instance); ok {
		return inst, nil
	}
	return instance.Instance{}, errHttpNotFound
}
