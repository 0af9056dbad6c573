package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core/instance"
)

type instanceApi struct {
	svc instance.ServiceInterface
}

func registerInstanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc instance.ServiceInterface) {
	api := instanceApi{svc: svc}

	ig := g.Group("/instances", jwt)
	ig.POST("", api.create, adminMiddleware())
	ig.GET("", api.query)
	ig.GET("/stages", api.queryStages)

	dg := ig.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.PUT("/stage", api.setStage, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *instanceApi) create(ctx echo.Context) error {
	var data instance.NewInstance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstance")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	inst, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating instance")
	}
	return ctx.JSON(http.StatusCreated, inst)
}

func (api *instanceApi) query(ctx echo.Context) error {
	instances, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying instances")
	}
	if instances == nil {
		instances = []instance.Instance{}
	}
	return ctx.JSON(http.StatusOK, instances)
}

func (api *instanceApi) queryStages(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, instance.AllStages())
}

func (api *instanceApi) retrieve(ctx echo.Context) error {
	inst, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding instance by ID")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *instanceApi) update(ctx echo.Context) error {
	inst, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding instance by ID")
	}

	var data instance.UpdateInstance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInstance")
	}
	if err := data.Validate(inst); err != nil {
		return err
	}

	inst, err = api.svc.Update(ctx.Request().Context(), inst.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating instance")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *instanceApi) setStage(ctx echo.Context) error {
	var data instance.SetStageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetStageRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	inst, err := api.svc.SetStage(ctx.Request().Context(), ctx.Param("id"), data.Stage)
	if err != nil {
		return errors.Wrap(err, "setting instance stage")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *instanceApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting instance")
	}
	return ctx.NoContent(http.StatusNoContent)
}
