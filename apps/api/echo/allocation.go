package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/allocation"
	"github.com/trezcool/mgawo/core/instance"
)

type allocationApi struct {
	svc allocation.ServiceInterface
}

func registerAllocationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc allocation.ServiceInterface, instSvc instance.ServiceInterface) {
	api := allocationApi{svc: svc}

	ig := g.Group("/instances/:id", jwt)

	// student-facing
	ig.PUT("/preferences", api.submitPreferences,
		stageGateMiddleware(instSvc, instance.StageStudentBidding, instance.StageProjectAllocation))

	// supervisor-facing
	ig.GET("/submission-target", api.submissionTarget,
		stageGateMiddleware(instSvc, instance.StageProjectSubmission, instance.StageStudentBidding))

	// admin-facing
	ig.POST("/matching", api.runMatching, adminMiddleware())
	ig.GET("/allocation", api.snapshot, adminMiddleware())
	ig.PUT("/allocation/move", api.moveStudent, adminMiddleware())
	ig.POST("/allocation/publish", api.publish, adminMiddleware())
}

// Handlers

func (api *allocationApi) submitPreferences(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsStudent {
		return errHttpForbidden
	}

	inst, err := getContextInstance(ctx)
	if err != nil {
		return err
	}

	var data allocation.NewPreferences
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPreferences")
	}

	err = api.svc.SubmitPreferences(
		ctx.Request().Context(), inst.ID, claims.Subject, data,
		inst.MinStudentPreferences, inst.MaxStudentPreferences, inst.MaxPreferencesPerSupervisor,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Preferences saved."})
}

func (api *allocationApi) submissionTarget(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !(claims.IsSupervisor || claims.IsAdmin) {
		return errHttpForbidden
	}

	inst, err := getContextInstance(ctx)
	if err != nil {
		return err
	}

	snap, err := api.svc.AdjustmentSnapshot(ctx.Request().Context(), inst.ID)
	if err != nil {
		return errors.Wrap(err, "querying allocation snapshot")
	}
	for _, sup := range snap.Supervisors {
		if sup.UserID == claims.Subject {
			return ctx.JSON(http.StatusOK, SubmissionTargetResponse{Target: api.svc.SubmissionTarget(sup)})
		}
	}
	return errHttpNotFound
}

func (api *allocationApi) runMatching(ctx echo.Context) error {
	rows, err := api.svc.RunMatching(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "running matching")
	}
	if rows == nil {
		rows = []allocation.DetailRow{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *allocationApi) snapshot(ctx echo.Context) error {
	snap, err := api.svc.AdjustmentSnapshot(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying allocation snapshot")
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *allocationApi) moveStudent(ctx echo.Context) error {
	var data MoveStudentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MoveStudentRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	snap, err := api.svc.MoveStudent(ctx.Request().Context(), ctx.Param("id"), data.StudentID, data.ProjectID)
	if err != nil {
		return errors.Wrap(err, "moving student")
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *allocationApi) publish(ctx echo.Context) error {
	if err := api.svc.Publish(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Allocation published."})
}

type (
	// MoveStudentRequest reassigns a student; an empty ProjectID
	// takes the student off any project.
	MoveStudentRequest struct {
		StudentID string `json:"student_id" validate:"required"`
		ProjectID string `json:"project_id"`
	}

	SubmissionTargetResponse struct {
		Target int `json:"target"`
	}
)

func (mr *MoveStudentRequest) Validate() error {
	mr.StudentID = core.CleanString(mr.StudentID)
	mr.ProjectID = core.CleanString(mr.ProjectID)
	return core.Validate.Struct(mr)
}
