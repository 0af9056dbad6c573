package echoapi

import (
	"bytes"
	"encoding/csv"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core/instance"
	"github.com/trezcool/mgawo/core/reader"
)

type readerApi struct {
	svc reader.ServiceInterface
}

func registerReaderAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc reader.ServiceInterface, instSvc instance.ServiceInterface) {
	api := readerApi{svc: svc}

	ig := g.Group("/instances/:id", jwt)

	// reader-facing
	ig.PUT("/reader-preferences", api.submitPreferences,
		stageGateMiddleware(instSvc, instance.StageReaderBidding, instance.StageReaderAllocation))

	// admin-facing
	ig.GET("/readers", api.query, adminMiddleware())
	ig.GET("/reader-preferences/export", api.exportPreferences, adminMiddleware())
	ig.POST("/reader-allocation", api.runAllocation, adminMiddleware())
}

// Handlers

func (api *readerApi) submitPreferences(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsReader {
		return errHttpForbidden
	}

	inst, err := getContextInstance(ctx)
	if err != nil {
		return err
	}

	var data reader.NewPreferences
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPreferences")
	}

	if err := api.svc.SavePreferences(ctx.Request().Context(), inst.ID, claims.Subject, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Preferences saved."})
}

func (api *readerApi) query(ctx echo.Context) error {
	readers, err := api.svc.QueryAll(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying readers")
	}
	if readers == nil {
		readers = []reader.Reader{}
	}
	return ctx.JSON(http.StatusOK, readers)
}

func (api *readerApi) exportPreferences(ctx echo.Context) error {
	readers, err := api.svc.QueryAll(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying readers")
	}

	records := [][]string{{"reader_id", "project_id", "type"}}
	for _, row := range reader.PreferenceCSVRows(readers) {
		records = append(records, []string{row.ReaderID, row.ProjectID, row.Type})
	}
	return writeCSV(ctx, "reader-preferences.csv", records)
}

func (api *readerApi) runAllocation(ctx echo.Context) error {
	out, err := api.svc.RunAllocation(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "running reader allocation")
	}

	if ctx.QueryParam("format") == "csv" {
		records := [][]string{{"reader_id", "project_id"}}
		for _, row := range reader.AllocationCSVRows(out) {
			records = append(records, []string{row.ReaderID, row.ProjectID})
		}
		return writeCSV(ctx, "reader-allocation.csv", records)
	}
	return ctx.JSON(http.StatusOK, out)
}

func writeCSV(ctx echo.Context, filename string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
