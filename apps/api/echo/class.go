package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classpig/backend/core/attendance"
	"github.com/classpig/backend/core/schedule"
	"github.com/classpig/backend/core/user"
)

var errClsNotFoundInCtx = errors.New("class object not found in echo.Context")

type classApi struct {
	usrSvc   *user.Service
	svc      *schedule.Service
	attSvc   *attendance.Service
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := classApi{
		usrSvc:   deps.UserSvc,
		svc:      deps.ClassSvc,
		attSvc:   deps.AttendanceSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/classes", jwt, ctxUserMiddleware(api.usrSvc))
	cg.GET("", api.query)
	cg.POST("", api.replace)

	// detail endpoints
	dg := cg.Group("/:id", ctxClassMiddleware(api.usrSvc, api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/status", api.status)

	// singular paths used by older clients, which expect a JSON body on delete
	sg := g.Group("/class/:id", jwt, ctxUserMiddleware(api.usrSvc), ctxClassMiddleware(api.usrSvc, api.svc))
	sg.GET("", api.retrieve)
	sg.PUT("", api.update)
	sg.DELETE("", api.destroyWithBody)
}

// Handlers

func (api *classApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	classes, err := api.svc.Query(reqContext(ctx), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

// replace swaps the whole schedule. The attendance history of the old classes is deleted with them.
func (api *classApi) replace(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	var data schedule.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	classes, err := api.svc.Replace(reqContext(ctx), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "replacing classes")
	}
	return ctx.JSON(http.StatusOK, ScheduleResponse{Success: true, Classes: classes})
}

func (api *classApi) retrieve(ctx echo.Context) error {
	cls, ok := ctx.Get(contextObjectKey).(schedule.Class)
	if !ok {
		return errors.Wrap(errClsNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	cls, ok := ctx.Get(contextObjectKey).(schedule.Class)
	if !ok {
		return errors.Wrap(errClsNotFoundInCtx, "retrieving object from context")
	}

	var data schedule.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(cls, api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Update(reqContext(ctx), cls, data)
	if err != nil {
		if err == schedule.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) destroy(ctx echo.Context) error {
	if err := api.deleteCtxClass(ctx); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) destroyWithBody(ctx echo.Context) error {
	if err := api.deleteCtxClass(ctx); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (api *classApi) deleteCtxClass(ctx echo.Context) error {
	cls, ok := ctx.Get(contextObjectKey).(schedule.Class)
	if !ok {
		return errors.Wrap(errClsNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(reqContext(ctx), cls.UserID, cls.ID); err != nil {
		if err == schedule.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting class")
	}
	return nil
}

// status tells whether the class can be checked in to, cooldown-wise.
func (api *classApi) status(ctx echo.Context) error {
	cls, ok := ctx.Get(contextObjectKey).(schedule.Class)
	if !ok {
		return errors.Wrap(errClsNotFoundInCtx, "retrieving object from context")
	}
	canCheckIn, err := api.attSvc.CanCheckIn(reqContext(ctx), cls.UserID, cls.ID, time.Now())
	if err != nil {
		return errors.Wrap(err, "checking class status")
	}
	return ctx.JSON(http.StatusOK, ClassStatusResponse{ClassID: cls.ID, CanCheckIn: canCheckIn})
}

type (
	ScheduleResponse struct {
		Success bool             `json:"success"`
		Classes []schedule.Class `json:"classes"`
	}

	SuccessResponse struct {
		Success bool `json:"success"`
	}

	ClassStatusResponse struct {
		ClassID    int  `json:"class_id"`
		CanCheckIn bool `json:"can_check_in"`
	}
)
