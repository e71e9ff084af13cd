package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classpig/backend/core/attendance"
	"github.com/classpig/backend/core/user"
)

type attendanceApi struct {
	usrSvc   *user.Service
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := attendanceApi{
		usrSvc:   deps.UserSvc,
		svc:      deps.AttendanceSvc,
		validate: deps.Validate,
	}

	ag := g.Group("", jwt, ctxUserMiddleware(api.usrSvc))
	ag.POST("/attendance", api.checkIn)
	ag.GET("/attendance", api.query)
	ag.GET("/rewards", api.rewards)
}

// Handlers

func (api *attendanceApi) checkIn(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	var data CheckInRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckInRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	// data.Reward is ignored: rewards are drawn server-side
	res, err := api.svc.CheckIn(reqContext(ctx), usr.ID, data.ClassID, *data.Latitude, *data.Longitude, time.Now())
	if err != nil {
		return errors.Wrap(err, "checking in")
	}
	return ctx.JSON(http.StatusOK, CheckInResponse{
		Success:      true,
		Attendance:   res.Attendance,
		Reward:       res.Reward,
		TotalRewards: res.TotalRewards,
	})
}

func (api *attendanceApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	rows, err := api.svc.History(reqContext(ctx), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *attendanceApi) rewards(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	total, err := api.svc.TotalRewards(reqContext(ctx), usr.ID)
	if err != nil {
		return errors.Wrap(err, "summing rewards")
	}
	return ctx.JSON(http.StatusOK, RewardsResponse{TotalRewards: total})
}

type (
	CheckInRequest struct {
		ClassID   int      `json:"class_id" validate:"required"`
		Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
		Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
		Reward    *int     `json:"reward,omitempty"`
	}

	CheckInResponse struct {
		Success      bool                  `json:"success"`
		Attendance   attendance.Attendance `json:"attendance"`
		Reward       int                   `json:"reward"`
		TotalRewards int                   `json:"totalRewards"`
	}

	RewardsResponse struct {
		TotalRewards int `json:"totalRewards"`
	}
)
