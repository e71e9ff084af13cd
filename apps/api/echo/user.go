package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/user"
)

type userApi struct {
	conf     *core.Config
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		conf:     deps.Conf,
		svc:      deps.UserSvc,
		validate: deps.Validate,
	}

	// un-authed endpoints
	g.POST("/signup", api.signup)
	g.POST("/login", api.login)

	// authed endpoints
	ag := g.Group("", jwt, ctxUserMiddleware(api.svc))
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/user", api.retrieve)
}

// Handlers

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(reqContext(ctx), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(reqContext(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return api.respondWithToken(ctx, http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(reqContext(ctx), data.Username, data.Password)
	if err != nil {
		if err == user.ErrNotFound {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}
	return api.respondWithToken(ctx, http.StatusOK, usr)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, usr, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token, User: usr})
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) respondWithToken(ctx echo.Context, code int, usr user.User) error {
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, TokenResponse{Token: token, User: usr})
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	TokenResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
