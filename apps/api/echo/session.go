package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/gradebook"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
)

type sessionApi struct {
	gb   *gradebook.Gradebook
	auth *authenticator
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, gb *gradebook.Gradebook, auth *authenticator) {
	api := sessionApi{gb: gb, auth: auth}

	// un-authed endpoints
	g.POST("/login", api.login)
	g.GET("/vocabulary", api.vocabulary)

	// authed endpoints
	ag := g.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
	ag.PUT("/me", api.updateProfile)
	ag.GET("/dashboard", api.dashboard)
	ag.GET("/users", api.listUsers)
}

// Handlers

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}

	// secrets are compared as-is; only the login is trimmed
	usr, err := api.gb.Login(core.CleanString(data.LoginName), data.Secret)
	if err != nil {
		return err
	}
	token, err := api.auth.GenerateToken(api.auth.GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: &usr})
}

func (api *sessionApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx, api.gb)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *sessionApi) me(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a.Account())
}

func (api *sessionApi) updateProfile(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	var data user.ProfileUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileUpdate")
	}

	usr, err := api.gb.UpdateProfile(a, a.Account().ID, data)
	if err = observeMutation("update profile", err); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *sessionApi) dashboard(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	dash, err := api.gb.Dashboard(a)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

// listUsers filters on the `search` and `role` query params.
func (api *sessionApi) listUsers(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	users, err := api.gb.Users(a, *filter)
	if err != nil {
		return err
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *sessionApi) vocabulary(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, VocabularyResponse{
		Subjects: api.gb.Subjects(),
		Weekdays: academic.Weekdays,
		Grades:   []int{2, 3, 4, 5},
		Roles:    user.Roles,
		Avatars:  roster.AvatarOptions,
	})
}

type (
	LoginRequest struct {
		LoginName string `json:"login"`
		Secret    string `json:"secret"`
	}

	LoginResponse struct {
		Token string     `json:"token"`
		User  *user.User `json:"user,omitempty"`
	}

	VocabularyResponse struct {
		Subjects []string           `json:"subjects"`
		Weekdays []academic.Weekday `json:"weekdays"`
		Grades   []int              `json:"grades"`
		Roles    []user.RoleInfo    `json:"roles"`
		Avatars  []string           `json:"avatars"`
	}
)
