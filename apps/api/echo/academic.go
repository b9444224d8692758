package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/gradebook"
)

type academicApi struct {
	gb *gradebook.Gradebook
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, gb *gradebook.Gradebook) {
	api := academicApi{gb: gb}

	ag := g.Group("", jwt)
	ag.GET("/grades", api.queryGrades)
	ag.POST("/grades", api.createGrade)
	ag.GET("/schedules", api.querySchedules)
	ag.POST("/schedules", api.createSchedule)
	ag.GET("/homework", api.queryHomework)
	ag.POST("/homework", api.createHomework)
}

func (api *academicApi) queryGrades(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	grades, err := api.gb.Grades(a)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *academicApi) createGrade(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	var data academic.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}

	g, err := api.gb.AddGrade(a, data)
	if err = observeMutation("add grade", err); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *academicApi) querySchedules(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	schedules, err := api.gb.Schedules(a)
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *academicApi) createSchedule(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	var data academic.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}

	sch, err := api.gb.AddSchedule(a, data)
	if err = observeMutation("add schedule", err); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *academicApi) queryHomework(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	homework, err := api.gb.Homework(a)
	if err != nil {
		return errors.Wrap(err, "querying homework")
	}
	return ctx.JSON(http.StatusOK, homework)
}

func (api *academicApi) createHomework(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	var data academic.NewHomework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHomework")
	}

	hw, err := api.gb.AddHomework(a, data)
	if err = observeMutation("add homework", err); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, hw)
}
