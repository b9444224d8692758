package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/gradebook"
	"github.com/trezcool/gradebook/core/roster"
)

type rosterApi struct {
	gb *gradebook.Gradebook
}

func registerRosterAPI(g *echo.Group, jwt echo.MiddlewareFunc, gb *gradebook.Gradebook) {
	api := rosterApi{gb: gb}

	cg := g.Group("/classes", jwt)
	cg.GET("", api.queryClasses)
	cg.POST("", api.createClass)
	cg.DELETE("/:id", api.destroyClass)
	cg.GET("/:id/students", api.queryClassStudents)

	tg := g.Group("/teachers", jwt)
	tg.GET("", api.queryTeachers)
	tg.POST("", api.createTeacher)
	tg.PUT("/:id", api.updateTeacher)
	tg.DELETE("/:id", api.destroyTeacher)

	sg := g.Group("/students", jwt)
	sg.GET("", api.queryStudents)
	sg.POST("", api.createStudent)
	sg.PUT("/:id", api.updateStudent)
	sg.DELETE("/:id", api.destroyStudent)
}

// Classes

func (api *rosterApi) queryClasses(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	classes, err := api.gb.Classes(a)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *rosterApi) createClass(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	var data roster.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}

	cls, err := api.gb.AddClass(a, data)
	if err = observeMutation("add class", err); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *rosterApi) destroyClass(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	if err := observeMutation("delete class", api.gb.DeleteClass(a, ctx.Param("id"))); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *rosterApi) queryClassStudents(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	students, err := api.gb.StudentsInClass(a, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

// Teachers

func (api *rosterApi) queryTeachers(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	teachers, err := api.gb.Teachers(a)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *rosterApi) createTeacher(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	var data roster.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}

	t, err := api.gb.AddTeacher(a, data)
	if err = observeMutation("add teacher", err); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *rosterApi) updateTeacher(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	var data roster.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}

	t, err := api.gb.UpdateTeacher(a, ctx.Param("id"), data)
	if err = observeMutation("update teacher", err); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *rosterApi) destroyTeacher(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	if err := observeMutation("delete teacher", api.gb.DeleteTeacher(a, ctx.Param("id"))); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Students

func (api *rosterApi) queryStudents(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	students, err := api.gb.Students(a)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) createStudent(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	var data roster.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	s, err := api.gb.AddStudent(a, data)
	if err = observeMutation("add student", err); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *rosterApi) updateStudent(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	var data roster.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	s, err := api.gb.UpdateStudent(a, ctx.Param("id"), data)
	if err = observeMutation("update student", err); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *rosterApi) destroyStudent(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	if err := observeMutation("delete student", api.gb.DeleteStudent(a, ctx.Param("id"))); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
