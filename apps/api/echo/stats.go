package echoapi

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/gradebook"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/stats"
)

type statsApi struct {
	gb *gradebook.Gradebook
}

func registerStatsAPI(g *echo.Group, jwt echo.MiddlewareFunc, gb *gradebook.Gradebook) {
	api := statsApi{gb: gb}

	sg := g.Group("/stats", jwt)
	sg.GET("", api.summary)
	sg.GET("/top", api.top)
	sg.GET("/students/:id", api.student)
	sg.GET("/classes/:id", api.class)
	sg.GET("/subjects/:subject", api.subject)
}

func (api *statsApi) snapshot(ctx echo.Context) (stats.Snapshot, error) {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return stats.Snapshot{}, err
	}
	snap, err := api.gb.Statistics(a)
	if err != nil {
		return stats.Snapshot{}, errors.Wrap(err, "reading statistics")
	}
	return snap, nil
}

func (api *statsApi) summary(ctx echo.Context) error {
	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	summary, err := api.gb.Summary(a)
	if err != nil {
		return errors.Wrap(err, "summarizing statistics")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *statsApi) top(ctx echo.Context) error {
	var n int
	if param := ctx.QueryParam("n"); param != "" {
		var err error
		if n, err = strconv.Atoi(param); err != nil || n < 1 {
			return core.NewValidationError(nil, core.FieldError{Field: "n", Error: "n must be a positive integer"})
		}
	}

	a, err := getContextActor(ctx, api.gb)
	if err != nil {
		return err
	}
	top, err := api.gb.TopStudents(a, n)
	if err != nil {
		return errors.Wrap(err, "ranking students")
	}
	return ctx.JSON(http.StatusOK, top)
}

func (api *statsApi) student(ctx echo.Context) error {
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	for _, s := range snap.Students {
		if s.ID == id {
			avg := snap.StudentAverage(id)
			return ctx.JSON(http.StatusOK, StudentStatsResponse{
				Student:     s,
				Average:     avg,
				AverageText: stats.Format(avg),
				Subjects:    snap.StudentSubjectAverages(id),
			})
		}
	}
	return roster.ErrStudentNotFound
}

func (api *statsApi) class(ctx echo.Context) error {
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	for _, cls := range snap.Classes {
		if cls.ID == id {
			return ctx.JSON(http.StatusOK, stats.ClassStats{Class: cls, Average: snap.ClassAverage(id)})
		}
	}
	return roster.ErrClassNotFound
}

func (api *statsApi) subject(ctx echo.Context) error {
	subject, err := url.PathUnescape(ctx.Param("subject"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "subject", Error: "invalid subject"})
	}
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap.SubjectAverage(subject))
}

// StudentStatsResponse carries averages both raw and formatted to 2 decimals.
type StudentStatsResponse struct {
	Student     roster.Student       `json:"student"`
	Average     float64              `json:"average"`
	AverageText string               `json:"average_text"`
	Subjects    []stats.SubjectStats `json:"subjects"`
}
