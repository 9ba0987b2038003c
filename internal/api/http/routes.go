package httpapi

import (
	"bytes"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/temperature-dashboard/internal/dashboard"
	"github.com/i474232898/temperature-dashboard/internal/i18n"
	"github.com/i474232898/temperature-dashboard/internal/observability"
	"github.com/i474232898/temperature-dashboard/internal/render"
	"github.com/i474232898/temperature-dashboard/internal/store"
	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

var validate = validator.New()

// Deps are the collaborators the handlers need.
type Deps struct {
	Controller *dashboard.Controller
	Renderer   *render.Renderer
	Metrics    *observability.Metrics
	Year       int
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	h := &handlers{Deps: d}
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", h.dashboard)

	v1.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(d.Controller.Snapshot())
	})
	v1.Put("/view/granularity", h.setGranularity)
	v1.Put("/view/month", h.setMonth)
	v1.Put("/view/language", h.setLanguage)
	v1.Post("/view/language/toggle", func(c *fiber.Ctx) error {
		return c.JSON(d.Controller.ToggleLanguage())
	})

	v1.Post("/dataset/reload", func(c *fiber.Ctx) error {
		gen := d.Controller.Reload(c.UserContext())
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"generation": gen})
	})

	v1.Get("/series/monthly", h.monthlySeries)
	v1.Get("/series/daily", h.dailySeries)

	v1.Get("/labels", func(c *fiber.Ctx) error {
		lang, err := h.queryLanguage(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"language":  lang,
			"languages": i18n.Languages,
			"labels":    i18n.Labels(lang, d.Year),
			"months":    i18n.MonthNames(lang),
		})
	})

	v1.Get("/charts/line", h.lineChart)
	v1.Get("/charts/bar", h.barChart)
}

// ErrorHandler renders every handler error as a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterMetrics exposes the default Prometheus registry at /metrics.
func RegisterMetrics(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

type handlers struct {
	Deps
}

type granularityRequest struct {
	Granularity string `json:"granularity" validate:"required,oneof=monthly daily"`
}

type monthRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
}

type languageRequest struct {
	Language string `json:"language" validate:"required"`
}

type monthQuery struct {
	Month int `validate:"required,min=1,max=12"`
}

type chartStyles struct {
	Line    []temperature.SeriesStyle `json:"line"`
	Bar     []temperature.SeriesStyle `json:"bar"`
	Options temperature.ChartOptions  `json:"options"`
}

func (h *handlers) dashboard(c *fiber.Ctx) error {
	snap := h.Controller.Snapshot()
	lang := snap.State.Language

	lineMax, lineMin := temperature.Styles(snap.State.Granularity)
	barMax, barMin := temperature.Styles(temperature.Monthly)

	resp := fiber.Map{
		"view":   snap,
		"labels": i18n.Labels(lang, h.Year),
		"months": i18n.MonthNames(lang),
		"styles": chartStyles{
			Line:    []temperature.SeriesStyle{lineMax, lineMin},
			Bar:     []temperature.SeriesStyle{barMax, barMin},
			Options: temperature.DefaultChartOptions,
		},
	}
	if !snap.HasSeries() {
		resp["message"] = statusMessage(snap.Status, lang)
	}
	return c.JSON(resp)
}

func (h *handlers) setGranularity(c *fiber.Ctx) error {
	var req granularityRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	snap, err := h.Controller.SetGranularity(temperature.Granularity(req.Granularity))
	if err != nil {
		return h.toFiberError(err)
	}
	return c.JSON(snap)
}

func (h *handlers) setMonth(c *fiber.Ctx) error {
	var req monthRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	snap, err := h.Controller.SetMonth(req.Month)
	if err != nil {
		return h.toFiberError(err)
	}
	return c.JSON(snap)
}

func (h *handlers) setLanguage(c *fiber.Ctx) error {
	var req languageRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	lang, err := i18n.ParseLanguage(req.Language)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	snap, err := h.Controller.SetLanguage(lang)
	if err != nil {
		return h.toFiberError(err)
	}
	return c.JSON(snap)
}

func (h *handlers) monthlySeries(c *fiber.Ctx) error {
	lang, err := h.queryLanguage(c)
	if err != nil {
		return err
	}
	series, err := h.Controller.MonthlySeries(lang)
	if err != nil {
		return h.toFiberError(err)
	}
	return c.JSON(fiber.Map{
		"granularity": temperature.Monthly,
		"language":    lang,
		"series":      series,
	})
}

func (h *handlers) dailySeries(c *fiber.Ctx) error {
	q := monthQuery{Month: c.QueryInt("month")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	series, err := h.Controller.DailySeries(q.Month)
	if err != nil {
		return h.toFiberError(err)
	}
	return c.JSON(fiber.Map{
		"granularity": temperature.Daily,
		"month":       q.Month,
		"series":      series,
	})
}

func (h *handlers) lineChart(c *fiber.Ctx) error {
	snap := h.Controller.Snapshot()
	if snap.Line == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, statusMessage(snap.Status, snap.State.Language))
	}
	title := i18n.LineTitle(h.Year, snap.State.Language)
	return h.renderChart(c, "line", func(buf *bytes.Buffer, f render.Format) error {
		return h.Renderer.Line(buf, title, *snap.Line, f)
	})
}

func (h *handlers) barChart(c *fiber.Ctx) error {
	snap := h.Controller.Snapshot()
	if snap.Bar == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, statusMessage(snap.Status, snap.State.Language))
	}
	title := i18n.Label(i18n.KeyBarTitle, snap.State.Language)
	return h.renderChart(c, "bar", func(buf *bytes.Buffer, f render.Format) error {
		return h.Renderer.Bar(buf, title, *snap.Bar, f)
	})
}

func (h *handlers) renderChart(c *fiber.Ctx, name string, draw func(*bytes.Buffer, render.Format) error) error {
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var buf bytes.Buffer
	if err := draw(&buf, format); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
	}
	h.Metrics.ChartsRendered.WithLabelValues(name, string(format)).Inc()

	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(buf.Bytes())
}

// queryLanguage reads ?lang=, falling back to the active view language.
func (h *handlers) queryLanguage(c *fiber.Ctx) (i18n.Language, error) {
	raw := c.Query("lang")
	if raw == "" {
		return h.Controller.State().Language, nil
	}
	lang, err := i18n.ParseLanguage(raw)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return lang, nil
}

func (h *handlers) toFiberError(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrInvalidGranularity),
		errors.Is(err, dashboard.ErrInvalidMonth),
		errors.Is(err, dashboard.ErrInvalidLanguage):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		snap := h.Controller.Snapshot()
		return fiber.NewError(fiber.StatusServiceUnavailable, statusMessage(snap.Status, snap.State.Language))
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

func bindBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func statusMessage(status dashboard.Status, lang i18n.Language) string {
	if status == dashboard.StatusLoadFailed {
		return i18n.Label(i18n.KeyLoadFailed, lang)
	}
	return i18n.Label(i18n.KeyLoading, lang)
}
