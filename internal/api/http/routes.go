package httpapi

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/colorrule"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/export"
	"github.com/i474232898/weather-dashboard/internal/geo"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/timewindow"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// Playback is the subset of the scheduler the routes drive.
type Playback interface {
	Start() error
	Stop()
	Running() bool
}

// Deps are the services behind the routes.
type Deps struct {
	Dashboard *dashboard.Dashboard
	Weather   dashboard.Fetcher
	Playback  Playback
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	d := deps.Dashboard
	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(d.Snapshot())
	})

	v1.Delete("/state", func(c *fiber.Ctx) error {
		if deps.Playback != nil {
			deps.Playback.Stop()
		}
		d.Reset()
		return c.JSON(d.Snapshot())
	})

	// Polygons.

	v1.Get("/polygons", func(c *fiber.Ctx) error {
		return c.JSON(d.Polygons())
	})

	v1.Post("/polygons", func(c *fiber.Ctx) error {
		var req polygonRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		view, err := d.AddPolygon(c.UserContext(), req.Name, req.Coordinates)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	})

	v1.Get("/polygons/contains", func(c *fiber.Ctx) error {
		pt, err := parseCoordinateQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		hits := d.PolygonsContaining(pt)
		if hits == nil {
			hits = []dashboard.PolygonView{}
		}
		return c.JSON(hits)
	})

	v1.Post("/polygons/refresh", func(c *fiber.Ctx) error {
		d.Refresh(c.UserContext())
		return c.JSON(d.Polygons())
	})

	v1.Get("/polygons/:id", func(c *fiber.Ctx) error {
		view, err := d.Polygon(c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(view)
	})

	v1.Delete("/polygons/:id", func(c *fiber.Ctx) error {
		if err := d.RemovePolygon(c.Params("id")); err != nil {
			return mapError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Coloring.

	v1.Get("/color-rules", func(c *fiber.Ctx) error {
		return c.JSON(d.ColorRules())
	})

	v1.Put("/color-rules", func(c *fiber.Ctx) error {
		var rules []colorrule.Rule
		if err := c.BodyParser(&rules); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
		}
		saved, err := d.SetColorRules(rules)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(saved)
	})

	v1.Put("/data-source", func(c *fiber.Ctx) error {
		var req dataSourceRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if err := d.SetDataSource(req.DataSource); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(d.Polygons())
	})

	// Time window.

	v1.Get("/time-selection", func(c *fiber.Ctx) error {
		sel, extent := d.TimeSelection()
		return c.JSON(timeSelectionResponse{Selection: sel, Extent: extent})
	})

	v1.Put("/time-selection", func(c *fiber.Ctx) error {
		var sel timewindow.Selection
		if err := c.BodyParser(&sel); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
		}
		return respondSelection(c, d, d.SetTimeSelection(c.UserContext(), sel), true)
	})

	v1.Post("/time-selection/key", func(c *fiber.Ctx) error {
		var k timewindow.KeyEvent
		if err := bindJSON(c, &k); err != nil {
			return err
		}
		sel, changed := d.HandleKey(c.UserContext(), k)
		return respondSelection(c, d, sel, changed)
	})

	v1.Post("/time-selection/toggle", func(c *fiber.Ctx) error {
		return respondSelection(c, d, d.ToggleMode(c.UserContext()), true)
	})

	v1.Post("/time-selection/pointer", func(c *fiber.Ctx) error {
		var req pointerRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		var (
			sel timewindow.Selection
			err error
		)
		switch req.Edge {
		case edgeStart:
			sel, err = d.DragStart(c.UserContext(), req.Time)
		case edgeEnd:
			sel, err = d.DragEnd(c.UserContext(), req.Time)
		default:
			sel = d.PointerSet(c.UserContext(), req.Time)
		}
		if err != nil {
			return mapError(err)
		}
		return respondSelection(c, d, sel, true)
	})

	v1.Post("/playback/start", func(c *fiber.Ctx) error {
		if deps.Playback == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "playback is not available")
		}
		if err := deps.Playback.Start(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to start playback")
		}
		return c.JSON(fiber.Map{"playing": deps.Playback.Running()})
	})

	v1.Post("/playback/stop", func(c *fiber.Ctx) error {
		if deps.Playback == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "playback is not available")
		}
		deps.Playback.Stop()
		return c.JSON(fiber.Map{"playing": deps.Playback.Running()})
	})

	// Map.

	v1.Put("/map-view", func(c *fiber.Ctx) error {
		var mv store.MapView
		if err := bindJSON(c, &mv); err != nil {
			return err
		}
		if err := mv.Center.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		d.SetMapView(mv)
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Direct weather lookup.

	v1.Get("/weather", func(c *fiber.Ctx) error {
		var req weatherQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
		defer cancel()

		m := deps.Weather.FetchWeatherData(ctx, req.Point.Lat, req.Point.Lng, req.Start, req.End)
		return c.JSON(fiber.Map{
			"lat":       req.Point.Lat,
			"lng":       req.Point.Lng,
			"start":     req.Start,
			"end":       req.End,
			"metrics":   m,
			"condition": weather.DescribeConditions(m),
		})
	})

	// Exports.

	v1.Get("/export/geojson", func(c *fiber.Ctx) error {
		data, err := export.GeoJSON(d.Snapshot()).MarshalJSON()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode geojson")
		}
		c.Attachment("polygons.geojson")
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	})

	v1.Get("/export/csv", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, d.Snapshot()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode csv")
		}
		c.Attachment("polygons.csv")
		c.Set(fiber.HeaderContentType, "text/csv")
		return c.Send(buf.Bytes())
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// mapError translates domain errors into HTTP errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, geo.ErrInvalidPolygon):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrPolygonNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, timewindow.ErrNotRange), errors.Is(err, timewindow.ErrContractTooFar):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func bindJSON(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if err := validate.Struct(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

type timeSelectionResponse struct {
	Selection timewindow.Selection    `json:"selection"`
	Extent    timewindow.Extent       `json:"extent"`
	Changed   bool                    `json:"changed"`
	Polygons  []dashboard.PolygonView `json:"polygons,omitempty"`
}

func respondSelection(c *fiber.Ctx, d *dashboard.Dashboard, sel timewindow.Selection, changed bool) error {
	_, extent := d.TimeSelection()
	return c.JSON(timeSelectionResponse{
		Selection: sel,
		Extent:    extent,
		Changed:   changed,
		Polygons:  d.Polygons(),
	})
}

type polygonRequest struct {
	Name        string           `json:"name" validate:"max=120"`
	Coordinates []geo.Coordinate `json:"coordinates" validate:"required,min=3,dive"`
}

type dataSourceRequest struct {
	DataSource weather.DataSource `json:"dataSource" validate:"required"`
}

const (
	edgeStart = "start"
	edgeEnd   = "end"
)

type pointerRequest struct {
	Time time.Time `json:"time" validate:"required"`
	Edge string    `json:"edge" validate:"omitempty,oneof=start end"`
}

// weatherQuery holds query parameters for the direct lookup endpoint.
type weatherQuery struct {
	Point geo.Coordinate
	Start time.Time `validate:"required"`
	End   time.Time `validate:"required,gtefield=Start"`
}

func (q *weatherQuery) bind(c *fiber.Ctx) error {
	pt, err := parseCoordinateQuery(c)
	if err != nil {
		return err
	}
	q.Point = pt

	startStr := c.Query("start")
	if startStr == "" {
		return errors.New("start query parameter is required")
	}
	start, err := parseTime(startStr)
	if err != nil {
		return err
	}
	q.Start, q.End = start, start

	if endStr := c.Query("end"); endStr != "" {
		end, err := parseTime(endStr)
		if err != nil {
			return err
		}
		q.End = end
	}
	return nil
}

func parseCoordinateQuery(c *fiber.Ctx) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return geo.Coordinate{}, errors.New("lat must be a number")
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return geo.Coordinate{}, errors.New("lng must be a number")
	}
	pt := geo.Coordinate{Lat: lat, Lng: lng}
	if err := pt.Validate(); err != nil {
		return geo.Coordinate{}, err
	}
	return pt, nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
