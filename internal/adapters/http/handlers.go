package http

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/placeroute/internal/adapters/export"
	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/registry"
)

const maxQueryLength = 200

type placeRequest struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Position  *int    `json:"position,omitempty"`
}

type orderRequest struct {
	Order []int `json:"order"`
}

type inputRequest struct {
	Tag     domain.InputTag `json:"tag"`
	Content string          `json:"content"`
}

// ListPlacesHandler returns the place list in visiting order.
func ListPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		places := deps.Controller.Places()
		return c.JSON(fiber.Map{"places": places, "count": len(places)})
	}
}

// AddPlaceHandler inserts a place at the requested position, appending when
// none is given.
func AddPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req placeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		pos := registry.Append
		if req.Position != nil {
			pos = *req.Position
		}

		p := domain.Place{Name: req.Name, Longitude: req.Longitude, Latitude: req.Latitude}
		idx, err := deps.Controller.AddPlace(c.UserContext(), p, pos)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"index": idx, "place": p})
	}
}

// RemovePlaceHandler removes the first place whose record matches the body.
func RemovePlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req placeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		p := domain.Place{Name: req.Name, Longitude: req.Longitude, Latitude: req.Latitude}
		if !deps.Controller.RemovePlace(c.UserContext(), p) {
			return newError(c, fiber.StatusNotFound, "not_found", "place not in list")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ReorderHandler applies a caller-supplied permutation.
func ReorderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req orderRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Controller.Reorder(c.UserContext(), req.Order); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"places": deps.Controller.Places()})
	}
}

// OptimizeHandler reorders the list into the shortest route.
func OptimizeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := deps.Controller.Optimize(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(summary)
	}
}

// RouteHandler summarizes the list in its current order.
func RouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Controller.Route())
	}
}

// ExportRouteHandler streams the current route as a spreadsheet.
func ExportRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := export.WriteRoute(&buf, deps.Controller.Route()); err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, export.ContentTypeXLSX)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="route.xlsx"`)
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Send(buf.Bytes())
	}
}

// SavePlacesHandler persists the list to the configured store.
func SavePlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := deps.Controller.Save(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"count": n})
	}
}

// LoadPlacesHandler replaces the list with the stored one.
func LoadPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := deps.Controller.Load(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"count": n})
	}
}

// GeocodeHandler resolves free text into candidates without touching the list.
func GeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return errBadRequest(c, "q parameter is required")
		}
		if len(q) > maxQueryLength {
			return errBadRequest(c, "q parameter is too long")
		}

		candidates := deps.Controller.Resolve(c.UserContext(), q)
		return c.JSON(fiber.Map{"query": q, "candidates": candidates})
	}
}

// InputHandler feeds a host UI answer into the controller. Follow-up
// questions and messages go out over the UI channel, not in the response.
func InputHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req inputRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Tag == "" {
			return errBadRequest(c, "tag is required")
		}
		if err := deps.Controller.HandleInput(c.UserContext(), req.Tag, req.Content); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"tag": req.Tag, "status": "accepted"})
	}
}
