package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/snippetmap/internal/adapters/snippetapi"
	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/usecases"
)

const (
	bboxUsage = "bbox invalid. Format: minx,miny,maxx,maxy"
	// feedCacheKey holds the unfiltered feed; bbox queries are not cached.
	feedCacheKey = "feed:all"
)

// FeedHandler serves the GeoJSON feed, optionally filtered by
// ?bbox=west,south,east,north.
func FeedHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var bbox *domain.Bounds
		if raw := c.Query("bbox"); raw != "" {
			b, ok := parseBBox(raw)
			if !ok {
				return c.Status(fiber.StatusBadRequest).SendString(bboxUsage)
			}
			bbox = &b
		}

		ctx := c.UserContext()
		c.Set(fiber.HeaderContentType, "application/geo+json")
		if bbox == nil && deps.Cache != nil {
			if body, err := deps.Cache.Get(ctx, feedCacheKey); err == nil {
				c.Set("X-Cache", "HIT")
				return c.Send(body)
			}
		}

		records, err := deps.Store.List(ctx, bbox)
		if err != nil {
			return errInternal(c, err.Error())
		}
		body, err := snippetapi.EncodeFeed(records)
		if err != nil {
			return errInternal(c, err.Error())
		}

		if bbox == nil && deps.Cache != nil {
			c.Set("X-Cache", "MISS")
			if err := deps.Cache.Set(ctx, feedCacheKey, body, deps.feedCacheTTL()); err != nil {
				LoggerFromCtx(ctx).Warn("feed cache set failed", "error", err)
			}
		}
		LoggerFromCtx(ctx).Debug("feed served", "features", len(records), "bbox", bbox != nil)
		return c.Send(body)
	}
}

// invalidateFeed drops the cached feed after a mutation.
func invalidateFeed(c *fiber.Ctx, deps *Dependencies) {
	if deps.Cache == nil {
		return
	}
	if err := deps.Cache.Delete(c.UserContext(), feedCacheKey); err != nil {
		LoggerFromCtx(c.UserContext()).Warn("feed cache invalidation failed", "error", err)
	}
}

func parseBBox(raw string) (domain.Bounds, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return domain.Bounds{}, false
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.Bounds{}, false
		}
		v[i] = f
	}
	return domain.Bounds{West: v[0], South: v[1], East: v[2], North: v[3]}, true
}

type locationRequest struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// UpdateLocationHandler moves a snippet to the coordinates in the JSON body.
func UpdateLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return reject(c, fiber.StatusBadRequest, "invalid JSON body")
		}
		at, err := usecases.ParseCoordinates(req.Lat, req.Lng)
		if err != nil {
			return reject(c, fiber.StatusBadRequest, err.Error())
		}

		if err := deps.Store.UpdateLocation(c.UserContext(), id, at); err != nil {
			return storeFailure(c, err)
		}
		invalidateFeed(c, deps)
		LoggerFromCtx(c.UserContext()).Info("location updated", "id", id, "lat", req.Lat, "lng", req.Lng)
		return c.JSON(MutationResult{Success: true})
	}
}

// DeleteHandler removes a snippet.
func DeleteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := deps.Store.Delete(c.UserContext(), id); err != nil {
			return storeFailure(c, err)
		}
		invalidateFeed(c, deps)
		LoggerFromCtx(c.UserContext()).Info("snippet deleted", "id", id)
		return c.JSON(MutationResult{Success: true})
	}
}

func storeFailure(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSnippetNotFound):
		return reject(c, fiber.StatusNotFound, "snippet not found")
	case errors.Is(err, domain.ErrSnippetLocked):
		return reject(c, fiber.StatusConflict, "locked")
	default:
		return reject(c, fiber.StatusInternalServerError, err.Error())
	}
}
