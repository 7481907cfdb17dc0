package snippetapi_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	handler "github.com/samirrijal/snippetmap/internal/adapters/http"
	"github.com/samirrijal/snippetmap/internal/adapters/memstore"
	"github.com/samirrijal/snippetmap/internal/adapters/snippetapi"
	"github.com/samirrijal/snippetmap/internal/core/domain"
)

const (
	feedPath = "/snippets/map/api/geojson/"
	apiPath  = "/snippets/api/snippets/"
)

// serve runs app on an in-memory listener and returns a client dialing it.
func serve(t *testing.T, app *fiber.App, cfg snippetapi.Config) *snippetapi.Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	cfg.BaseURL = "http://snippets.test"
	if cfg.FeedPath == "" {
		cfg.FeedPath = feedPath
	}
	if cfg.SnippetsPath == "" {
		cfg.SnippetsPath = apiPath
	}
	return snippetapi.New(cfg, snippetapi.WithDial(func(string) (net.Conn, error) { return ln.Dial() }))
}

func stub(store *memstore.Store) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupStubRoutes(app, &handler.Dependencies{Store: store, FeedPath: feedPath, SnippetsPath: apiPath})
	return app
}

func TestClient_FeedThenUpdate(t *testing.T) {
	store := memstore.New(memstore.Sample())
	c := serve(t, stub(store), snippetapi.Config{})
	ctx := context.Background()

	feed, err := c.FetchFeed(ctx, nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if feed.Len() != 7 {
		t.Fatalf("expected 7 records, got %d", feed.Len())
	}

	// The csrf cookie issued with the feed authorizes the update.
	if err := c.UpdateLocation(ctx, "1", domain.LatLng{Lat: 43.263, Lng: -2.935}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, _ := store.Get(ctx, "1")
	if rec.Position != (domain.LatLng{Lat: 43.263, Lng: -2.935}) {
		t.Errorf("store not updated: %+v", rec.Position)
	}

	if err := c.Delete(ctx, "2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.Len() != 6 {
		t.Errorf("expected 6 records, got %d", store.Len())
	}
}

func TestClient_BBox(t *testing.T) {
	c := serve(t, stub(memstore.New(memstore.Sample())), snippetapi.Config{})

	feed, err := c.FetchFeed(context.Background(), &domain.Bounds{South: 42.5, West: -9.5, North: 44, East: -1})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if feed.Len() != 2 {
		t.Errorf("expected 2 records, got %d", feed.Len())
	}
}

func TestClient_MissingCSRFIsTransportError(t *testing.T) {
	c := serve(t, stub(memstore.New(memstore.Sample())), snippetapi.Config{})

	err := c.UpdateLocation(context.Background(), "1", domain.LatLng{Lat: 1, Lng: 1})
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Status != 403 || te.Body != "CSRF token missing or incorrect" {
		t.Errorf("unexpected error %+v", te)
	}
}

func TestClient_SeededCookies(t *testing.T) {
	store := memstore.New(memstore.Sample())
	c := serve(t, stub(store), snippetapi.Config{Cookies: "csrftoken=seeded; sessionid=abc"})

	if err := c.Delete(context.Background(), "3"); err != nil {
		t.Fatalf("delete with seeded cookie: %v", err)
	}
}

func TestClient_RejectedLocked(t *testing.T) {
	store := memstore.New(memstore.Sample())
	store.Lock("42")
	c := serve(t, stub(store), snippetapi.Config{Cookies: "csrftoken=t"})

	err := c.UpdateLocation(context.Background(), "42", domain.LatLng{Lat: 1, Lng: 1})
	var re *domain.RejectedError
	if !errors.As(err, &re) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if re.Reason != "locked" {
		t.Errorf("expected locked, got %q", re.Reason)
	}
}

func TestClient_FeedHTTPError(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get(feedPath, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusServiceUnavailable).SendString("maintenance")
	})
	c := serve(t, app, snippetapi.Config{})

	_, err := c.FetchFeed(context.Background(), nil)
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Error() != "Error 503: maintenance" {
		t.Errorf("unexpected message %q", te.Error())
	}
}

func TestClient_FeedEmptyErrorBody(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get(feedPath, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusBadGateway)
	})
	c := serve(t, app, snippetapi.Config{})

	_, err := c.FetchFeed(context.Background(), nil)
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Status != 502 || te.Body == "" {
		t.Errorf("expected 502 with status text, got %v", err)
	}
}

func TestClient_FeedMalformed(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get(feedPath, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"type": "FeatureCollection"})
	})
	c := serve(t, app, snippetapi.Config{})

	if _, err := c.FetchFeed(context.Background(), nil); !errors.Is(err, domain.ErrMalformedFeed) {
		t.Errorf("expected ErrMalformedFeed, got %v", err)
	}
}

func TestClient_FeedTimeout(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get(feedPath, func(c *fiber.Ctx) error {
		time.Sleep(300 * time.Millisecond)
		return c.JSON(fiber.Map{"features": []any{}})
	})
	c := serve(t, app, snippetapi.Config{FeedTimeout: 50 * time.Millisecond})

	_, err := c.FetchFeed(context.Background(), nil)
	if !errors.Is(err, fasthttp.ErrTimeout) {
		t.Errorf("expected timeout, got %v", err)
	}
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Status != 0 {
		t.Errorf("expected status-less TransportError, got %v", err)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	c := serve(t, stub(memstore.New(memstore.Sample())), snippetapi.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.FetchFeed(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClient_MalformedMutationResponse(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post(apiPath+":id/delete/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	c := serve(t, app, snippetapi.Config{})

	err := c.Delete(context.Background(), "1")
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Status != 200 {
		t.Errorf("expected TransportError for non-JSON success body, got %v", err)
	}
}
