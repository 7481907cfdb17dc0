package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	httpadapter "github.com/samirrijal/snippetmap/internal/adapters/http"
	natsadapter "github.com/samirrijal/snippetmap/internal/adapters/nats"
	"github.com/samirrijal/snippetmap/internal/adapters/snippetapi"
	"github.com/samirrijal/snippetmap/internal/adapters/tui"
	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/usecases"
	"github.com/samirrijal/snippetmap/internal/pkg/config"
	"github.com/samirrijal/snippetmap/internal/pkg/logging"
	"github.com/samirrijal/snippetmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("snippetmap")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	w, closeLog, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLog()
	logging.Setup(cfg.Log.Level, cfg.Log.Format, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	client := snippetapi.New(snippetapi.Config{
		BaseURL:      cfg.API.BaseURL,
		FeedPath:     cfg.API.FeedPath,
		SnippetsPath: cfg.API.SnippetsPath,
		Cookies:      cfg.API.Cookies,
		CSRFCookie:   cfg.API.CSRFCookie,
		CSRFHeader:   cfg.API.CSRFHeader,
		FeedTimeout:  cfg.API.FeedTimeout,
	})

	var widget *usecases.Widget
	app := tui.NewApp(tui.Options{
		Title:    "Snippet map",
		Center:   domain.LatLng{Lat: cfg.Widget.CenterLat, Lng: cfg.Widget.CenterLng},
		Zoom:     cfg.Widget.Zoom,
		OnReload: func() { widget.Reload() },
	}, tea.WithAltScreen())
	model := app.Model()

	deps := usecases.Dependencies{
		API:       client,
		Surface:   model,
		Notifier:  model,
		Prompter:  model,
		Navigator: tui.NewNavigator(cfg.Widget.OpenURLs, model),
		Loop:      app.Loop(),
		Status:    model.StatusRegion(),
		Total:     model.TotalRegion(),
		Legend:    model,
	}

	// NATS
	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		instance := uuid.NewString()
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, instance)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			deps.Publisher = pub
			natsConn = pub.Conn()
		}
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, instance)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			deps.Changes = sub
		}
	}

	// Ops server
	if cfg.Metrics.Addr != "" {
		ops := fiber.New(fiber.Config{
			AppName:               "snippetmap ops",
			DisableStartupMessage: true,
		})
		httpadapter.SetupOpsRoutes(ops, &httpadapter.Dependencies{NATS: natsConn})
		go func() {
			slog.Info("ops server starting", "addr", cfg.Metrics.Addr)
			if err := ops.Listen(cfg.Metrics.Addr); err != nil {
				slog.Error("ops server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = ops.ShutdownWithContext(shutdownCtx)
		}()
	}

	widget = usecases.NewWidget(ctx, deps, usecases.Options{
		Editable:      cfg.Widget.Editable,
		UseBBox:       cfg.Widget.UseBBox,
		FitBounds:     cfg.Widget.FitBounds,
		FitPadding:    cfg.Widget.FitPadding,
		NewSnippetURL: cfg.API.NewSnippetURL(),
	})

	slog.Info("widget starting", "base_url", cfg.API.BaseURL, "editable", cfg.Widget.Editable, "use_bbox", cfg.Widget.UseBBox)
	if err := app.Run(widget.Start); err != nil {
		slog.Error("ui stopped", "error", err)
	}
	_ = widget.Close()
	slog.Info("widget stopped")
}
