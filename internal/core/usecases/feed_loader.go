package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/ports"
	"github.com/samirrijal/snippetmap/internal/pkg/metrics"
)

// LoaderOptions controls how the feed is requested and framed.
type LoaderOptions struct {
	UseBBox    bool
	FitBounds  bool
	FitPadding int
}

// FeedLoader fetches the feed and rebuilds the marker layer from it.
// Load and its completions run on the UI loop.
type FeedLoader struct {
	ctx      context.Context
	feed     ports.FeedSource
	surface  ports.MapSurface
	layers   *LayerGroup
	renderer *MarkerRenderer
	panel    *Panel
	notifier ports.Notifier
	loop     ports.Loop
	opts     LoaderOptions

	generation uint64
	applied    uint64
}

// NewFeedLoader wires a loader.
func NewFeedLoader(ctx context.Context, feed ports.FeedSource, surface ports.MapSurface, layers *LayerGroup,
	renderer *MarkerRenderer, panel *Panel, notifier ports.Notifier, loop ports.Loop, opts LoaderOptions) *FeedLoader {
	if opts.FitPadding <= 0 {
		opts.FitPadding = 30
	}
	return &FeedLoader{
		ctx:      ctx,
		feed:     feed,
		surface:  surface,
		layers:   layers,
		renderer: renderer,
		panel:    panel,
		notifier: notifier,
		loop:     loop,
		opts:     opts,
	}
}

// Generation returns the number of loads started so far.
func (l *FeedLoader) Generation() uint64 { return l.generation }

// Applied returns the number of completions that rebuilt the marker layer
// from a server response. Stale loads and transport failures leave the layer
// as it was and are not counted.
func (l *FeedLoader) Applied() uint64 { return l.applied }

// Load starts a feed read. Completions of a load superseded by a newer one
// are dropped.
func (l *FeedLoader) Load() {
	l.generation++
	gen := l.generation

	var bbox *domain.Bounds
	if l.opts.UseBBox {
		vp := l.surface.Viewport()
		bbox = &vp
	}

	l.panel.SetStatus("Loading snippets...")
	start := time.Now()

	l.loop.Submit(func() func() {
		feed, err := l.feed.FetchFeed(l.ctx, bbox)
		return func() {
			if gen != l.generation {
				metrics.StaleCompletions.WithLabelValues("load").Inc()
				slog.Debug("dropping stale feed", "generation", gen, "current", l.generation)
				return
			}
			metrics.FeedLoadDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				l.fail(err)
			} else {
				l.apply(feed)
			}
		}
	})
}

func (l *FeedLoader) apply(feed *domain.Feed) {
	l.applied++
	l.layers.Clear()
	for i := range feed.Records {
		rec := &feed.Records[i]
		if !rec.HasPoint {
			continue
		}
		l.layers.Add(l.renderer.ToMarker(rec))
	}

	n := feed.Len()
	l.panel.SetTotal(n)
	l.panel.ShowLegend(BuildLegend(feed.Records))
	l.panel.SetStatus(fmt.Sprintf("Loaded %d snippets", n))
	metrics.FeedLoads.WithLabelValues(metrics.ResultOK).Inc()
	metrics.FeedFeatures.Set(float64(n))

	if l.opts.FitBounds && n > 0 {
		if b, ok := l.layers.Bounds(); ok {
			l.surface.FitBounds(b, l.opts.FitPadding)
		}
	}
}

func (l *FeedLoader) fail(err error) {
	if errors.Is(err, domain.ErrMalformedFeed) {
		metrics.FeedLoads.WithLabelValues(metrics.ResultMalformed).Inc()
		slog.Warn("feed rejected", "error", err)
		l.applied++
		l.layers.Clear()
		l.panel.SetTotal(0)
		l.panel.ShowLegend(domain.Legend{Placeholder: NoDataText})
		l.panel.SetStatus("Invalid response")
		l.notifier.Notify(domain.Notice{Severity: domain.SeverityError, Title: "Invalid response", Text: "The snippet feed could not be read."})
		return
	}

	metrics.FeedLoads.WithLabelValues(metrics.ResultTransport).Inc()
	slog.Error("feed load failed", "error", err)
	msg := errorText(err)
	l.panel.SetStatus(msg)
	l.panel.ShowLegend(domain.Legend{Placeholder: LoadingErrorText})
	l.notifier.Notify(domain.Notice{Severity: domain.SeverityError, Title: "Could not load snippets", Text: msg})
}

// errorText renders a failure for the status line and toasts.
func errorText(err error) string {
	var te *domain.TransportError
	if errors.As(err, &te) {
		return te.Error()
	}
	var re *domain.RejectedError
	if errors.As(err, &re) && re.Reason != "" {
		return re.Reason
	}
	return (&domain.TransportError{Err: err}).Error()
}
