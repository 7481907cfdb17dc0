package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/ports"
)

// Dependencies are the collaborators of a Widget. Publisher, Changes and the
// three display regions are optional.
type Dependencies struct {
	API       ports.SnippetAPI
	Surface   ports.MapSurface
	Notifier  ports.Notifier
	Prompter  ports.Prompter
	Navigator ports.Navigator
	Loop      ports.Loop
	Publisher ports.EventPublisher
	Changes   ports.ChangeSubscriber

	Status ports.TextRegion
	Total  ports.TextRegion
	Legend ports.LegendRegion
}

// Options configures a Widget.
type Options struct {
	Editable   bool
	UseBBox    bool
	FitBounds  bool
	FitPadding int
	// NewSnippetURL is the create page the map redirects to on click.
	NewSnippetURL string
}

// Widget owns the map surface, its marker layer and the workflows acting on it.
type Widget struct {
	ctx    context.Context
	cancel context.CancelFunc
	deps   Dependencies
	opts   Options

	layers   *LayerGroup
	panel    *Panel
	renderer *MarkerRenderer
	loader   *FeedLoader
	editor   *LocationEditor
	deletion *DeletionWorkflow
}

// NewWidget assembles a widget. Nothing is drawn or fetched until Start.
func NewWidget(ctx context.Context, deps Dependencies, opts Options) *Widget {
	ctx, cancel := context.WithCancel(ctx)
	w := &Widget{ctx: ctx, cancel: cancel, deps: deps, opts: opts}

	w.layers = NewLayerGroup(deps.Surface)
	w.panel = NewPanel(deps.Status, deps.Total, deps.Legend)
	w.renderer = NewMarkerRenderer(opts.Editable)
	w.loader = NewFeedLoader(ctx, deps.API, deps.Surface, w.layers, w.renderer, w.panel, deps.Notifier, deps.Loop, LoaderOptions{
		UseBBox:    opts.UseBBox,
		FitBounds:  opts.FitBounds,
		FitPadding: opts.FitPadding,
	})
	w.editor = NewLocationEditor(ctx, deps.API, w.layers, w.renderer, deps.Prompter, deps.Notifier, deps.Loop, w.loader, deps.Publisher)
	w.deletion = NewDeletionWorkflow(ctx, deps.API, w.layers, w.panel, deps.Prompter, deps.Notifier, deps.Loop, w.loader, deps.Publisher)
	return w
}

// Start registers the event table on the surface and performs the first load.
// Must run on the UI loop.
func (w *Widget) Start() {
	s := w.deps.Surface
	s.On(domain.EventClick, w.handleCreate)
	s.On(domain.EventMarkerCreate, w.handleCreate)
	if w.opts.Editable {
		s.On(domain.EventMarkerDragEnd, w.editor.HandleDragEnd)
		s.On(domain.EventMarkerEdit, w.editor.HandleEditRequest)
		s.On(domain.EventMarkerRemove, w.deletion.HandleRemove)
	}
	if w.opts.UseBBox {
		s.On(domain.EventMoveEnd, func(domain.MapEvent) { w.loader.Load() })
	}
	if w.deps.Changes != nil {
		if err := w.deps.Changes.SubscribeChanges(w.ctx, w.handleRemoteChange); err != nil {
			slog.Warn("live updates disabled", "error", err)
		}
	}
	w.loader.Load()
}

// handleRemoteChange runs on the subscriber's goroutine.
func (w *Widget) handleRemoteChange(_ context.Context, ch domain.SnippetChange) error {
	slog.Info("remote change", "kind", ch.Kind, "id", ch.ID, "source", ch.Source)
	w.deps.Loop.Submit(func() func() {
		return func() {
			w.panel.SetStatus(fmt.Sprintf("Snippet %s changed elsewhere, reloading", ch.ID))
			w.loader.Load()
		}
	})
	return nil
}

// Reload refetches the feed.
func (w *Widget) Reload() { w.loader.Load() }

// Close cancels outstanding requests and tears down the surface.
func (w *Widget) Close() error {
	w.cancel()
	return w.deps.Surface.Close()
}

// Layers returns the marker layer.
func (w *Widget) Layers() *LayerGroup { return w.layers }

// Panel returns the status panel.
func (w *Widget) Panel() *Panel { return w.panel }

// Editor returns the location editor.
func (w *Widget) Editor() *LocationEditor { return w.editor }

// Loader returns the feed loader.
func (w *Widget) Loader() *FeedLoader { return w.loader }

func (w *Widget) handleCreate(ev domain.MapEvent) {
	url := CreateURL(w.opts.NewSnippetURL, ev.At)
	slog.Info("redirecting to create page", "url", url)
	if err := w.deps.Navigator.Navigate(url); err != nil {
		w.deps.Notifier.Notify(domain.Notice{Severity: domain.SeverityError, Title: "Could not open create page", Text: err.Error()})
	}
}

// CreateURL appends the coordinate of at to the create page URL.
func CreateURL(base string, at domain.LatLng) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "lat=" + at.LatString() + "&lng=" + at.LngString()
}
