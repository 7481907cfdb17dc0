package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/ports"
	"github.com/samirrijal/snippetmap/internal/pkg/metrics"
)

const opDelete = "delete"

// DeletionWorkflow confirms and persists marker removals.
type DeletionWorkflow struct {
	ctx       context.Context
	api       ports.SnippetWriter
	layers    *LayerGroup
	panel     *Panel
	prompter  ports.Prompter
	notifier  ports.Notifier
	loop      ports.Loop
	loader    *FeedLoader
	publisher ports.EventPublisher
}

// NewDeletionWorkflow wires a deletion workflow. publisher may be nil.
func NewDeletionWorkflow(ctx context.Context, api ports.SnippetWriter, layers *LayerGroup, panel *Panel,
	prompter ports.Prompter, notifier ports.Notifier, loop ports.Loop, loader *FeedLoader, publisher ports.EventPublisher) *DeletionWorkflow {
	return &DeletionWorkflow{
		ctx:       ctx,
		api:       api,
		layers:    layers,
		panel:     panel,
		prompter:  prompter,
		notifier:  notifier,
		loop:      loop,
		loader:    loader,
		publisher: publisher,
	}
}

// HandleRemove reacts to a marker the user erased from the surface.
func (d *DeletionWorkflow) HandleRemove(ev domain.MapEvent) {
	m := d.layers.Detach(ev.MarkerID)
	if m == nil {
		slog.Warn("remove on unknown marker", "id", ev.MarkerID)
		return
	}

	text := fmt.Sprintf("Delete %q? This cannot be undone.", m.Popup.Title)
	d.prompter.Confirm("Delete snippet?", text, func(ok bool) {
		if !ok {
			metrics.Mutations.WithLabelValues(opDelete, metrics.ResultDeclined).Inc()
			d.layers.Add(m)
			return
		}
		d.delete(m)
	})
}

func (d *DeletionWorkflow) delete(m *domain.MarkerView) {
	id := m.ID()
	applied := d.loader.Applied()
	d.loop.Submit(func() func() {
		err := d.api.Delete(d.ctx, id)
		return func() {
			if err != nil {
				metrics.Mutations.WithLabelValues(opDelete, mutationResult(err)).Inc()
				slog.Error("delete failed", "id", id, "error", err)
				d.notifier.Notify(domain.Notice{Severity: domain.SeverityError, Title: "Could not delete snippet", Text: errorText(err)})
				d.loader.Load()
				return
			}

			metrics.Mutations.WithLabelValues(opDelete, metrics.ResultOK).Inc()
			remaining := d.settle(id, applied)
			slog.Info("snippet deleted", "id", id, "remaining", remaining)
			d.notifier.Notify(domain.Notice{Severity: domain.SeveritySuccess, Title: "Snippet deleted", Text: m.Popup.Title})

			if d.publisher != nil {
				publish(d.loop, "snippet deleted", func() error {
					return d.publisher.PublishSnippetDeleted(d.ctx, id)
				})
			}
		}
	})
}

// settle reconciles the layer and total after a successful delete. A load
// applied while the request was in flight either still carried the record,
// which is then erased and subtracted, or already left it out.
func (d *DeletionWorkflow) settle(id string, applied uint64) int {
	if d.loader.Applied() == applied {
		return d.panel.DecrementTotal()
	}
	if d.layers.Remove(id) == nil {
		metrics.StaleCompletions.WithLabelValues(opDelete).Inc()
		slog.Debug("delete already reflected by reload", "id", id)
		return d.panel.Total()
	}
	return d.panel.DecrementTotal()
}
