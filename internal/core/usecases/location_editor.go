package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/ports"
	"github.com/samirrijal/snippetmap/internal/pkg/geospatial"
	"github.com/samirrijal/snippetmap/internal/pkg/metrics"
)

const opUpdate = "update_location"

// LocationEditor runs the coordinate-edit workflow of each marker:
// request, confirmation, save, then confirm or roll back.
type LocationEditor struct {
	ctx       context.Context
	api       ports.SnippetWriter
	layers    *LayerGroup
	renderer  *MarkerRenderer
	prompter  ports.Prompter
	notifier  ports.Notifier
	loop      ports.Loop
	loader    *FeedLoader
	publisher ports.EventPublisher

	states map[string]domain.EditState
	seq    map[string]uint64
}

// NewLocationEditor wires an editor. publisher may be nil.
func NewLocationEditor(ctx context.Context, api ports.SnippetWriter, layers *LayerGroup, renderer *MarkerRenderer,
	prompter ports.Prompter, notifier ports.Notifier, loop ports.Loop, loader *FeedLoader, publisher ports.EventPublisher) *LocationEditor {
	return &LocationEditor{
		ctx:       ctx,
		api:       api,
		layers:    layers,
		renderer:  renderer,
		prompter:  prompter,
		notifier:  notifier,
		loop:      loop,
		loader:    loader,
		publisher: publisher,
		states:    make(map[string]domain.EditState),
		seq:       make(map[string]uint64),
	}
}

// State returns the workflow state of the marker with id.
func (e *LocationEditor) State(id string) domain.EditState { return e.states[id] }

// HandleDragEnd starts an edit at the exact coordinates a marker was dropped on.
func (e *LocationEditor) HandleDragEnd(ev domain.MapEvent) {
	m := e.layers.Get(ev.MarkerID)
	if m == nil {
		slog.Warn("drag end on unknown marker", "id", ev.MarkerID)
		return
	}
	e.states[m.ID()] = domain.EditRequested
	from := m.Record.Position
	m.Position = ev.At
	e.layers.Update(m)
	e.confirm(m, from, ev.At)
}

// HandleEditRequest opens the coordinate form of a marker.
func (e *LocationEditor) HandleEditRequest(ev domain.MapEvent) {
	m := e.layers.Get(ev.MarkerID)
	if m == nil {
		slog.Warn("edit request on unknown marker", "id", ev.MarkerID)
		return
	}
	id := m.ID()
	e.states[id] = domain.EditRequested
	e.prompter.EditCoordinates(m, func(lat, lng string) {
		_ = e.SubmitForm(id, lat, lng)
	}, func() {
		if e.states[id] == domain.EditRequested {
			e.states[id] = domain.EditIdle
		}
	})
}

// SubmitForm validates form input for the marker with id and, when valid,
// continues to the confirmation step. Invalid input leaves the marker
// untouched and sends no request.
func (e *LocationEditor) SubmitForm(id, latText, lngText string) error {
	at, err := ParseCoordinates(latText, lngText)
	if err != nil {
		metrics.ValidationRejections.Inc()
		e.states[id] = domain.EditIdle
		e.notifier.Notify(domain.Notice{Severity: domain.SeverityWarning, Title: "Invalid coordinates", Text: err.Error()})
		return err
	}
	m := e.layers.Get(id)
	if m == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMarker, id)
	}
	from := m.Record.Position
	m.Position = at
	e.layers.Update(m)
	e.confirm(m, from, at)
	return nil
}

func (e *LocationEditor) confirm(m *domain.MarkerView, from, to domain.LatLng) {
	id := m.ID()
	e.seq[id]++
	seq := e.seq[id]
	e.states[id] = domain.EditAwaitingConfirmation

	km := geospatial.Haversine(from, to) / 1000
	text := fmt.Sprintf("Move %q to %s, %s? (%.2f km from its saved location)",
		m.Popup.Title, to.LatString(), to.LngString(), km)

	e.prompter.Confirm("Update location?", text, func(ok bool) {
		if e.seq[id] != seq {
			metrics.StaleCompletions.WithLabelValues("confirm").Inc()
			return
		}
		if !ok {
			e.states[id] = domain.EditRolledBack
			metrics.Mutations.WithLabelValues(opUpdate, metrics.ResultDeclined).Inc()
			e.notifier.Notify(domain.Notice{Severity: domain.SeverityInfo, Title: "Location unchanged"})
			e.loader.Load()
			return
		}
		e.save(m, to, seq)
	})
}

func (e *LocationEditor) save(m *domain.MarkerView, to domain.LatLng, seq uint64) {
	id := m.ID()
	e.states[id] = domain.EditSaving
	m.Pending = true
	m.Style = PendingStyle(m.Style)
	e.layers.Update(m)

	at := geospatial.Round6(to)
	e.loop.Submit(func() func() {
		err := e.api.UpdateLocation(e.ctx, id, at)
		return func() {
			if e.seq[id] != seq {
				metrics.StaleCompletions.WithLabelValues(opUpdate).Inc()
				slog.Debug("dropping superseded location update", "id", id, "seq", seq)
				return
			}
			if err != nil {
				e.rollback(m, err)
				return
			}
			e.commit(m, at)
		}
	})
}

func (e *LocationEditor) commit(m *domain.MarkerView, at domain.LatLng) {
	// A reload during the save may have replaced the view.
	if cur := e.layers.Get(m.ID()); cur != nil {
		m = cur
	}
	m.Record.Position = at
	m.Position = at
	e.renderer.Restore(m)
	e.renderer.Refresh(m)
	e.layers.Update(m)

	e.states[m.ID()] = domain.EditConfirmed
	metrics.Mutations.WithLabelValues(opUpdate, metrics.ResultOK).Inc()
	slog.Info("location updated", "id", m.ID(), "lat", at.LatString(), "lng", at.LngString())
	e.notifier.Notify(domain.Notice{
		Severity: domain.SeveritySuccess,
		Title:    "Location updated",
		Text:     fmt.Sprintf("%s, %s", at.LatString(), at.LngString()),
	})

	if e.publisher != nil {
		rec := *m.Record
		publish(e.loop, "location updated", func() error {
			return e.publisher.PublishLocationUpdated(e.ctx, &rec)
		})
	}
}

func (e *LocationEditor) rollback(m *domain.MarkerView, err error) {
	e.renderer.Restore(m)
	e.layers.Update(m)
	e.states[m.ID()] = domain.EditRolledBack
	metrics.Mutations.WithLabelValues(opUpdate, mutationResult(err)).Inc()
	slog.Error("location update failed", "id", m.ID(), "error", err)
	e.notifier.Notify(domain.Notice{Severity: domain.SeverityError, Title: "Could not update location", Text: errorText(err)})
	e.loader.Load()
}

func mutationResult(err error) string {
	var re *domain.RejectedError
	if errors.As(err, &re) {
		return metrics.ResultRejected
	}
	return metrics.ResultTransport
}

// publish sends an event off the UI loop; failures are only logged.
func publish(loop ports.Loop, what string, send func() error) {
	loop.Submit(func() func() {
		err := send()
		return func() {
			if err != nil {
				slog.Warn("event not published", "event", what, "error", err)
			}
		}
	})
}
