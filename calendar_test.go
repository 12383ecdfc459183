package anylist

import (
	"context"
	"testing"
	"time"

	"github.com/lunarhue/anylist/internal/schema"
)

func TestCalendarEvent_SaveNewEvent(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	c.env.calendarID = "cal-1"

	ev := newCalendarEvent(CalendarEventFields{
		Title: "Brunch",
		Date:  time.Date(2026, time.August, 30, 14, 45, 0, 0, time.UTC),
	}, c.env)

	if err := ev.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ft.posts[0].endpoint != calendarEndpoint {
		t.Fatalf("endpoint = %q", ft.posts[0].endpoint)
	}
	batch := decodeCalendarOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "new-event" {
		t.Fatalf("events built without an identifier are created, handler = %q", handler)
	}
	if schema.Str(batch[0], "calendarId") != "cal-1" {
		t.Fatalf("calendar id missing")
	}
	embedded := schema.Msg(batch[0], "updatedEvent")
	if embedded == nil || schema.Str(embedded, "title") != "Brunch" {
		t.Fatalf("event not embedded: %+v", batch[0])
	}
	// Time of day never reaches the wire.
	if got := schema.Str(embedded, "date"); got != "2026-08-30" {
		t.Fatalf("date = %q, want calendar date only", got)
	}
}

func TestCalendarEvent_SaveExistingEvent(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	c.env.calendarID = "cal-1"

	ev := newCalendarEvent(CalendarEventFields{Identifier: "event-1", Title: "Dinner"}, c.env)
	if err := ev.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	batch := decodeCalendarOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "set-event-details" {
		t.Fatalf("events built with an identifier are updated, handler = %q", handler)
	}

	// Saving again keeps updating: the new-or-existing decision is fixed
	// at construction.
	if err := ev.Save(context.Background()); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	batch = decodeCalendarOps(t, ft.posts[1].body)
	if handler, _ := opMeta(t, batch[0]); handler != "set-event-details" {
		t.Fatalf("second save handler = %q", handler)
	}
}

func TestCalendarEvent_NewStaysNewAcrossSaves(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	ev := newCalendarEvent(CalendarEventFields{Title: "Lunch"}, c.env)

	for i := 0; i < 2; i++ {
		if err := ev.Save(context.Background()); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}
	for i := range ft.posts {
		batch := decodeCalendarOps(t, ft.posts[i].body)
		if handler, _ := opMeta(t, batch[0]); handler != "new-event" {
			t.Fatalf("save %d handler = %q", i, handler)
		}
	}
}

func TestCalendarEvent_Delete(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	c.env.calendarID = "cal-1"

	ev := newCalendarEvent(CalendarEventFields{Identifier: "event-1"}, c.env)
	if err := ev.Delete(context.Background()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	batch := decodeCalendarOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "delete-event" {
		t.Fatalf("handler = %q", handler)
	}
}

func TestCalendarEvent_ResolvesReferences(t *testing.T) {
	t.Parallel()

	c := newTestClient(&fakeTransport{})
	recipe := newRecipe(RecipeFields{Identifier: "recipe-1", Name: "Pancakes"}, c.env)
	label := &CalendarEventLabel{identifier: "label-1", name: "Weekend"}
	c.env.recipes = []*Recipe{recipe}
	c.env.labels = []*CalendarEventLabel{label}

	ev := newCalendarEvent(CalendarEventFields{RecipeID: "recipe-1", LabelID: "label-1"}, c.env)
	if ev.Recipe() != recipe {
		t.Fatalf("recipe reference not resolved")
	}
	if ev.Label() != label {
		t.Fatalf("label reference not resolved")
	}

	// References are recomputed per call, so a new snapshot wins.
	c.env.recipes = nil
	if ev.Recipe() != nil {
		t.Fatalf("stale recipe reference survived a snapshot replacement")
	}

	bare := newCalendarEvent(CalendarEventFields{}, c.env)
	if bare.Recipe() != nil || bare.Label() != nil {
		t.Fatalf("events without references resolve to nil")
	}
}
