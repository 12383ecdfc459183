package anylist

import (
	"context"
	"time"

	"github.com/lunarhue/anylist/internal/ids"
	"github.com/lunarhue/anylist/internal/ops"
)

const (
	calendarEndpoint = "data/meal-planning-calendar/update"

	// Events carry a calendar date only, no time of day.
	eventDateLayout = "2006-01-02"
)

// CalendarEventFields is the construction data for a CalendarEvent.
// Whether Identifier is set at construction decides the save handler for
// the lifetime of the event: absent means the event is new to the
// service, present means it already exists there.
type CalendarEventFields struct {
	Identifier          string
	Title               string
	Date                time.Time
	Details             string
	LabelID             string
	LogicalTimestamp    int64
	OrderAddedSortIndex int
	RecipeID            string
	RecipeScaleFactor   float64
}

// CalendarEvent is one entry on the meal planning calendar.
type CalendarEvent struct {
	env   *env
	isNew bool

	identifier string

	Title               string
	Date                time.Time
	Details             string
	LabelID             string
	LogicalTimestamp    int64
	OrderAddedSortIndex int
	RecipeID            string
	RecipeScaleFactor   float64
}

func newCalendarEvent(f CalendarEventFields, env *env) *CalendarEvent {
	e := &CalendarEvent{
		env:                 env,
		isNew:               f.Identifier == "",
		identifier:          f.Identifier,
		Title:               f.Title,
		Date:                f.Date,
		Details:             f.Details,
		LabelID:             f.LabelID,
		LogicalTimestamp:    f.LogicalTimestamp,
		OrderAddedSortIndex: f.OrderAddedSortIndex,
		RecipeID:            f.RecipeID,
		RecipeScaleFactor:   f.RecipeScaleFactor,
	}
	if e.identifier == "" {
		e.identifier = ids.New()
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	return e
}

// Identifier is assigned at construction and never changes.
func (e *CalendarEvent) Identifier() string { return e.identifier }

// Recipe resolves the event's recipe reference against the client's
// current snapshot. It is recomputed on every call and never sent back
// to the service.
func (e *CalendarEvent) Recipe() *Recipe {
	if e.RecipeID == "" {
		return nil
	}
	return e.env.recipeByID(e.RecipeID)
}

// Label resolves the event's label reference against the client's
// current snapshot.
func (e *CalendarEvent) Label() *CalendarEventLabel {
	if e.LabelID == "" {
		return nil
	}
	return e.env.labelByID(e.LabelID)
}

func (e *CalendarEvent) encodeFields(calendarID string) map[string]any {
	fields := map[string]any{
		"identifier": e.identifier,
		"date":       e.Date.Format(eventDateLayout),
	}
	if calendarID != "" {
		fields["calendarId"] = calendarID
	}
	if e.Title != "" {
		fields["title"] = e.Title
	}
	if e.Details != "" {
		fields["details"] = e.Details
	}
	if e.LabelID != "" {
		fields["labelId"] = e.LabelID
	}
	if e.LogicalTimestamp != 0 {
		fields["logicalTimestamp"] = e.LogicalTimestamp
	}
	if e.OrderAddedSortIndex != 0 {
		fields["orderAddedSortIndex"] = e.OrderAddedSortIndex
	}
	if e.RecipeID != "" {
		fields["recipeId"] = e.RecipeID
	}
	if e.RecipeScaleFactor != 0 {
		fields["recipeScaleFactor"] = e.RecipeScaleFactor
	}
	return fields
}

func (e *CalendarEvent) performOperation(ctx context.Context, handlerID string) error {
	_, calendarID := e.env.containerIDs()
	data, err := e.env.enc.EncodeCalendarOps([]ops.CalendarOp{{
		HandlerID:  handlerID,
		UserID:     e.env.userID,
		CalendarID: calendarID,
		Event:      e.encodeFields(calendarID),
	}})
	if err != nil {
		return err
	}
	return e.env.transport.PostOperations(ctx, calendarEndpoint, data)
}

// Save transmits the event. Events constructed without an identifier
// are created, all others are updated in place.
func (e *CalendarEvent) Save(ctx context.Context) error {
	handler := "set-event-details"
	if e.isNew {
		handler = "new-event"
	}
	return e.performOperation(ctx, handler)
}

// Delete removes the event from the calendar.
func (e *CalendarEvent) Delete(ctx context.Context) error {
	return e.performOperation(ctx, "delete-event")
}

// CalendarEventLabel is a color label events may reference. Labels are
// read only on this client.
type CalendarEventLabel struct {
	identifier       string
	calendarID       string
	hexColor         string
	name             string
	sortIndex        int
	logicalTimestamp int64
}

func (l *CalendarEventLabel) Identifier() string      { return l.identifier }
func (l *CalendarEventLabel) CalendarID() string      { return l.calendarID }
func (l *CalendarEventLabel) HexColor() string        { return l.hexColor }
func (l *CalendarEventLabel) Name() string            { return l.name }
func (l *CalendarEventLabel) SortIndex() int          { return l.sortIndex }
func (l *CalendarEventLabel) LogicalTimestamp() int64 { return l.logicalTimestamp }
