// Package ops builds the append-only operation envelopes the service
// applies in order. Every envelope carries a freshly generated operation
// id, even when a caller retries an identical mutation: retries are new
// operations, not replays.
package ops

import (
	"fmt"
	"strconv"

	"github.com/lunarhue/anylist/internal/ids"
	"github.com/lunarhue/anylist/internal/schema"
)

// Encoder serializes operation batches through the schema registry.
type Encoder struct {
	reg *schema.Registry
}

// NewEncoder wraps a registry.
func NewEncoder(reg *schema.Registry) *Encoder {
	return &Encoder{reg: reg}
}

// ListOp is one mutation against a shopping or starter list.
type ListOp struct {
	HandlerID string
	UserID    string
	ListID    string
	ItemID    string
	// Value is the scalar updated value for field-level handlers; Item is
	// the fully encoded entity for add/remove handlers. At most one is set.
	Value *string
	Item  map[string]any
}

// RecipeOp is one mutation against the account's recipe data.
type RecipeOp struct {
	HandlerID    string
	UserID       string
	RecipeDataID string
	Recipe       map[string]any
	Collection   map[string]any
}

// CalendarOp is one mutation against the meal-planning calendar.
type CalendarOp struct {
	HandlerID  string
	UserID     string
	CalendarID string
	Event      map[string]any
}

func metadata(handlerID, userID string) map[string]any {
	m := map[string]any{
		"operationId": ids.New(),
		"handlerId":   handlerID,
	}
	if userID != "" {
		m["userId"] = userID
	}
	return m
}

// EncodeListOps wraps the batch in a PBListOperationList.
func (e *Encoder) EncodeListOps(batch []ListOp) ([]byte, error) {
	operations := make([]map[string]any, 0, len(batch))
	for _, op := range batch {
		fields := map[string]any{"metadata": metadata(op.HandlerID, op.UserID)}
		if op.ListID != "" {
			fields["listId"] = op.ListID
		}
		if op.ItemID != "" {
			fields["listItemId"] = op.ItemID
		}
		if op.Value != nil {
			fields["updatedValue"] = *op.Value
		}
		if op.Item != nil {
			fields["listItem"] = op.Item
		}
		operations = append(operations, fields)
	}
	return e.reg.Encode(schema.MsgListOperationList, map[string]any{"operations": operations})
}

// EncodeRecipeOps wraps the batch in a PBRecipeOperationList.
func (e *Encoder) EncodeRecipeOps(batch []RecipeOp) ([]byte, error) {
	operations := make([]map[string]any, 0, len(batch))
	for _, op := range batch {
		fields := map[string]any{"metadata": metadata(op.HandlerID, op.UserID)}
		if op.RecipeDataID != "" {
			fields["recipeDataId"] = op.RecipeDataID
		}
		if op.Recipe != nil {
			// Only recipe operations echo the container id in recipeIds;
			// collection operations carry just recipeDataId.
			fields["recipeIds"] = []string{op.RecipeDataID}
			fields["recipe"] = op.Recipe
		}
		if op.Collection != nil {
			fields["recipeCollection"] = op.Collection
		}
		operations = append(operations, fields)
	}
	return e.reg.Encode(schema.MsgRecipeOperationList, map[string]any{"operations": operations})
}

// EncodeCalendarOps wraps the batch in a PBCalendarOperationList.
func (e *Encoder) EncodeCalendarOps(batch []CalendarOp) ([]byte, error) {
	operations := make([]map[string]any, 0, len(batch))
	for _, op := range batch {
		fields := map[string]any{"metadata": metadata(op.HandlerID, op.UserID)}
		if op.CalendarID != "" {
			fields["calendarId"] = op.CalendarID
		}
		if op.Event != nil {
			fields["updatedEvent"] = op.Event
		}
		operations = append(operations, fields)
	}
	return e.reg.Encode(schema.MsgCalendarOperationList, map[string]any{"operations": operations})
}

// Scalar stringifies an updated value for the wire: the scalar fields of
// an operation only carry strings, and the service expects booleans as
// the single characters "y"/"n".
func Scalar(v any) (string, error) {
	switch vv := v.(type) {
	case string:
		return vv, nil
	case bool:
		if vv {
			return "y", nil
		}
		return "n", nil
	case int:
		return strconv.Itoa(vv), nil
	case int64:
		return strconv.FormatInt(vv, 10), nil
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("ops: unsupported scalar %T", v)
	}
}
