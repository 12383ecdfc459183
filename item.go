package anylist

import (
	"context"

	"github.com/lunarhue/anylist/internal/errs"
	"github.com/lunarhue/anylist/internal/ids"
	"github.com/lunarhue/anylist/internal/ops"
)

// itemHandlers maps a mutable Item field to the server-side handler that
// applies its new value.
var itemHandlers = map[string]string{
	"name":            "set-list-item-name",
	"quantity":        "set-list-item-quantity",
	"details":         "set-list-item-details",
	"checked":         "set-list-item-checked",
	"categoryMatchId": "set-list-item-category-match-id",
	"manualSortIndex": "set-list-item-sort-order",
}

// ItemFields is the construction data for an Item. A zero Identifier gets
// a generated one; an empty CategoryMatchID defaults to "other".
type ItemFields struct {
	ListID          string
	Identifier      string
	Name            string
	Details         string
	Quantity        string
	Checked         bool
	ManualSortIndex *int
	UserID          string
	CategoryMatchID string
}

// Item is one entry of a shopping or starter list. Setters apply the new
// value locally and queue the field for the next Save; the queue keeps
// duplicates, so setting the same field twice sends two operations that
// converge to the last value server-side.
//
// An Item is not safe for concurrent mutation: serialize Save calls on
// the same instance.
type Item struct {
	env *env

	listID          string
	identifier      string
	name            string
	details         string
	quantity        string
	checked         bool
	manualSortIndex int
	hasSortIndex    bool
	userID          string
	categoryMatchID string

	dirty []string
}

func newItem(f ItemFields, env *env) *Item {
	it := &Item{
		env:             env,
		listID:          f.ListID,
		identifier:      f.Identifier,
		name:            f.Name,
		details:         f.Details,
		quantity:        f.Quantity,
		checked:         f.Checked,
		userID:          f.UserID,
		categoryMatchID: f.CategoryMatchID,
	}
	if it.identifier == "" {
		it.identifier = ids.New()
	}
	if it.categoryMatchID == "" {
		it.categoryMatchID = "other"
	}
	if f.ManualSortIndex != nil {
		it.manualSortIndex = *f.ManualSortIndex
		it.hasSortIndex = true
	}
	return it
}

// Identifier is assigned at construction and never changes.
func (it *Item) Identifier() string { return it.identifier }

// SetIdentifier always fails: an item id cannot be updated.
func (it *Item) SetIdentifier(string) error {
	return &errs.ValidationError{Field: "identifier", Reason: "cannot update an item id", Err: errs.ErrImmutableField}
}

// UserID is fixed at creation.
func (it *Item) UserID() string { return it.userID }

// SetUserID always fails: the owning user cannot change after creation.
func (it *Item) SetUserID(string) error {
	return &errs.ValidationError{Field: "userId", Reason: "cannot set user id of an item after creation", Err: errs.ErrImmutableField}
}

// ListID reports the owning list ("" while unattached).
func (it *Item) ListID() string { return it.listID }

// SetListID attaches the item to a list. It may be called exactly once:
// items cannot move between lists, and a second call fails even with the
// same value.
func (it *Item) SetListID(id string) error {
	if it.listID != "" {
		return &errs.ValidationError{Field: "listId", Reason: "cannot move items between lists", Err: errs.ErrImmutableField}
	}
	it.listID = id
	return nil
}

func (it *Item) Name() string { return it.name }

func (it *Item) SetName(n string) {
	it.name = n
	it.dirty = append(it.dirty, "name")
}

func (it *Item) Details() string { return it.details }

func (it *Item) SetDetails(d string) {
	it.details = d
	it.dirty = append(it.dirty, "details")
}

// Quantity is free-form ("1 gallon", "6").
func (it *Item) Quantity() string { return it.quantity }

func (it *Item) SetQuantity(q string) {
	it.quantity = q
	it.dirty = append(it.dirty, "quantity")
}

func (it *Item) Checked() bool { return it.checked }

func (it *Item) SetChecked(c bool) {
	it.checked = c
	it.dirty = append(it.dirty, "checked")
}

func (it *Item) CategoryMatchID() string { return it.categoryMatchID }

func (it *Item) SetCategoryMatchID(id string) {
	it.categoryMatchID = id
	it.dirty = append(it.dirty, "categoryMatchId")
}

// ManualSortIndex reports the manual ordering position; ok is false when
// the item has none.
func (it *Item) ManualSortIndex() (index int, ok bool) {
	return it.manualSortIndex, it.hasSortIndex
}

func (it *Item) SetManualSortIndex(i int) {
	it.manualSortIndex = i
	it.hasSortIndex = true
	it.dirty = append(it.dirty, "manualSortIndex")
}

// Save transmits one operation per queued field change, all in a single
// batch. favorite selects the starter-lists endpoint for items on the
// "favorites" list; the caller supplies it, it is not auto-detected. On
// success the queue is cleared; on failure it is left intact so the call
// can be retried.
func (it *Item) Save(ctx context.Context, favorite bool) error {
	if len(it.dirty) == 0 {
		return nil
	}
	batch := make([]ops.ListOp, 0, len(it.dirty))
	for _, field := range it.dirty {
		value, err := ops.Scalar(it.fieldValue(field))
		if err != nil {
			return err
		}
		batch = append(batch, ops.ListOp{
			HandlerID: itemHandlers[field],
			UserID:    it.env.userID,
			ListID:    it.listID,
			ItemID:    it.identifier,
			Value:     &value,
		})
	}
	data, err := it.env.enc.EncodeListOps(batch)
	if err != nil {
		return err
	}
	if err := it.env.transport.PostOperations(ctx, listUpdateEndpoint(favorite), data); err != nil {
		return err
	}
	it.dirty = it.dirty[:0]
	return nil
}

func (it *Item) fieldValue(field string) any {
	switch field {
	case "name":
		return it.name
	case "quantity":
		return it.quantity
	case "details":
		return it.details
	case "checked":
		return it.checked
	case "categoryMatchId":
		return it.categoryMatchID
	case "manualSortIndex":
		return it.manualSortIndex
	default:
		return ""
	}
}

// encodeFields returns the item's wire form for add/remove operations.
func (it *Item) encodeFields() map[string]any {
	fields := map[string]any{
		"identifier":      it.identifier,
		"checked":         it.checked,
		"categoryMatchId": it.categoryMatchID,
	}
	if it.listID != "" {
		fields["listId"] = it.listID
	}
	if it.name != "" {
		fields["name"] = it.name
	}
	if it.details != "" {
		fields["details"] = it.details
	}
	if it.quantity != "" {
		fields["quantity"] = it.quantity
	}
	if it.userID != "" {
		fields["userId"] = it.userID
	}
	if it.hasSortIndex {
		fields["manualSortIndex"] = it.manualSortIndex
	}
	return fields
}
