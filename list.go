package anylist

import (
	"context"

	"github.com/lunarhue/anylist/internal/ops"
)

const (
	shoppingListsEndpoint = "data/shopping-lists/update"
	starterListsEndpoint  = "data/starter-lists/update"
)

// listUpdateEndpoint selects the update endpoint: starter lists hold the
// favorites and recent items, shopping lists everything else.
func listUpdateEndpoint(favorite bool) string {
	if favorite {
		return starterListsEndpoint
	}
	return shoppingListsEndpoint
}

// List owns an ordered collection of Items. Membership is decided by the
// list: an item joins at most one list for its lifetime.
type List struct {
	env *env

	identifier string
	// parentID is set on starter ("favorites") sub-lists and names the
	// shopping list they belong to.
	parentID string
	name     string
	items    []*Item
}

func (l *List) Identifier() string { return l.identifier }
func (l *List) ParentID() string   { return l.parentID }
func (l *List) Name() string       { return l.name }

// Items returns the list's items in order.
func (l *List) Items() []*Item { return l.items }

// ItemByID finds an item by identifier, or nil.
func (l *List) ItemByID(identifier string) *Item {
	for _, it := range l.items {
		if it.identifier == identifier {
			return it
		}
	}
	return nil
}

// ItemByName finds an item by name, or nil.
func (l *List) ItemByName(name string) *Item {
	for _, it := range l.items {
		if it.name == name {
			return it
		}
	}
	return nil
}

// AddItem attaches the item to this list, transmits the add operation,
// and appends to the local copy. An item that already belongs to a list
// is rejected before any network activity.
func (l *List) AddItem(ctx context.Context, item *Item, favorite bool) error {
	if err := item.SetListID(l.identifier); err != nil {
		return err
	}

	handler := "add-shopping-list-item"
	if favorite {
		handler = "add-item"
	}
	data, err := l.env.enc.EncodeListOps([]ops.ListOp{{
		HandlerID: handler,
		UserID:    l.env.userID,
		ListID:    l.identifier,
		ItemID:    item.identifier,
		Item:      item.encodeFields(),
	}})
	if err != nil {
		return err
	}
	if err := l.env.transport.PostOperations(ctx, listUpdateEndpoint(favorite), data); err != nil {
		return err
	}
	l.items = append(l.items, item)
	return nil
}

// RemoveItem transmits the remove operation and drops the item from the
// local copy.
func (l *List) RemoveItem(ctx context.Context, item *Item, favorite bool) error {
	handler := "remove-shopping-list-item"
	if favorite {
		handler = "remove-item"
	}
	data, err := l.env.enc.EncodeListOps([]ops.ListOp{{
		HandlerID: handler,
		UserID:    l.env.userID,
		ListID:    l.identifier,
		ItemID:    item.identifier,
		Item:      item.encodeFields(),
	}})
	if err != nil {
		return err
	}
	if err := l.env.transport.PostOperations(ctx, listUpdateEndpoint(favorite), data); err != nil {
		return err
	}
	kept := l.items[:0]
	for _, it := range l.items {
		if it.identifier != item.identifier {
			kept = append(kept, it)
		}
	}
	l.items = kept
	return nil
}

// UncheckAll transmits a single whole-list uncheck operation.
func (l *List) UncheckAll(ctx context.Context) error {
	data, err := l.env.enc.EncodeListOps([]ops.ListOp{{
		HandlerID: "uncheck-all",
		UserID:    l.env.userID,
		ListID:    l.identifier,
	}})
	if err != nil {
		return err
	}
	return l.env.transport.PostOperations(ctx, shoppingListsEndpoint, data)
}
