package anylist

import (
	"context"
	"errors"
	"testing"

	"github.com/lunarhue/anylist/internal/schema"
)

func TestList_AddItem(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	list := &List{env: c.env, identifier: "list-1", name: "Groceries"}
	it := c.NewItem(ItemFields{Name: "Milk"})

	if err := list.AddItem(context.Background(), it, false); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if it.ListID() != "list-1" {
		t.Fatalf("item not attached, list id %q", it.ListID())
	}
	if list.ItemByID(it.Identifier()) != it {
		t.Fatalf("item not appended locally")
	}

	if len(ft.posts) != 1 || ft.posts[0].endpoint != shoppingListsEndpoint {
		t.Fatalf("unexpected posts: %+v", ft.posts)
	}
	batch := decodeListOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "add-shopping-list-item" {
		t.Fatalf("handler = %q", handler)
	}
	embedded := schema.Msg(batch[0], "listItem")
	if embedded == nil || schema.Str(embedded, "name") != "Milk" {
		t.Fatalf("operation must embed the full item: %+v", batch[0])
	}
	if schema.Str(embedded, "listId") != "list-1" {
		t.Fatalf("embedded item missing list id")
	}
}

func TestList_AddItemFavorite(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	list := &List{env: c.env, identifier: "fav-1", parentID: "list-1"}
	it := c.NewItem(ItemFields{Name: "Coffee"})

	if err := list.AddItem(context.Background(), it, true); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if ft.posts[0].endpoint != starterListsEndpoint {
		t.Fatalf("endpoint = %q", ft.posts[0].endpoint)
	}
	batch := decodeListOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "add-item" {
		t.Fatalf("handler = %q", handler)
	}
}

func TestList_AddItemRejectsAttachedItem(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	list := &List{env: c.env, identifier: "list-2"}
	it := c.NewItem(ItemFields{Name: "Milk", ListID: "list-1"})

	var verr *ValidationError
	if err := list.AddItem(context.Background(), it, false); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for an item that already has a list, got %v", err)
	}
	if len(ft.posts) != 0 {
		t.Fatalf("rejection must happen before any network call")
	}
	if list.ItemByID(it.Identifier()) != nil {
		t.Fatalf("rejected item must not join the list")
	}
}

func TestList_RemoveItem(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	it := c.NewItem(ItemFields{Identifier: "item-1", ListID: "list-1", Name: "Milk"})
	list := &List{env: c.env, identifier: "list-1", items: []*Item{it}}

	if err := list.RemoveItem(context.Background(), it, false); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if list.ItemByID("item-1") != nil {
		t.Fatalf("item still present locally")
	}
	batch := decodeListOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "remove-shopping-list-item" {
		t.Fatalf("handler = %q", handler)
	}
	if schema.Str(batch[0], "listItemId") != "item-1" {
		t.Fatalf("operation targets wrong item")
	}
}

func TestList_RemoveItemFavorite(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	it := c.NewItem(ItemFields{Identifier: "item-1", ListID: "fav-1"})
	list := &List{env: c.env, identifier: "fav-1", items: []*Item{it}}

	if err := list.RemoveItem(context.Background(), it, true); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if ft.posts[0].endpoint != starterListsEndpoint {
		t.Fatalf("endpoint = %q", ft.posts[0].endpoint)
	}
	batch := decodeListOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "remove-item" {
		t.Fatalf("handler = %q", handler)
	}
}

func TestList_RemoveItemFailureKeepsMembership(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{postErr: errors.New("boom")}
	c := newTestClient(ft)
	it := c.NewItem(ItemFields{Identifier: "item-1", ListID: "list-1"})
	list := &List{env: c.env, identifier: "list-1", items: []*Item{it}}

	if err := list.RemoveItem(context.Background(), it, false); err == nil {
		t.Fatalf("want transport error")
	}
	if list.ItemByID("item-1") == nil {
		t.Fatalf("failed remove must not drop the item locally")
	}
}

func TestList_UncheckAll(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	list := &List{env: c.env, identifier: "list-1"}

	if err := list.UncheckAll(context.Background()); err != nil {
		t.Fatalf("UncheckAll: %v", err)
	}
	if ft.posts[0].endpoint != shoppingListsEndpoint {
		t.Fatalf("endpoint = %q", ft.posts[0].endpoint)
	}
	batch := decodeListOps(t, ft.posts[0].body)
	if len(batch) != 1 {
		t.Fatalf("want one whole-list operation, got %d", len(batch))
	}
	if handler, _ := opMeta(t, batch[0]); handler != "uncheck-all" {
		t.Fatalf("handler = %q", handler)
	}
	if schema.Str(batch[0], "listId") != "list-1" {
		t.Fatalf("operation targets wrong list")
	}
}
