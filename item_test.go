package anylist

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/lunarhue/anylist/internal/schema"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestItem_Defaults(t *testing.T) {
	t.Parallel()

	c := newTestClient(&fakeTransport{})
	it := c.NewItem(ItemFields{Name: "Milk"})

	if !hexID.MatchString(it.Identifier()) {
		t.Fatalf("want generated 32-char hex identifier, got %q", it.Identifier())
	}
	if it.CategoryMatchID() != "other" {
		t.Fatalf("want default category, got %q", it.CategoryMatchID())
	}
	if _, ok := it.ManualSortIndex(); ok {
		t.Fatalf("item should have no sort index by default")
	}
}

func TestItem_ImmutableFields(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	it := c.NewItem(ItemFields{Identifier: "item-1", UserID: "u-1"})

	var verr *ValidationError
	if err := it.SetIdentifier("other"); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError on identifier rewrite, got %v", err)
	}
	if err := it.SetIdentifier("other"); !errors.Is(err, ErrImmutableField) {
		t.Fatalf("identifier rewrite should match ErrImmutableField, got %v", err)
	}
	if err := it.SetIdentifier("item-1"); err == nil {
		t.Fatalf("identifier rewrite must fail even with the same value")
	}
	if err := it.SetUserID("u-2"); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError on user id rewrite, got %v", err)
	}
	if len(ft.posts) != 0 {
		t.Fatalf("validation must reject before any network call, saw %d posts", len(ft.posts))
	}
}

func TestItem_ListIDWriteOnce(t *testing.T) {
	t.Parallel()

	c := newTestClient(&fakeTransport{})
	it := c.NewItem(ItemFields{Name: "Milk"})

	if err := it.SetListID("list-1"); err != nil {
		t.Fatalf("first SetListID: %v", err)
	}
	if err := it.SetListID("list-1"); err == nil {
		t.Fatalf("second SetListID must fail even with the same value")
	}
	if err := it.SetListID("list-2"); err == nil {
		t.Fatalf("items cannot move between lists")
	}
	if it.ListID() != "list-1" {
		t.Fatalf("list id changed: %q", it.ListID())
	}
}

func TestItem_DirtyQueueKeepsDuplicates(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	it := c.NewItem(ItemFields{Identifier: "item-1", ListID: "list-1"})

	it.SetName("Milk")
	it.SetName("Whole Milk")
	it.SetQuantity("2")
	if got := len(it.dirty); got != 3 {
		t.Fatalf("queue length should count set calls, want 3, got %d", got)
	}

	if err := it.Save(context.Background(), false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(ft.posts) != 1 {
		t.Fatalf("want one batched POST, got %d", len(ft.posts))
	}
	batch := decodeListOps(t, ft.posts[0].body)
	if len(batch) != 3 {
		t.Fatalf("want 3 operations, got %d", len(batch))
	}
	for i, wantHandler := range []string{"set-list-item-name", "set-list-item-name", "set-list-item-quantity"} {
		handler, opID := opMeta(t, batch[i])
		if handler != wantHandler {
			t.Fatalf("op %d handler = %q, want %q", i, handler, wantHandler)
		}
		if !hexID.MatchString(opID) {
			t.Fatalf("op %d has no generated operation id: %q", i, opID)
		}
	}
	// Both name operations carry the final value; the server converges by
	// applying them in order.
	if got := schema.Str(batch[0], "updatedValue"); got != "Whole Milk" {
		t.Fatalf("first name op value = %q", got)
	}
	if got := schema.Str(batch[1], "updatedValue"); got != "Whole Milk" {
		t.Fatalf("second name op value = %q", got)
	}

	if len(it.dirty) != 0 {
		t.Fatalf("queue must clear after an accepted batch")
	}
}

// Scenario: add an item to a list, check it off, save. Exactly one POST
// with a single checked operation carrying "y".
func TestItem_SaveCheckedSendsY(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	list := &List{env: c.env, identifier: "list-1", name: "Groceries"}
	it := c.NewItem(ItemFields{Name: "Milk", Quantity: "1 gallon"})
	ctx := context.Background()

	if err := list.AddItem(ctx, it, false); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	ft.posts = nil

	it.SetChecked(true)
	if err := it.Save(ctx, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(ft.posts) != 1 {
		t.Fatalf("want exactly one POST, got %d", len(ft.posts))
	}
	if ft.posts[0].endpoint != shoppingListsEndpoint {
		t.Fatalf("endpoint = %q, want %q", ft.posts[0].endpoint, shoppingListsEndpoint)
	}
	batch := decodeListOps(t, ft.posts[0].body)
	if len(batch) != 1 {
		t.Fatalf("want one operation, got %d", len(batch))
	}
	op := batch[0]
	if handler, _ := opMeta(t, op); handler != "set-list-item-checked" {
		t.Fatalf("handler = %q", handler)
	}
	if got := schema.Str(op, "updatedValue"); got != "y" {
		t.Fatalf("updated value = %q, want \"y\"", got)
	}
	if schema.Str(op, "listId") != "list-1" || schema.Str(op, "listItemId") != it.Identifier() {
		t.Fatalf("operation targets wrong ids: %+v", op)
	}
}

func TestItem_SaveFavoriteUsesStarterEndpoint(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	it := c.NewItem(ItemFields{Identifier: "item-1", ListID: "fav-1", Name: "Coffee"})

	it.SetQuantity("1 bag")
	if err := it.Save(context.Background(), true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ft.posts[0].endpoint != starterListsEndpoint {
		t.Fatalf("endpoint = %q, want %q", ft.posts[0].endpoint, starterListsEndpoint)
	}
}

func TestItem_SaveFailureKeepsQueue(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{postErr: errors.New("boom")}
	c := newTestClient(ft)
	it := c.NewItem(ItemFields{Identifier: "item-1", ListID: "list-1"})

	it.SetDetails("organic")
	if err := it.Save(context.Background(), false); err == nil {
		t.Fatalf("want transport error")
	}
	if len(it.dirty) != 1 {
		t.Fatalf("queue must survive a failed save")
	}

	ft.postErr = nil
	if err := it.Save(context.Background(), false); err != nil {
		t.Fatalf("retried Save: %v", err)
	}
	batch := decodeListOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "set-list-item-details" {
		t.Fatalf("retry lost the queued field: %q", handler)
	}
	if len(it.dirty) != 0 {
		t.Fatalf("queue must clear after the retry is accepted")
	}
}

func TestItem_SaveEmptyQueueSkipsNetwork(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	it := c.NewItem(ItemFields{Identifier: "item-1", ListID: "list-1"})

	if err := it.Save(context.Background(), false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(ft.posts) != 0 {
		t.Fatalf("nothing queued, want no POST, got %d", len(ft.posts))
	}
}

func TestItem_SortIndexScalar(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	it := c.NewItem(ItemFields{Identifier: "item-1", ListID: "list-1"})

	it.SetManualSortIndex(7)
	if err := it.Save(context.Background(), false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	batch := decodeListOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "set-list-item-sort-order" {
		t.Fatalf("handler = %q", handler)
	}
	if got := schema.Str(batch[0], "updatedValue"); got != "7" {
		t.Fatalf("numeric values travel as strings, got %q", got)
	}
}
