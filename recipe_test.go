package anylist

import (
	"context"
	"testing"

	"github.com/lunarhue/anylist/internal/schema"
)

func TestRecipe_SaveEmbedsIngredients(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	c.env.recipeDataID = "rd-1"

	r := newRecipe(RecipeFields{
		Name: "Pancakes",
		Ingredients: []*Ingredient{
			NewIngredient(IngredientFields{Name: "flour", Quantity: "2 cups"}),
			NewIngredient(IngredientFields{Name: "milk", Quantity: "1 cup"}),
			NewIngredient(IngredientFields{Name: "egg", Quantity: "1"}),
		},
		PreparationSteps: []string{"mix", "fry"},
		Rating:           5,
	}, c.env)

	if err := r.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(ft.posts) != 1 || ft.posts[0].endpoint != recipeDataEndpoint {
		t.Fatalf("unexpected posts: %+v", ft.posts)
	}

	batch := decodeRecipeOps(t, ft.posts[0].body)
	if len(batch) != 1 {
		t.Fatalf("want one operation, got %d", len(batch))
	}
	op := batch[0]
	if handler, _ := opMeta(t, op); handler != "save-recipe" {
		t.Fatalf("handler = %q", handler)
	}
	if schema.Str(op, "recipeDataId") != "rd-1" {
		t.Fatalf("recipe data id missing")
	}

	recipe := schema.Msg(op, "recipe")
	if recipe == nil || schema.Str(recipe, "name") != "Pancakes" {
		t.Fatalf("recipe not embedded: %+v", op)
	}
	ingredients := schema.Msgs(recipe, "ingredients")
	if len(ingredients) != 3 {
		t.Fatalf("want 3 ingredients, got %d", len(ingredients))
	}
	for i, want := range []string{"flour", "milk", "egg"} {
		if got := schema.Str(ingredients[i], "name"); got != want {
			t.Fatalf("ingredient %d = %q, want %q (order must survive)", i, got, want)
		}
	}
	if got := schema.Strs(recipe, "preparationSteps"); len(got) != 2 || got[0] != "mix" {
		t.Fatalf("preparation steps: %v", got)
	}
	if got := schema.IntField(recipe, "rating"); got != 5 {
		t.Fatalf("rating = %d", got)
	}
}

func TestRecipe_Delete(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	c := newTestClient(ft)
	c.env.recipeDataID = "rd-1"

	r := newRecipe(RecipeFields{Identifier: "recipe-1", Name: "Pancakes"}, c.env)
	if err := r.Delete(context.Background()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	batch := decodeRecipeOps(t, ft.posts[0].body)
	if handler, _ := opMeta(t, batch[0]); handler != "remove-recipe" {
		t.Fatalf("handler = %q", handler)
	}
}

func TestRecipe_GeneratedDefaults(t *testing.T) {
	t.Parallel()

	c := newTestClient(&fakeTransport{})
	r := newRecipe(RecipeFields{Name: "Toast"}, c.env)

	if !hexID.MatchString(r.Identifier()) {
		t.Fatalf("want generated identifier, got %q", r.Identifier())
	}
	if r.Timestamp == 0 {
		t.Fatalf("timestamp should default to creation time")
	}
}

func TestIngredient_DirtyQueueKeepsDuplicates(t *testing.T) {
	t.Parallel()

	i := NewIngredient(IngredientFields{Name: "flour"})
	i.SetQuantity("1 cup")
	i.SetQuantity("2 cups")
	i.SetNote("sifted")
	if got := len(i.dirty); got != 3 {
		t.Fatalf("queue length should count set calls, want 3, got %d", got)
	}
	if i.Quantity() != "2 cups" {
		t.Fatalf("value should be the last write, got %q", i.Quantity())
	}
}
