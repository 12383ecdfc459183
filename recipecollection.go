package anylist

import (
	"context"
	"slices"
	"time"

	"github.com/lunarhue/anylist/internal/ids"
	"github.com/lunarhue/anylist/internal/ops"
)

// RecipeCollectionFields is the construction data for a RecipeCollection.
type RecipeCollectionFields struct {
	Identifier string
	Name       string
	RecipeIDs  []string
}

// RecipeCollection is a named grouping of recipe identifiers.
type RecipeCollection struct {
	env *env

	identifier string
	timestamp  float64
	name       string
	recipeIDs  []string
}

func newRecipeCollection(f RecipeCollectionFields, env *env) *RecipeCollection {
	c := &RecipeCollection{
		env:        env,
		identifier: f.Identifier,
		timestamp:  float64(time.Now().UnixNano()) / float64(time.Second),
		name:       f.Name,
		recipeIDs:  slices.Clone(f.RecipeIDs),
	}
	if c.identifier == "" {
		c.identifier = ids.New()
	}
	return c
}

func (c *RecipeCollection) Identifier() string { return c.identifier }
func (c *RecipeCollection) Name() string       { return c.name }

// RecipeIDs returns the member recipe identifiers. The slice is a copy.
func (c *RecipeCollection) RecipeIDs() []string { return slices.Clone(c.recipeIDs) }

func (c *RecipeCollection) encodeFields() map[string]any {
	fields := map[string]any{
		"identifier": c.identifier,
		"timestamp":  c.timestamp,
		"recipeIds":  c.recipeIDs,
		// The settings message rides along empty; the client never edits it.
		"collectionSettings": map[string]any{},
	}
	if c.name != "" {
		fields["name"] = c.name
	}
	return fields
}

func (c *RecipeCollection) performOperation(ctx context.Context, handlerID string) error {
	recipeDataID, _ := c.env.containerIDs()
	data, err := c.env.enc.EncodeRecipeOps([]ops.RecipeOp{{
		HandlerID:    handlerID,
		UserID:       c.env.userID,
		RecipeDataID: recipeDataID,
		Collection:   c.encodeFields(),
	}})
	if err != nil {
		return err
	}
	return c.env.transport.PostOperations(ctx, recipeDataEndpoint, data)
}

// Save creates the collection on the account.
func (c *RecipeCollection) Save(ctx context.Context) error {
	return c.performOperation(ctx, "new-recipe-collection")
}

// Delete removes the collection. Member recipes are untouched.
func (c *RecipeCollection) Delete(ctx context.Context) error {
	return c.performOperation(ctx, "remove-recipe-collection")
}

// AddRecipe adds a recipe to the collection and transmits the updated
// membership. An empty or already present id is a no-op.
func (c *RecipeCollection) AddRecipe(ctx context.Context, recipeID string) error {
	if recipeID == "" || slices.Contains(c.recipeIDs, recipeID) {
		return nil
	}
	c.recipeIDs = append(c.recipeIDs, recipeID)
	if err := c.performOperation(ctx, "add-recipes-to-collection"); err != nil {
		c.recipeIDs = c.recipeIDs[:len(c.recipeIDs)-1]
		return err
	}
	return nil
}

// RemoveRecipe removes a recipe from the collection and transmits the
// updated membership. An id that is not a member is a no-op.
func (c *RecipeCollection) RemoveRecipe(ctx context.Context, recipeID string) error {
	pos := slices.Index(c.recipeIDs, recipeID)
	if pos < 0 {
		return nil
	}
	if err := c.performOperation(ctx, "remove-recipes-from-collection"); err != nil {
		return err
	}
	c.recipeIDs = slices.Delete(c.recipeIDs, pos, pos+1)
	return nil
}
