package anylist

import (
	"context"
	"time"

	"github.com/lunarhue/anylist/internal/ids"
	"github.com/lunarhue/anylist/internal/ops"
)

const recipeDataEndpoint = "data/user-recipe-data/update"

// RecipeFields is the construction data for a Recipe. A zero Identifier
// gets a generated one; a zero Timestamp defaults to the creation time.
type RecipeFields struct {
	Identifier        string
	Timestamp         float64 // seconds since epoch
	Name              string
	Note              string
	SourceName        string
	SourceURL         string
	Ingredients       []*Ingredient
	PreparationSteps  []string
	PhotoIDs          []string
	PhotoURLs         []string
	AdCampaignID      string
	ScaleFactor       float64
	Rating            int
	CreationTimestamp float64
	NutritionalInfo   string
	CookTime          int // minutes
	PrepTime          int // minutes
	Servings          string
	PaprikaIdentifier string
}

// Recipe is saved and deleted as a whole entity: mutate the exported
// fields directly, then Save.
type Recipe struct {
	env *env

	identifier string

	Timestamp         float64
	Name              string
	Note              string
	SourceName        string
	SourceURL         string
	Ingredients       []*Ingredient
	PreparationSteps  []string
	PhotoIDs          []string
	PhotoURLs         []string
	AdCampaignID      string
	ScaleFactor       float64
	Rating            int
	CreationTimestamp float64
	NutritionalInfo   string
	CookTime          int
	PrepTime          int
	Servings          string
	PaprikaIdentifier string
}

func newRecipe(f RecipeFields, env *env) *Recipe {
	r := &Recipe{
		env:               env,
		identifier:        f.Identifier,
		Timestamp:         f.Timestamp,
		Name:              f.Name,
		Note:              f.Note,
		SourceName:        f.SourceName,
		SourceURL:         f.SourceURL,
		Ingredients:       f.Ingredients,
		PreparationSteps:  f.PreparationSteps,
		PhotoIDs:          f.PhotoIDs,
		PhotoURLs:         f.PhotoURLs,
		AdCampaignID:      f.AdCampaignID,
		ScaleFactor:       f.ScaleFactor,
		Rating:            f.Rating,
		CreationTimestamp: f.CreationTimestamp,
		NutritionalInfo:   f.NutritionalInfo,
		CookTime:          f.CookTime,
		PrepTime:          f.PrepTime,
		Servings:          f.Servings,
		PaprikaIdentifier: f.PaprikaIdentifier,
	}
	if r.identifier == "" {
		r.identifier = ids.New()
	}
	if r.Timestamp == 0 {
		r.Timestamp = float64(time.Now().UnixNano()) / float64(time.Second)
	}
	return r
}

// Identifier is assigned at construction and never changes.
func (r *Recipe) Identifier() string { return r.identifier }

func (r *Recipe) encodeFields() map[string]any {
	ingredients := make([]map[string]any, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ingredients = append(ingredients, ing.encodeFields())
	}
	fields := map[string]any{
		"identifier":  r.identifier,
		"timestamp":   r.Timestamp,
		"ingredients": ingredients,
	}
	if r.Name != "" {
		fields["name"] = r.Name
	}
	if r.Note != "" {
		fields["note"] = r.Note
	}
	if r.SourceName != "" {
		fields["sourceName"] = r.SourceName
	}
	if r.SourceURL != "" {
		fields["sourceUrl"] = r.SourceURL
	}
	if len(r.PreparationSteps) > 0 {
		fields["preparationSteps"] = r.PreparationSteps
	}
	if len(r.PhotoIDs) > 0 {
		fields["photoIds"] = r.PhotoIDs
	}
	if len(r.PhotoURLs) > 0 {
		fields["photoUrls"] = r.PhotoURLs
	}
	if r.AdCampaignID != "" {
		fields["adCampaignId"] = r.AdCampaignID
	}
	if r.ScaleFactor != 0 {
		fields["scaleFactor"] = r.ScaleFactor
	}
	if r.Rating != 0 {
		fields["rating"] = r.Rating
	}
	if r.CreationTimestamp != 0 {
		fields["creationTimestamp"] = r.CreationTimestamp
	}
	if r.NutritionalInfo != "" {
		fields["nutritionalInfo"] = r.NutritionalInfo
	}
	if r.CookTime != 0 {
		fields["cookTime"] = r.CookTime
	}
	if r.PrepTime != 0 {
		fields["prepTime"] = r.PrepTime
	}
	if r.Servings != "" {
		fields["servings"] = r.Servings
	}
	if r.PaprikaIdentifier != "" {
		fields["paprikaIdentifier"] = r.PaprikaIdentifier
	}
	return fields
}

func (r *Recipe) performOperation(ctx context.Context, handlerID string) error {
	recipeDataID, _ := r.env.containerIDs()
	data, err := r.env.enc.EncodeRecipeOps([]ops.RecipeOp{{
		HandlerID:    handlerID,
		UserID:       r.env.userID,
		RecipeDataID: recipeDataID,
		Recipe:       r.encodeFields(),
	}})
	if err != nil {
		return err
	}
	return r.env.transport.PostOperations(ctx, recipeDataEndpoint, data)
}

// Save transmits the whole recipe, ingredients embedded.
func (r *Recipe) Save(ctx context.Context) error {
	return r.performOperation(ctx, "save-recipe")
}

// Delete removes the recipe from the account.
func (r *Recipe) Delete(ctx context.Context) error {
	return r.performOperation(ctx, "remove-recipe")
}
