package anylist

import (
	"time"

	"github.com/lunarhue/anylist/internal/schema"
)

// install replaces every cached collection with the decoded snapshot and
// captures the container ids future operations need.
func (c *Client) install(decoded map[string]any) {
	lists := make([]*List, 0)
	for _, m := range schema.Msgs(schema.Msg(decoded, "shoppingListsResponse"), "newLists") {
		lists = append(lists, c.decodeList(m))
	}

	favorites := make([]*List, 0)
	recents := map[string][]*Item{}
	starter := schema.Msg(decoded, "starterListsResponse")
	for _, m := range schema.Msgs(schema.Msg(starter, "favoriteItemListsResponse"), "listResponses") {
		if sl := schema.Msg(m, "starterList"); sl != nil {
			favorites = append(favorites, c.decodeStarterList(sl))
		}
	}
	for _, m := range schema.Msgs(schema.Msg(starter, "recentItemListsResponse"), "listResponses") {
		sl := schema.Msg(m, "starterList")
		if sl == nil {
			continue
		}
		items := make([]*Item, 0)
		for _, im := range schema.Msgs(sl, "items") {
			items = append(items, c.decodeItem(im))
		}
		recents[schema.Str(sl, "listId")] = items
	}

	recipeData := schema.Msg(decoded, "recipeDataResponse")
	recipes := make([]*Recipe, 0)
	for _, m := range schema.Msgs(recipeData, "recipes") {
		recipes = append(recipes, c.decodeRecipe(m))
	}
	colls := make([]*RecipeCollection, 0)
	for _, m := range schema.Msgs(recipeData, "recipeCollections") {
		colls = append(colls, c.decodeCollection(m))
	}

	calendar := schema.Msg(decoded, "mealPlanningCalendarResponse")
	labels := make([]*CalendarEventLabel, 0)
	for _, m := range schema.Msgs(calendar, "labels") {
		labels = append(labels, decodeLabel(m))
	}
	events := make([]*CalendarEvent, 0)
	for _, m := range schema.Msgs(calendar, "events") {
		events = append(events, c.decodeEvent(m))
	}

	c.env.setSnapshot(schema.Str(recipeData, "recipeDataId"), schema.Str(calendar, "calendarId"), recipes, labels)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	c.lists = lists
	c.favorites = favorites
	c.recents = recents
	c.recipes = recipes
	c.colls = colls
	c.events = events
	c.labels = labels
}

func (c *Client) decodeList(m map[string]any) *List {
	l := &List{
		env:        c.env,
		identifier: schema.Str(m, "identifier"),
		name:       schema.Str(m, "name"),
	}
	for _, im := range schema.Msgs(m, "items") {
		l.items = append(l.items, c.decodeItem(im))
	}
	return l
}

// decodeStarterList differs from decodeList in one field: starter lists
// carry the owning shopping list's id as listId, surfaced as ParentID.
func (c *Client) decodeStarterList(m map[string]any) *List {
	l := c.decodeList(m)
	l.parentID = schema.Str(m, "listId")
	return l
}

func (c *Client) decodeItem(m map[string]any) *Item {
	f := ItemFields{
		ListID:          schema.Str(m, "listId"),
		Identifier:      schema.Str(m, "identifier"),
		Name:            schema.Str(m, "name"),
		Details:         schema.Str(m, "details"),
		Quantity:        schema.Str(m, "quantity"),
		Checked:         schema.BoolField(m, "checked"),
		UserID:          schema.Str(m, "userId"),
		CategoryMatchID: schema.Str(m, "categoryMatchId"),
	}
	if _, ok := m["manualSortIndex"]; ok {
		idx := int(schema.IntField(m, "manualSortIndex"))
		f.ManualSortIndex = &idx
	}
	return newItem(f, c.env)
}

func (c *Client) decodeRecipe(m map[string]any) *Recipe {
	ingredients := make([]*Ingredient, 0)
	for _, im := range schema.Msgs(m, "ingredients") {
		ingredients = append(ingredients, decodeIngredient(im))
	}
	return newRecipe(RecipeFields{
		Identifier:        schema.Str(m, "identifier"),
		Timestamp:         schema.FloatField(m, "timestamp"),
		Name:              schema.Str(m, "name"),
		Note:              schema.Str(m, "note"),
		SourceName:        schema.Str(m, "sourceName"),
		SourceURL:         schema.Str(m, "sourceUrl"),
		Ingredients:       ingredients,
		PreparationSteps:  schema.Strs(m, "preparationSteps"),
		PhotoIDs:          schema.Strs(m, "photoIds"),
		PhotoURLs:         schema.Strs(m, "photoUrls"),
		AdCampaignID:      schema.Str(m, "adCampaignId"),
		ScaleFactor:       schema.FloatField(m, "scaleFactor"),
		Rating:            int(schema.IntField(m, "rating")),
		CreationTimestamp: schema.FloatField(m, "creationTimestamp"),
		NutritionalInfo:   schema.Str(m, "nutritionalInfo"),
		CookTime:          int(schema.IntField(m, "cookTime")),
		PrepTime:          int(schema.IntField(m, "prepTime")),
		Servings:          schema.Str(m, "servings"),
		PaprikaIdentifier: schema.Str(m, "paprikaIdentifier"),
	}, c.env)
}

func decodeIngredient(m map[string]any) *Ingredient {
	return NewIngredient(IngredientFields{
		RawIngredient: schema.Str(m, "rawIngredient"),
		Name:          schema.Str(m, "name"),
		Quantity:      schema.Str(m, "quantity"),
		Note:          schema.Str(m, "note"),
	})
}

func (c *Client) decodeCollection(m map[string]any) *RecipeCollection {
	return &RecipeCollection{
		env:        c.env,
		identifier: schema.Str(m, "identifier"),
		timestamp:  schema.FloatField(m, "timestamp"),
		name:       schema.Str(m, "name"),
		recipeIDs:  schema.Strs(m, "recipeIds"),
	}
}

func (c *Client) decodeEvent(m map[string]any) *CalendarEvent {
	date, err := time.Parse(eventDateLayout, schema.Str(m, "date"))
	if err != nil {
		date = time.Time{}
	}
	e := newCalendarEvent(CalendarEventFields{
		Identifier:          schema.Str(m, "identifier"),
		Title:               schema.Str(m, "title"),
		Details:             schema.Str(m, "details"),
		LabelID:             schema.Str(m, "labelId"),
		LogicalTimestamp:    schema.IntField(m, "logicalTimestamp"),
		OrderAddedSortIndex: int(schema.IntField(m, "orderAddedSortIndex")),
		RecipeID:            schema.Str(m, "recipeId"),
		RecipeScaleFactor:   schema.FloatField(m, "recipeScaleFactor"),
	}, c.env)
	e.Date = date
	return e
}

func decodeLabel(m map[string]any) *CalendarEventLabel {
	return &CalendarEventLabel{
		identifier:       schema.Str(m, "identifier"),
		calendarID:       schema.Str(m, "calendarId"),
		hexColor:         schema.Str(m, "hexColor"),
		name:             schema.Str(m, "name"),
		sortIndex:        int(schema.IntField(m, "sortIndex")),
		logicalTimestamp: schema.IntField(m, "logicalTimestamp"),
	}
}
