package schema

import "sync"

// Message names used on the wire.
const (
	MsgOperationMetadata     = "PBOperationMetadata"
	MsgListItem              = "ListItem"
	MsgShoppingList          = "PBShoppingList"
	MsgStarterList           = "PBStarterList"
	MsgListOperation         = "PBListOperation"
	MsgListOperationList     = "PBListOperationList"
	MsgIngredient            = "PBIngredient"
	MsgRecipe                = "PBRecipe"
	MsgRecipeCollection      = "PBRecipeCollection"
	MsgRecipeOperation       = "PBRecipeOperation"
	MsgRecipeOperationList   = "PBRecipeOperationList"
	MsgCalendarEvent         = "PBCalendarEvent"
	MsgCalendarLabel         = "PBCalendarLabel"
	MsgCalendarOperation     = "PBCalendarOperation"
	MsgCalendarOperationList = "PBCalendarOperationList"
	MsgUserDataResponse      = "PBUserDataResponse"
)

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := New(serviceEnums, serviceMessages)
	if err != nil {
		// The table is static; failing to compile it is a bug, not a
		// runtime condition.
		panic(err)
	}
	return r
})

// Default returns the registry holding the service's message definitions.
func Default() *Registry { return defaultRegistry() }

var serviceEnums = []EnumDef{
	{
		Name: "PBRecipeCollectionSortOrder",
		Values: []EnumValue{
			{Name: "ManualSortOrder", Number: 0},
			{Name: "AlphabeticalSortOrder", Number: 1},
			{Name: "RatingSortOrder", Number: 2},
			{Name: "DateCreatedSortOrder", Number: 3},
		},
	},
}

var serviceMessages = []MessageDef{
	{
		Name: MsgOperationMetadata,
		Fields: []Field{
			{Name: "operationId", Number: 1, Rule: Required, Kind: String},
			{Name: "handlerId", Number: 2, Rule: Required, Kind: String},
			{Name: "userId", Number: 3, Rule: Optional, Kind: String},
		},
	},
	{
		Name: MsgListItem,
		Fields: []Field{
			{Name: "identifier", Number: 1, Rule: Required, Kind: String},
			{Name: "listId", Number: 3, Rule: Optional, Kind: String},
			{Name: "name", Number: 4, Rule: Optional, Kind: String},
			{Name: "details", Number: 5, Rule: Optional, Kind: String},
			{Name: "checked", Number: 6, Rule: Optional, Kind: Bool},
			{Name: "userId", Number: 12, Rule: Optional, Kind: String},
			{Name: "categoryMatchId", Number: 13, Rule: Optional, Kind: String},
			{Name: "manualSortIndex", Number: 17, Rule: Optional, Kind: Int32},
			// 18 is the legacy plain-string quantity slot; the structured
			// quantity message is not modeled here.
			{Name: "quantity", Number: 18, Rule: Optional, Kind: String},
		},
	},
	{
		Name: MsgShoppingList,
		Fields: []Field{
			{Name: "identifier", Number: 1, Rule: Required, Kind: String},
			{Name: "name", Number: 2, Rule: Optional, Kind: String},
			{Name: "items", Number: 3, Rule: Repeated, Kind: Message, TypeName: MsgListItem},
			{Name: "timestamp", Number: 4, Rule: Optional, Kind: Double},
		},
	},
	{
		Name: MsgStarterList,
		Fields: []Field{
			{Name: "identifier", Number: 1, Rule: Required, Kind: String},
			{Name: "name", Number: 2, Rule: Optional, Kind: String},
			{Name: "items", Number: 3, Rule: Repeated, Kind: Message, TypeName: MsgListItem},
			{Name: "listId", Number: 4, Rule: Optional, Kind: String},
		},
	},
	{
		Name: MsgListOperation,
		Fields: []Field{
			{Name: "metadata", Number: 1, Rule: Required, Kind: Message, TypeName: MsgOperationMetadata},
			{Name: "listId", Number: 2, Rule: Optional, Kind: String},
			{Name: "listItemId", Number: 3, Rule: Optional, Kind: String},
			{Name: "updatedValue", Number: 4, Rule: Optional, Kind: String},
			{Name: "originalValue", Number: 5, Rule: Optional, Kind: String},
			{Name: "listItem", Number: 6, Rule: Optional, Kind: Message, TypeName: MsgListItem},
		},
	},
	{
		Name: MsgListOperationList,
		Fields: []Field{
			{Name: "operations", Number: 1, Rule: Repeated, Kind: Message, TypeName: MsgListOperation},
		},
	},
	{
		Name: MsgIngredient,
		Fields: []Field{
			{Name: "rawIngredient", Number: 1, Rule: Optional, Kind: String},
			{Name: "name", Number: 2, Rule: Optional, Kind: String},
			{Name: "quantity", Number: 3, Rule: Optional, Kind: String},
			{Name: "note", Number: 4, Rule: Optional, Kind: String},
		},
	},
	{
		Name: MsgRecipe,
		Fields: []Field{
			{Name: "identifier", Number: 1, Rule: Required, Kind: String},
			{Name: "timestamp", Number: 2, Rule: Optional, Kind: Double},
			{Name: "name", Number: 3, Rule: Optional, Kind: String},
			{Name: "note", Number: 4, Rule: Optional, Kind: String},
			{Name: "sourceName", Number: 5, Rule: Optional, Kind: String},
			{Name: "sourceUrl", Number: 6, Rule: Optional, Kind: String},
			{Name: "ingredients", Number: 7, Rule: Repeated, Kind: Message, TypeName: MsgIngredient},
			{Name: "preparationSteps", Number: 8, Rule: Repeated, Kind: String},
			{Name: "photoIds", Number: 9, Rule: Repeated, Kind: String},
			{Name: "adCampaignId", Number: 10, Rule: Optional, Kind: String},
			{Name: "photoUrls", Number: 11, Rule: Repeated, Kind: String},
			{Name: "scaleFactor", Number: 12, Rule: Optional, Kind: Double},
			{Name: "rating", Number: 13, Rule: Optional, Kind: Int32},
			{Name: "creationTimestamp", Number: 14, Rule: Optional, Kind: Double},
			{Name: "nutritionalInfo", Number: 15, Rule: Optional, Kind: String},
			{Name: "cookTime", Number: 16, Rule: Optional, Kind: Int32},
			{Name: "prepTime", Number: 17, Rule: Optional, Kind: Int32},
			{Name: "servings", Number: 18, Rule: Optional, Kind: String},
			{Name: "paprikaIdentifier", Number: 19, Rule: Optional, Kind: String},
		},
	},
	{
		Name: "PBRecipeCollectionSettings",
		Fields: []Field{
			{Name: "recipesSortOrder", Number: 1, Rule: Optional, Kind: Enum, TypeName: "PBRecipeCollectionSortOrder"},
			{Name: "useReversedSortDirection", Number: 2, Rule: Optional, Kind: Bool},
			{Name: "showOnlyRecipesWithNoCollection", Number: 3, Rule: Optional, Kind: Bool},
		},
	},
	{
		Name: MsgRecipeCollection,
		Fields: []Field{
			{Name: "identifier", Number: 1, Rule: Required, Kind: String},
			{Name: "timestamp", Number: 2, Rule: Optional, Kind: Double},
			{Name: "name", Number: 3, Rule: Optional, Kind: String},
			{Name: "recipeIds", Number: 4, Rule: Repeated, Kind: String},
			{Name: "collectionSettings", Number: 5, Rule: Optional, Kind: Message, TypeName: "PBRecipeCollectionSettings"},
		},
	},
	{
		Name: MsgRecipeOperation,
		Fields: []Field{
			{Name: "metadata", Number: 1, Rule: Required, Kind: Message, TypeName: MsgOperationMetadata},
			{Name: "recipeDataId", Number: 2, Rule: Optional, Kind: String},
			{Name: "recipe", Number: 3, Rule: Optional, Kind: Message, TypeName: MsgRecipe},
			{Name: "recipeCollection", Number: 4, Rule: Optional, Kind: Message, TypeName: MsgRecipeCollection},
			{Name: "recipeIds", Number: 5, Rule: Repeated, Kind: String},
		},
	},
	{
		Name: MsgRecipeOperationList,
		Fields: []Field{
			{Name: "operations", Number: 1, Rule: Repeated, Kind: Message, TypeName: MsgRecipeOperation},
		},
	},
	{
		Name: MsgCalendarEvent,
		Fields: []Field{
			{Name: "identifier", Number: 1, Rule: Required, Kind: String},
			{Name: "logicalTimestamp", Number: 2, Rule: Optional, Kind: Int64},
			{Name: "calendarId", Number: 3, Rule: Optional, Kind: String},
			{Name: "date", Number: 4, Rule: Optional, Kind: String},
			{Name: "title", Number: 5, Rule: Optional, Kind: String},
			{Name: "details", Number: 6, Rule: Optional, Kind: String},
			{Name: "recipeId", Number: 7, Rule: Optional, Kind: String},
			{Name: "labelId", Number: 8, Rule: Optional, Kind: String},
			{Name: "orderAddedSortIndex", Number: 9, Rule: Optional, Kind: Int32},
			{Name: "labelSortIndex", Number: 10, Rule: Optional, Kind: Int32},
			{Name: "recipeScaleFactor", Number: 11, Rule: Optional, Kind: Double},
		},
	},
	{
		Name: MsgCalendarLabel,
		Fields: []Field{
			{Name: "identifier", Number: 1, Rule: Required, Kind: String},
			{Name: "calendarId", Number: 2, Rule: Optional, Kind: String},
			{Name: "hexColor", Number: 3, Rule: Optional, Kind: String},
			{Name: "name", Number: 4, Rule: Optional, Kind: String},
			{Name: "sortIndex", Number: 5, Rule: Optional, Kind: Int32},
			{Name: "logicalTimestamp", Number: 6, Rule: Optional, Kind: Int64},
		},
	},
	{
		Name: MsgCalendarOperation,
		Fields: []Field{
			{Name: "metadata", Number: 1, Rule: Required, Kind: Message, TypeName: MsgOperationMetadata},
			{Name: "calendarId", Number: 2, Rule: Optional, Kind: String},
			{Name: "updatedEvent", Number: 3, Rule: Optional, Kind: Message, TypeName: MsgCalendarEvent},
			{Name: "originalEvent", Number: 4, Rule: Optional, Kind: Message, TypeName: MsgCalendarEvent},
		},
	},
	{
		Name: MsgCalendarOperationList,
		Fields: []Field{
			{Name: "operations", Number: 1, Rule: Repeated, Kind: Message, TypeName: MsgCalendarOperation},
		},
	},
	{
		Name: "PBShoppingListsResponse",
		Fields: []Field{
			{Name: "newLists", Number: 1, Rule: Repeated, Kind: Message, TypeName: MsgShoppingList},
		},
	},
	{
		Name: "PBStarterListResponse",
		Fields: []Field{
			{Name: "starterList", Number: 1, Rule: Optional, Kind: Message, TypeName: MsgStarterList},
		},
	},
	{
		Name: "PBStarterListBatchResponse",
		Fields: []Field{
			{Name: "listResponses", Number: 1, Rule: Repeated, Kind: Message, TypeName: "PBStarterListResponse"},
		},
	},
	{
		Name: "PBStarterListsResponse",
		Fields: []Field{
			{Name: "favoriteItemListsResponse", Number: 1, Rule: Optional, Kind: Message, TypeName: "PBStarterListBatchResponse"},
			{Name: "recentItemListsResponse", Number: 2, Rule: Optional, Kind: Message, TypeName: "PBStarterListBatchResponse"},
		},
	},
	{
		Name: "PBRecipeDataResponse",
		Fields: []Field{
			{Name: "recipeDataId", Number: 1, Rule: Optional, Kind: String},
			{Name: "recipes", Number: 2, Rule: Repeated, Kind: Message, TypeName: MsgRecipe},
			{Name: "recipeCollections", Number: 3, Rule: Repeated, Kind: Message, TypeName: MsgRecipeCollection},
		},
	},
	{
		Name: "PBMealPlanningCalendarResponse",
		Fields: []Field{
			{Name: "calendarId", Number: 1, Rule: Optional, Kind: String},
			{Name: "events", Number: 2, Rule: Repeated, Kind: Message, TypeName: MsgCalendarEvent},
			{Name: "labels", Number: 3, Rule: Repeated, Kind: Message, TypeName: MsgCalendarLabel},
		},
	},
	{
		Name: MsgUserDataResponse,
		Fields: []Field{
			{Name: "shoppingListsResponse", Number: 1, Rule: Optional, Kind: Message, TypeName: "PBShoppingListsResponse"},
			{Name: "starterListsResponse", Number: 2, Rule: Optional, Kind: Message, TypeName: "PBStarterListsResponse"},
			{Name: "recipeDataResponse", Number: 3, Rule: Optional, Kind: Message, TypeName: "PBRecipeDataResponse"},
			{Name: "mealPlanningCalendarResponse", Number: 4, Rule: Optional, Kind: Message, TypeName: "PBMealPlanningCalendarResponse"},
		},
	},
}
