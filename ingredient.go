package anylist

// IngredientFields is the construction data for an Ingredient.
type IngredientFields struct {
	RawIngredient string
	Name          string
	Quantity      string
	Note          string
}

// Ingredient belongs to exactly one Recipe and has no server identity of
// its own: it travels embedded in the recipe's encoded form. Setters
// queue the field name like Item setters do, duplicates included.
type Ingredient struct {
	rawIngredient string
	name          string
	quantity      string
	note          string

	dirty []string
}

// NewIngredient builds a standalone ingredient for attaching to a Recipe.
func NewIngredient(f IngredientFields) *Ingredient {
	return &Ingredient{
		rawIngredient: f.RawIngredient,
		name:          f.Name,
		quantity:      f.Quantity,
		note:          f.Note,
	}
}

func (i *Ingredient) RawIngredient() string { return i.rawIngredient }

func (i *Ingredient) SetRawIngredient(v string) {
	i.rawIngredient = v
	i.dirty = append(i.dirty, "rawIngredient")
}

func (i *Ingredient) Name() string { return i.name }

func (i *Ingredient) SetName(v string) {
	i.name = v
	i.dirty = append(i.dirty, "name")
}

func (i *Ingredient) Quantity() string { return i.quantity }

func (i *Ingredient) SetQuantity(v string) {
	i.quantity = v
	i.dirty = append(i.dirty, "quantity")
}

func (i *Ingredient) Note() string { return i.note }

func (i *Ingredient) SetNote(v string) {
	i.note = v
	i.dirty = append(i.dirty, "note")
}

func (i *Ingredient) encodeFields() map[string]any {
	fields := map[string]any{}
	if i.rawIngredient != "" {
		fields["rawIngredient"] = i.rawIngredient
	}
	if i.name != "" {
		fields["name"] = i.name
	}
	if i.quantity != "" {
		fields["quantity"] = i.quantity
	}
	if i.note != "" {
		fields["note"] = i.note
	}
	return fields
}
