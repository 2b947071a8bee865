package models

import "time"

// Meal is a single orderable dish on the storefront.
type Meal struct {
	MealID      string       `json:"mealId" bson:"mealId"`
	Name        string       `json:"name" bson:"name"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	CategoryID  string       `json:"categoryId,omitempty" bson:"categoryId,omitempty"`
	Price       float64      `json:"price" bson:"price"`
	Tags        []string     `json:"tags,omitempty" bson:"tags,omitempty"`
	Dietary     []string     `json:"dietary,omitempty" bson:"dietary,omitempty"` // e.g. "vegan", "gluten-free"
	Photo       string       `json:"photo,omitempty" bson:"photo,omitempty"`
	Thumb       string       `json:"thumb,omitempty" bson:"thumb,omitempty"`
	IsActive    bool         `json:"isActive" bson:"isActive"`
	Recipe      []RecipeLine `json:"recipe,omitempty" bson:"recipe,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// RecipeLine is one ingredient requirement for a single unit of a meal.
// Unit may be empty, in which case the ingredient's default unit applies.
type RecipeLine struct {
	IngredientID string   `json:"ingredientId" bson:"ingredientId"`
	Quantity     *float64 `json:"quantity" bson:"quantity"` // nil means malformed, dropped with a warning
	Unit         string   `json:"unit,omitempty" bson:"unit,omitempty"`
}

// Ingredient is a raw kitchen ingredient with its nutrition facts.
type Ingredient struct {
	IngredientID string    `json:"ingredientId" bson:"ingredientId"`
	Name         string    `json:"name" bson:"name"`
	DefaultUnit  string    `json:"defaultUnit" bson:"defaultUnit"` // e.g. "g", "ml", "pcs"
	Nutrition    Nutrition `json:"nutrition,omitempty" bson:"nutrition,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Nutrition holds nutrient factors per 100 base units (100 g or 100 ml),
// or per piece for count-class default units.
type Nutrition struct {
	Calories float64 `json:"calories" bson:"calories"`
	Protein  float64 `json:"protein" bson:"protein"`
	Carbs    float64 `json:"carbs" bson:"carbs"`
	Fat      float64 `json:"fat" bson:"fat"`
}

// Category groups meals on the storefront.
type Category struct {
	CategoryID string    `json:"categoryId" bson:"categoryId"`
	Name       string    `json:"name" bson:"name"`
	Slug       string    `json:"slug" bson:"slug"`
	SortOrder  int       `json:"sortOrder" bson:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// MealPackage is a bundled offering: a named set of meal selections at one price.
type MealPackage struct {
	PackageID   string          `json:"packageId" bson:"packageId"`
	Name        string          `json:"name" bson:"name"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64         `json:"price" bson:"price"`
	MealCount   int             `json:"mealCount,omitempty" bson:"mealCount,omitempty"` // box size; 0 means unconstrained
	Selections  []MealSelection `json:"selections" bson:"selections"`
	IsActive    bool            `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// MealSelection references a meal inside a package by id only; the name is
// resolved against the live catalog when needed.
type MealSelection struct {
	MealID   string `json:"mealId" bson:"mealId"`
	Quantity int    `json:"quantity" bson:"quantity"`
}
