package nutrition

import (
	"testing"

	"plateful/models"
)

func qty(v float64) *float64 { return &v }

func TestForMeal(t *testing.T) {
	ingredients := map[string]models.Ingredient{
		"rice": {
			IngredientID: "rice", Name: "Rice", DefaultUnit: "g",
			Nutrition: models.Nutrition{Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3},
		},
		"egg": {
			IngredientID: "egg", Name: "Egg", DefaultUnit: "pcs",
			Nutrition: models.Nutrition{Calories: 78, Protein: 6, Carbs: 0.6, Fat: 5},
		},
	}

	meal := models.Meal{
		Name: "Egg Fried Rice",
		Recipe: []models.RecipeLine{
			{IngredientID: "rice", Quantity: qty(0.2), Unit: "kg"}, // 200 g -> factor 2
			{IngredientID: "egg", Quantity: qty(2)},                // default unit pcs
		},
	}

	facts := ForMeal(meal, ingredients)

	if !facts.Complete {
		t.Fatal("expected complete facts")
	}
	if facts.Calories != 416 { // 130*2 + 78*2
		t.Fatalf("calories = %v, want 416", facts.Calories)
	}
	if facts.Protein != 17.4 { // 2.7*2 + 6*2
		t.Fatalf("protein = %v, want 17.4", facts.Protein)
	}
}

func TestForMealIncomplete(t *testing.T) {
	ingredients := map[string]models.Ingredient{
		"salt": {
			IngredientID: "salt", Name: "Salt", DefaultUnit: "g",
			Nutrition: models.Nutrition{},
		},
	}

	meal := models.Meal{
		Name: "Mystery Dish",
		Recipe: []models.RecipeLine{
			{IngredientID: "salt", Quantity: qty(2)},
			{IngredientID: "missing", Quantity: qty(100), Unit: "g"}, // unresolved reference
			{IngredientID: "salt", Quantity: nil},                    // missing quantity
			{IngredientID: "salt", Quantity: qty(1), Unit: "pinch"},  // unscalable unit
		},
	}

	facts := ForMeal(meal, ingredients)
	if facts.Complete {
		t.Fatal("expected incomplete facts")
	}
}
