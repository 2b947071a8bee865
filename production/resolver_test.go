package production

import (
	"math"
	"strings"
	"testing"
)

func qty(v float64) *float64 { return &v }

func TestResolveIngredientsUnitMixing(t *testing.T) {
	// Rice: 100 g per meal ordered x5 plus 0.2 kg per meal ordered x3 = 1100 g
	lineItems := []MealLineItem{
		{MealName: "Meal A", TotalQuantity: 5, Orders: []ContributingOrder{{OrderID: "1", Quantity: 5}}},
		{MealName: "Meal B", TotalQuantity: 3, Orders: []ContributingOrder{{OrderID: "2", Quantity: 3}}},
	}
	recipes := map[string]MealRecipe{
		"Meal A": {MealName: "Meal A", Ingredients: []RecipeIngredient{{Name: "Rice", Quantity: qty(100), Unit: "g"}}},
		"Meal B": {MealName: "Meal B", Ingredients: []RecipeIngredient{{Name: "Rice", Quantity: qty(0.2), Unit: "kg"}}},
	}

	items, warnings := ResolveIngredients(lineItems, recipes, false)

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(items) != 1 {
		t.Fatalf("got %d ingredients, want 1", len(items))
	}

	rice := items[0]
	if rice.IngredientName != "Rice" || rice.BaseUnit != "g" {
		t.Fatalf("got %q in %q, want Rice in g", rice.IngredientName, rice.BaseUnit)
	}
	if math.Abs(rice.TotalQuantity-1100) > 1e-9 {
		t.Fatalf("total = %v, want 1100", rice.TotalQuantity)
	}
	if len(rice.Breakdown) != 2 {
		t.Fatalf("breakdown entries = %d, want 2", len(rice.Breakdown))
	}
	if rice.Breakdown[0].Quantity != 500 || rice.Breakdown[1].Quantity != 600 {
		t.Fatalf("breakdown quantities = %v/%v, want 500/600",
			rice.Breakdown[0].Quantity, rice.Breakdown[1].Quantity)
	}
}

func TestResolveIngredientsTotalConservation(t *testing.T) {
	lineItems := []MealLineItem{
		{MealName: "A", TotalQuantity: 7},
		{MealName: "B", TotalQuantity: 2},
		{MealName: "C", TotalQuantity: 11},
	}
	recipes := map[string]MealRecipe{
		"A": {MealName: "A", Ingredients: []RecipeIngredient{
			{Name: "Flour", Quantity: qty(33.3), Unit: "g"},
			{Name: "Milk", Quantity: qty(120), Unit: "ml"},
		}},
		"B": {MealName: "B", Ingredients: []RecipeIngredient{
			{Name: "Flour", Quantity: qty(0.05), Unit: "kg"},
		}},
		"C": {MealName: "C", Ingredients: []RecipeIngredient{
			{Name: "Milk", Quantity: qty(0.033), Unit: "l"},
		}},
	}

	items, _ := ResolveIngredients(lineItems, recipes, false)

	for _, item := range items {
		var sum float64
		for _, b := range item.Breakdown {
			sum += b.Quantity
		}
		// equal within rounding to one decimal place
		if math.Abs(item.TotalQuantity-sum) > 0.1*float64(len(item.Breakdown)) {
			t.Errorf("%s: total %v does not match breakdown sum %v", item.IngredientName, item.TotalQuantity, sum)
		}
	}
}

func TestResolveIngredientsMissingRecipe(t *testing.T) {
	lineItems := []MealLineItem{
		{MealName: "Chicken Caesar Wrap", TotalQuantity: 40},
		{MealName: "Soup", TotalQuantity: 2},
	}
	recipes := map[string]MealRecipe{
		"Soup": {MealName: "Soup", Ingredients: []RecipeIngredient{{Name: "Stock", Quantity: qty(300), Unit: "ml"}}},
	}

	items, warnings := ResolveIngredients(lineItems, recipes, false)

	// the wrap contributes nothing to ingredient totals
	for _, item := range items {
		for _, b := range item.Breakdown {
			if b.MealName == "Chicken Caesar Wrap" {
				t.Fatal("meal without recipe data must not contribute to breakdowns")
			}
		}
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "Chicken Caesar Wrap") && strings.Contains(w, "missing") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a missing-meal warning naming the meal, got %v", warnings)
	}
}

func TestResolveIngredientsEmptyRecipe(t *testing.T) {
	lineItems := []MealLineItem{{MealName: "Plain Rice", TotalQuantity: 6}}
	recipes := map[string]MealRecipe{
		"Plain Rice": {MealName: "Plain Rice"},
	}

	items, warnings := ResolveIngredients(lineItems, recipes, false)

	if len(items) != 0 {
		t.Fatalf("empty recipe must contribute nothing, got %v", items)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "no ingredients defined") {
		t.Fatalf("expected a no-ingredients warning, got %v", warnings)
	}
}

func TestResolveIngredientsMalformedLines(t *testing.T) {
	lineItems := []MealLineItem{{MealName: "Stew", TotalQuantity: 4}}
	recipes := map[string]MealRecipe{
		"Stew": {MealName: "Stew", Ingredients: []RecipeIngredient{
			{Name: "Beef", Quantity: qty(150), Unit: "g"},
			{Name: "Mystery", Quantity: nil, Unit: "g"}, // missing quantity
			{Name: "", Quantity: qty(10), Unit: "g"},    // unresolved ingredient reference
		}},
	}

	items, warnings := ResolveIngredients(lineItems, recipes, false)

	if len(items) != 1 || items[0].IngredientName != "Beef" {
		t.Fatalf("expected only Beef to survive, got %v", items)
	}
	if items[0].TotalQuantity != 600 {
		t.Fatalf("Beef total = %v, want 600", items[0].TotalQuantity)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "2 malformed") && strings.Contains(w, "Stew") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a malformed-line warning with a count, got %v", warnings)
	}
}

func TestResolveIngredientsIncompatibleUnits(t *testing.T) {
	lineItems := []MealLineItem{
		{MealName: "A", TotalQuantity: 1},
		{MealName: "B", TotalQuantity: 1},
	}
	recipes := map[string]MealRecipe{
		"A": {MealName: "A", Ingredients: []RecipeIngredient{{Name: "Honey", Quantity: qty(10), Unit: "g"}}},
		"B": {MealName: "B", Ingredients: []RecipeIngredient{{Name: "Honey", Quantity: qty(5), Unit: "ml"}}},
	}

	// default: flagged but still summed
	items, warnings := ResolveIngredients(lineItems, recipes, false)
	if len(items) != 1 {
		t.Fatalf("best-effort mode must keep the ingredient, got %v", items)
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "incompatible units") && strings.Contains(w, "Honey") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an incompatible-units warning, got %v", warnings)
	}

	// strict: dropped entirely, still warned
	items, warnings = ResolveIngredients(lineItems, recipes, true)
	if len(items) != 0 {
		t.Fatalf("strict mode must drop the ingredient, got %v", items)
	}
	if len(warnings) == 0 {
		t.Fatal("strict mode must still warn")
	}
}
