package production

import (
	"fmt"
	"math"
)

// IngredientBreakdown attributes a slice of an ingredient total to one meal.
// Quantity is in the ingredient's base unit, rounded to one decimal place
// for display.
type IngredientBreakdown struct {
	MealName   string  `json:"mealName"`
	Quantity   float64 `json:"quantity"`
	SourceUnit string  `json:"sourceUnit"`
	OrderCount int     `json:"orderCount"`
}

// IngredientLineItem is the per-ingredient requirement across all meals.
type IngredientLineItem struct {
	IngredientName string                `json:"ingredientName"`
	TotalQuantity  float64               `json:"totalQuantity"`
	BaseUnit       string                `json:"baseUnit"`
	Breakdown      []IngredientBreakdown `json:"breakdown"`
}

type bucketEntry struct {
	quantity   float64
	unit       string
	mealName   string
	orderCount int
}

// ResolveIngredients joins meal line items against their recipes and
// aggregates requirements per ingredient name. Data-quality problems never
// abort the run: offending slices are excluded and a human-readable warning
// is accumulated instead.
//
// In strict mode an ingredient whose contributions span incompatible unit
// classes is dropped entirely; the default keeps the source behavior of
// summing anyway and flagging it.
func ResolveIngredients(lineItems []MealLineItem, recipes map[string]MealRecipe, strict bool) ([]IngredientLineItem, []string) {
	var warnings []string

	// Validate each expected meal: missing recipes exclude the meal from
	// ingredient totals, empty recipes are retained but contribute nothing,
	// partially malformed recipes keep their well-formed lines.
	validated := make(map[string][]RecipeIngredient, len(lineItems))
	for _, item := range lineItems {
		recipe, ok := recipes[item.MealName]
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"missing meal data for %q, its orders were skipped for ingredient totals", item.MealName))
			continue
		}

		if len(recipe.Ingredients) == 0 {
			warnings = append(warnings, fmt.Sprintf("no ingredients defined for %q", item.MealName))
			validated[item.MealName] = nil
			continue
		}

		valid := make([]RecipeIngredient, 0, len(recipe.Ingredients))
		malformed := 0
		for _, ing := range recipe.Ingredients {
			if ing.Quantity == nil || ing.Name == "" {
				malformed++
				continue
			}
			valid = append(valid, ing)
		}
		if malformed > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"%d malformed recipe line(s) dropped for %q", malformed, item.MealName))
		}
		validated[item.MealName] = valid
	}

	// Expand: recipe quantity × meals ordered, bucketed by ingredient name
	// in first-seen order.
	bucketIndex := make(map[string]int)
	var bucketNames []string
	buckets := make(map[string][]bucketEntry)

	for _, item := range lineItems {
		ingredients, ok := validated[item.MealName]
		if !ok {
			continue
		}
		for _, ing := range ingredients {
			if _, seen := bucketIndex[ing.Name]; !seen {
				bucketIndex[ing.Name] = len(bucketNames)
				bucketNames = append(bucketNames, ing.Name)
			}
			buckets[ing.Name] = append(buckets[ing.Name], bucketEntry{
				quantity:   *ing.Quantity * float64(item.TotalQuantity),
				unit:       ing.Unit,
				mealName:   item.MealName,
				orderCount: len(item.Orders),
			})
		}
	}

	// Aggregate per ingredient.
	result := make([]IngredientLineItem, 0, len(bucketNames))
	for _, name := range bucketNames {
		entries := buckets[name]

		units := make([]string, len(entries))
		items := make([]QuantityItem, len(entries))
		for i, e := range entries {
			units[i] = e.unit
			items[i] = QuantityItem{Quantity: e.quantity, Unit: e.unit}
		}

		if ok, reason := CanAggregateUnits(units); !ok {
			warnings = append(warnings, fmt.Sprintf("incompatible units for %q: %s", name, reason))
			if strict {
				continue
			}
		}

		total := AggregateQuantities(items)

		breakdown := make([]IngredientBreakdown, len(entries))
		for i, e := range entries {
			converted, _ := ConvertToBaseUnit(e.quantity, e.unit)
			breakdown[i] = IngredientBreakdown{
				MealName:   e.mealName,
				Quantity:   round1(converted),
				SourceUnit: e.unit,
				OrderCount: e.orderCount,
			}
		}

		result = append(result, IngredientLineItem{
			IngredientName: name,
			TotalQuantity:  total.BaseValue,
			BaseUnit:       total.BaseUnit,
			Breakdown:      breakdown,
		})
	}

	return result, warnings
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
