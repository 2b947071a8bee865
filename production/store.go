package production

import (
	"context"
	"fmt"

	"plateful/models"
)

// RecipeIngredient is one recipe line with the ingredient reference already
// resolved to a name and unit. A nil Quantity or empty Name marks a
// malformed line; the resolver filters those with a warning.
type RecipeIngredient struct {
	Name     string
	Quantity *float64
	Unit     string
}

// MealRecipe is a meal's ingredient requirements per single unit.
type MealRecipe struct {
	MealID      string
	MealName    string
	Ingredients []RecipeIngredient
}

// Store is the storage collaborator the engine reads from. It performs the
// raw-document-to-domain mapping at the boundary; the engine never sees
// untyped records.
type Store interface {
	// FetchOrders returns regular orders whose status is in statuses.
	FetchOrders(ctx context.Context, statuses []string) ([]models.Order, error)
	// FetchPackageOrders returns package orders whose status is in statuses.
	FetchPackageOrders(ctx context.Context, statuses []string) ([]models.PackageOrder, error)
	// FetchMealCatalog returns all meals, including inactive ones; callers
	// decide how to treat inactive entries.
	FetchMealCatalog(ctx context.Context) ([]models.Meal, error)
	// FetchRecipes returns recipes for the given meal names in one batched
	// request, keyed by meal name. Names with no matching meal are simply
	// absent from the result.
	FetchRecipes(ctx context.Context, mealNames []string) (map[string]MealRecipe, error)
}

// ProductionStatuses are the order statuses that count toward a day's
// production run: everything the kitchen has yet to finish.
var ProductionStatuses = []string{
	models.OrderPending,
	models.OrderConfirmed,
	models.OrderPreparing,
}

// FilterOrdersByCollectionDate keeps orders requested for the given
// YYYY-MM-DD collection date.
func FilterOrdersByCollectionDate(orders []models.Order, date string) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.CollectionDate == date {
			out = append(out, o)
		}
	}
	return out
}

// FilterPackageOrdersByCollectionDate is the package-order counterpart.
func FilterPackageOrdersByCollectionDate(orders []models.PackageOrder, date string) []models.PackageOrder {
	out := make([]models.PackageOrder, 0, len(orders))
	for _, o := range orders {
		if o.CollectionDate == date {
			out = append(out, o)
		}
	}
	return out
}

// NormalizeOrders flattens regular and package orders into the common
// KitchenOrder shape. Package selections resolve against the catalog;
// selections referencing unknown or inactive meals are excluded with a
// warning rather than silently dropped.
func NormalizeOrders(orders []models.Order, pkgOrders []models.PackageOrder, catalog []models.Meal) ([]KitchenOrder, []string) {
	activeByID := make(map[string]models.Meal, len(catalog))
	inactiveByID := make(map[string]models.Meal)
	for _, m := range catalog {
		if m.IsActive {
			activeByID[m.MealID] = m
		} else {
			inactiveByID[m.MealID] = m
		}
	}

	var warnings []string
	normalized := make([]KitchenOrder, 0, len(orders)+len(pkgOrders))

	for _, o := range orders {
		ko := KitchenOrder{OrderID: o.OrderID, CustomerName: o.CustomerName}
		for _, line := range o.Items {
			ko.Lines = append(ko.Lines, KitchenLine{MealName: line.MealName, Quantity: line.Quantity})
		}
		normalized = append(normalized, ko)
	}

	for _, po := range pkgOrders {
		ko := KitchenOrder{OrderID: po.OrderID, CustomerName: po.CustomerName}
		for _, sel := range po.Selections {
			meal, ok := activeByID[sel.MealID]
			if !ok {
				if inactive, was := inactiveByID[sel.MealID]; was {
					warnings = append(warnings, fmt.Sprintf(
						"order %s references inactive meal %q, selection skipped", po.OrderID, inactive.Name))
				} else {
					warnings = append(warnings, fmt.Sprintf(
						"order %s references unknown meal id %s, selection skipped", po.OrderID, sel.MealID))
				}
				continue
			}
			ko.Lines = append(ko.Lines, KitchenLine{MealName: meal.Name, Quantity: sel.Quantity})
		}
		normalized = append(normalized, ko)
	}

	return normalized, warnings
}
