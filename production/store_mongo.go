package production

import (
	"context"
	"fmt"

	"plateful/db"
	"plateful/models"

	"go.mongodb.org/mongo-driver/bson"
)

// MongoStore is the live Store implementation over the application's
// collections. All document decoding happens here; downstream stages only
// see typed values.
type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func (s *MongoStore) FetchOrders(ctx context.Context, statuses []string) ([]models.Order, error) {
	cursor, err := db.OrdersCollection.Find(ctx, bson.M{"status": bson.M{"$in": statuses}})
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *MongoStore) FetchPackageOrders(ctx context.Context, statuses []string) ([]models.PackageOrder, error) {
	cursor, err := db.PackageOrdersCollection.Find(ctx, bson.M{"status": bson.M{"$in": statuses}})
	if err != nil {
		return nil, fmt.Errorf("find package orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.PackageOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode package orders: %w", err)
	}
	return orders, nil
}

func (s *MongoStore) FetchMealCatalog(ctx context.Context) ([]models.Meal, error) {
	cursor, err := db.MealsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find meals: %w", err)
	}
	defer cursor.Close(ctx)

	var meals []models.Meal
	if err := cursor.All(ctx, &meals); err != nil {
		return nil, fmt.Errorf("decode meals: %w", err)
	}
	return meals, nil
}

// FetchRecipes loads the named meals and resolves their recipe lines against
// the ingredients collection in one batched pass. Lines whose ingredient
// reference does not resolve keep an empty name; the resolver treats those
// as malformed.
func (s *MongoStore) FetchRecipes(ctx context.Context, mealNames []string) (map[string]MealRecipe, error) {
	cursor, err := db.MealsCollection.Find(ctx, bson.M{"name": bson.M{"$in": mealNames}})
	if err != nil {
		return nil, fmt.Errorf("find recipes: %w", err)
	}
	defer cursor.Close(ctx)

	var meals []models.Meal
	if err := cursor.All(ctx, &meals); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}

	// Collect every referenced ingredient id for one batched lookup.
	idSet := make(map[string]bool)
	for _, meal := range meals {
		for _, line := range meal.Recipe {
			idSet[line.IngredientID] = true
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	ingredientsByID := make(map[string]models.Ingredient, len(ids))
	if len(ids) > 0 {
		ingCursor, err := db.IngredientsCollection.Find(ctx, bson.M{"ingredientId": bson.M{"$in": ids}})
		if err != nil {
			return nil, fmt.Errorf("find ingredients: %w", err)
		}
		defer ingCursor.Close(ctx)

		var ingredients []models.Ingredient
		if err := ingCursor.All(ctx, &ingredients); err != nil {
			return nil, fmt.Errorf("decode ingredients: %w", err)
		}
		for _, ing := range ingredients {
			ingredientsByID[ing.IngredientID] = ing
		}
	}

	recipes := make(map[string]MealRecipe, len(meals))
	for _, meal := range meals {
		recipe := MealRecipe{MealID: meal.MealID, MealName: meal.Name}
		for _, line := range meal.Recipe {
			ing, ok := ingredientsByID[line.IngredientID]
			ri := RecipeIngredient{Quantity: line.Quantity, Unit: line.Unit}
			if ok {
				ri.Name = ing.Name
				if ri.Unit == "" {
					ri.Unit = ing.DefaultUnit
				}
			}
			recipe.Ingredients = append(recipe.Ingredients, ri)
		}
		recipes[meal.Name] = recipe
	}
	return recipes, nil
}
