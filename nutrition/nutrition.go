package nutrition

import (
	"context"
	"math"
	"net/http"
	"time"

	"plateful/cache"
	"plateful/db"
	"plateful/models"
	"plateful/production"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Facts are the computed nutrition totals for one unit of a meal.
type Facts struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Complete bool    `json:"complete"` // false when any recipe line could not be counted
}

// ForMeal sums ingredient nutrition across a meal's recipe. Ingredient facts
// are declared per 100 g / 100 ml for mass and volume units and per piece
// for count units. Lines that cannot be resolved or converted leave the
// result marked incomplete rather than failing.
func ForMeal(meal models.Meal, ingredientsByID map[string]models.Ingredient) Facts {
	facts := Facts{Complete: true}

	for _, line := range meal.Recipe {
		ing, ok := ingredientsByID[line.IngredientID]
		if !ok || line.Quantity == nil {
			facts.Complete = false
			continue
		}

		unit := line.Unit
		if unit == "" {
			unit = ing.DefaultUnit
		}

		base, baseUnit := production.ConvertToBaseUnit(*line.Quantity, unit)

		var factor float64
		switch baseUnit {
		case production.BaseMass, production.BaseVolume:
			factor = base / 100
		case production.BaseCount:
			factor = base
		default:
			// unit outside the table, cannot scale the per-100 facts
			facts.Complete = false
			continue
		}

		facts.Calories += ing.Nutrition.Calories * factor
		facts.Protein += ing.Nutrition.Protein * factor
		facts.Carbs += ing.Nutrition.Carbs * factor
		facts.Fat += ing.Nutrition.Fat * factor
	}

	facts.Calories = round1(facts.Calories)
	facts.Protein = round1(facts.Protein)
	facts.Carbs = round1(facts.Carbs)
	facts.Fat = round1(facts.Fat)
	return facts
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Handler serves nutrition lookups, memoizing computed facts per meal.
type Handler struct {
	cache *cache.TTL
}

func NewHandler(c *cache.TTL) *Handler {
	return &Handler{cache: c}
}

// GetMealNutrition computes nutrition facts for a meal on demand. Computed
// facts are cached for the handler cache's TTL; edits to a meal's recipe
// show up once the entry expires.
func (h *Handler) GetMealNutrition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	mealID := ps.ByName("mealid")
	if facts, ok := h.cache.Get("nutrition:"+mealID, time.Now()); ok {
		utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "data": facts})
		return
	}

	var meal models.Meal
	err := db.MealsCollection.FindOne(ctx, bson.M{"mealId": mealID}).Decode(&meal)
	if err != nil {
		http.Error(w, "Meal not found", http.StatusNotFound)
		return
	}

	ids := make([]string, 0, len(meal.Recipe))
	for _, line := range meal.Recipe {
		ids = append(ids, line.IngredientID)
	}

	ingredientsByID := make(map[string]models.Ingredient)
	if len(ids) > 0 {
		cursor, err := db.IngredientsCollection.Find(ctx, bson.M{"ingredientId": bson.M{"$in": ids}})
		if err != nil {
			http.Error(w, "Failed to fetch ingredients", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(ctx)

		var ingredients []models.Ingredient
		if err := cursor.All(ctx, &ingredients); err != nil {
			http.Error(w, "Failed to decode ingredients", http.StatusInternalServerError)
			return
		}
		for _, ing := range ingredients {
			ingredientsByID[ing.IngredientID] = ing
		}
	}

	facts := ForMeal(meal, ingredientsByID)
	h.cache.Set("nutrition:"+mealID, facts, time.Now())

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"data": facts,
	})
}
