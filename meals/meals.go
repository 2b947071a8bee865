package meals

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"plateful/db"
	"plateful/models"
	"plateful/mq"
	"plateful/rdx"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const catalogCachePrefix = "meals:catalog:"

// GetMeals lists active meals for the storefront with filtering, sorting and
// pagination. Plain first-page requests are served from the redis cache.
func GetMeals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := utils.ParseQueryOptions(r)

	cacheKey := catalogCachePrefix + r.URL.RawQuery
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	cursor, err := db.MealsCollection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		http.Error(w, "Failed to fetch meals", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var all []models.Meal
	if err := cursor.All(ctx, &all); err != nil {
		http.Error(w, "Failed to decode meals", http.StatusInternalServerError)
		return
	}

	filtered := filterMeals(all, opts)
	sortMeals(filtered, opts.Sort)

	start := (opts.Page - 1) * opts.Limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + opts.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	payload := map[string]any{
		"ok":    true,
		"total": len(filtered),
		"page":  opts.Page,
		"data":  filtered[start:end],
	}

	if data, err := json.Marshal(payload); err == nil {
		if err := rdx.RdxSetWithExpiry(cacheKey, string(data), 2*time.Minute); err != nil {
			log.Println("Catalog cache write failed:", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, payload)
}

func filterMeals(all []models.Meal, opts utils.QueryOptions) []models.Meal {
	filtered := make([]models.Meal, 0, len(all))
	for _, m := range all {
		if opts.Search != "" &&
			!utils.ContainsIgnoreCase(m.Name, opts.Search) &&
			!utils.ContainsIgnoreCase(m.Description, opts.Search) {
			continue
		}
		if opts.Category != "" && m.CategoryID != opts.Category {
			continue
		}
		if opts.Dietary != "" && !containsFold(m.Dietary, opts.Dietary) {
			continue
		}
		if opts.MinPrice != nil && m.Price < *opts.MinPrice {
			continue
		}
		if opts.MaxPrice != nil && m.Price > *opts.MaxPrice {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

func sortMeals(meals []models.Meal, key string) {
	switch key {
	case "price_asc":
		sort.SliceStable(meals, func(i, j int) bool { return meals[i].Price < meals[j].Price })
	case "price_desc":
		sort.SliceStable(meals, func(i, j int) bool { return meals[i].Price > meals[j].Price })
	case "newest":
		sort.SliceStable(meals, func(i, j int) bool { return meals[i].CreatedAt.After(meals[j].CreatedAt) })
	default:
		sort.SliceStable(meals, func(i, j int) bool { return meals[i].Name < meals[j].Name })
	}
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// GetMeal returns one meal by id. Inactive meals are only visible to admins
// through the admin listing, not here.
func GetMeal(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var meal models.Meal
	err := db.MealsCollection.FindOne(ctx, bson.M{"mealId": ps.ByName("mealid"), "isActive": true}).Decode(&meal)
	if err != nil {
		http.Error(w, "Meal not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "data": meal})
}

// --- Admin CRUD ---

type mealInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	CategoryID  string              `json:"categoryId"`
	Price       float64             `json:"price"`
	Tags        []string            `json:"tags"`
	Dietary     []string            `json:"dietary"`
	IsActive    *bool               `json:"isActive"`
	Recipe      []models.RecipeLine `json:"recipe"`
}

func (in *mealInput) validate() string {
	if len(in.Name) == 0 || len(in.Name) > 100 {
		return "Name must be between 1 and 100 characters."
	}
	if in.Price < 0 {
		return "Invalid price value. Must be a non-negative number."
	}
	for _, line := range in.Recipe {
		if line.IngredientID == "" {
			return "Recipe lines must reference an ingredient."
		}
	}
	return ""
}

func CreateMeal(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var body mealInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if msg := body.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}

	meal := models.Meal{
		MealID:      utils.GenerateRandomString(14),
		Name:        body.Name,
		Description: body.Description,
		CategoryID:  body.CategoryID,
		Price:       body.Price,
		Tags:        body.Tags,
		Dietary:     body.Dietary,
		IsActive:    active,
		Recipe:      body.Recipe,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if _, err := db.MealsCollection.InsertOne(ctx, meal); err != nil {
		http.Error(w, "Failed to insert meal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	rdx.InvalidatePrefix(catalogCachePrefix)
	go mq.Emit(ctx, "meal-created", models.Index{
		EntityType: "meal", EntityId: meal.MealID, Method: "POST",
	})

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"ok":   true,
		"data": meal,
	})
}

func UpdateMeal(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	mealID := ps.ByName("mealid")

	var body mealInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if msg := body.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	update := bson.M{
		"name":        body.Name,
		"description": body.Description,
		"categoryId":  body.CategoryID,
		"price":       body.Price,
		"tags":        body.Tags,
		"dietary":     body.Dietary,
		"recipe":      body.Recipe,
		"updatedAt":   time.Now(),
	}
	if body.IsActive != nil {
		update["isActive"] = *body.IsActive
	}

	res, err := db.MealsCollection.UpdateOne(ctx, bson.M{"mealId": mealID}, bson.M{"$set": update})
	if err != nil {
		http.Error(w, "Failed to update meal", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Meal not found", http.StatusNotFound)
		return
	}

	rdx.InvalidatePrefix(catalogCachePrefix)
	go mq.Emit(ctx, "meal-updated", models.Index{
		EntityType: "meal", EntityId: mealID, Method: "PUT",
	})

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func DeleteMeal(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	mealID := ps.ByName("mealid")

	// Soft delete: deactivate so historical orders keep resolving.
	res, err := db.MealsCollection.UpdateOne(ctx, bson.M{"mealId": mealID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}})
	if err != nil {
		http.Error(w, "Failed to delete meal", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Meal not found", http.StatusNotFound)
		return
	}

	rdx.InvalidatePrefix(catalogCachePrefix)
	go mq.Emit(ctx, "meal-deleted", models.Index{
		EntityType: "meal", EntityId: mealID, Method: "DELETE",
	})

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// AdminListMeals lists all meals including inactive ones.
func AdminListMeals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.MealsCollection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Failed to fetch meals", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var all []models.Meal
	if err := cursor.All(ctx, &all); err != nil {
		http.Error(w, "Failed to decode meals", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "data": all})
}
