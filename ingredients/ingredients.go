package ingredients

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"plateful/db"
	"plateful/models"
	"plateful/mq"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

type ingredientInput struct {
	Name        string           `json:"name"`
	DefaultUnit string           `json:"defaultUnit"`
	Nutrition   models.Nutrition `json:"nutrition"`
}

func (in *ingredientInput) validate() string {
	if strings.TrimSpace(in.Name) == "" {
		return "Ingredient name is required."
	}
	if in.DefaultUnit == "" {
		return "Default unit is required."
	}
	if in.Nutrition.Calories < 0 || in.Nutrition.Protein < 0 || in.Nutrition.Carbs < 0 || in.Nutrition.Fat < 0 {
		return "Nutrition values must be non-negative."
	}
	return ""
}

func ListIngredients(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.IngredientsCollection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Failed to fetch ingredients", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var all []models.Ingredient
	if err := cursor.All(ctx, &all); err != nil {
		http.Error(w, "Failed to decode ingredients", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "data": all})
}

func CreateIngredient(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var body ingredientInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if msg := body.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	ingredient := models.Ingredient{
		IngredientID: utils.GenerateRandomString(14),
		Name:         strings.TrimSpace(body.Name),
		DefaultUnit:  body.DefaultUnit,
		Nutrition:    body.Nutrition,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if _, err := db.IngredientsCollection.InsertOne(ctx, ingredient); err != nil {
		http.Error(w, "Failed to insert ingredient", http.StatusInternalServerError)
		return
	}

	go mq.Emit(ctx, "ingredient-created", models.Index{
		EntityType: "ingredient", EntityId: ingredient.IngredientID, Method: "POST",
	})

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"ok": true, "data": ingredient})
}

func UpdateIngredient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	ingredientID := ps.ByName("ingredientid")

	var body ingredientInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if msg := body.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	res, err := db.IngredientsCollection.UpdateOne(ctx, bson.M{"ingredientId": ingredientID}, bson.M{
		"$set": bson.M{
			"name":        strings.TrimSpace(body.Name),
			"defaultUnit": body.DefaultUnit,
			"nutrition":   body.Nutrition,
			"updatedAt":   time.Now(),
		},
	})
	if err != nil {
		http.Error(w, "Failed to update ingredient", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Ingredient not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func DeleteIngredient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	ingredientID := ps.ByName("ingredientid")

	// Refuse deletion while any recipe still references the ingredient.
	count, err := db.MealsCollection.CountDocuments(ctx, bson.M{"recipe.ingredientId": ingredientID})
	if err != nil {
		http.Error(w, "Failed to check recipes", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "Ingredient is used by existing recipes", http.StatusConflict)
		return
	}

	res, err := db.IngredientsCollection.DeleteOne(ctx, bson.M{"ingredientId": ingredientID})
	if err != nil {
		http.Error(w, "Failed to delete ingredient", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Ingredient not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}
