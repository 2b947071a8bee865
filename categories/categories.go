package categories

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"plateful/db"
	"plateful/models"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ListCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	findOpts := options.Find().SetSort(bson.M{"sortOrder": 1})
	cursor, err := db.CategoriesCollection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		http.Error(w, "Failed to fetch categories", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var all []models.Category
	if err := cursor.All(ctx, &all); err != nil {
		http.Error(w, "Failed to decode categories", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "data": all})
}

func CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var body struct {
		Name      string `json:"name"`
		SortOrder int    `json:"sortOrder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		http.Error(w, "Category name is required", http.StatusBadRequest)
		return
	}

	category := models.Category{
		CategoryID: utils.GenerateRandomString(14),
		Name:       body.Name,
		Slug:       strings.ToLower(strings.ReplaceAll(body.Name, " ", "-")),
		SortOrder:  body.SortOrder,
		CreatedAt:  time.Now(),
	}

	if _, err := db.CategoriesCollection.InsertOne(ctx, category); err != nil {
		http.Error(w, "Failed to insert category", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"ok": true, "data": category})
}

func UpdateCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	categoryID := ps.ByName("categoryid")

	var body struct {
		Name      string `json:"name"`
		SortOrder int    `json:"sortOrder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		http.Error(w, "Category name is required", http.StatusBadRequest)
		return
	}

	res, err := db.CategoriesCollection.UpdateOne(ctx, bson.M{"categoryId": categoryID}, bson.M{
		"$set": bson.M{
			"name":      body.Name,
			"slug":      strings.ToLower(strings.ReplaceAll(body.Name, " ", "-")),
			"sortOrder": body.SortOrder,
		},
	})
	if err != nil {
		http.Error(w, "Failed to update category", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func DeleteCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	categoryID := ps.ByName("categoryid")

	count, err := db.MealsCollection.CountDocuments(ctx, bson.M{"categoryId": categoryID})
	if err != nil {
		http.Error(w, "Failed to check meals", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "Category still has meals assigned", http.StatusConflict)
		return
	}

	res, err := db.CategoriesCollection.DeleteOne(ctx, bson.M{"categoryId": categoryID})
	if err != nil {
		http.Error(w, "Failed to delete category", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}
