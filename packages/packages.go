package packages

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

type packageInput struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	MealCount   int                    `json:"mealCount"`
	Selections  []models.MealSelection `json:"selections"`
	IsActive    *bool                  `json:"isActive"`
}

func (in *packageInput) validate(ctx context.Context) string {
	if strings.TrimSpace(in.Name) == "" {
		return "Package name is required."
	}
	if in.Price < 0 {
		return "Invalid price value. Must be a non-negative number."
	}
	if in.MealCount < 0 {
		return "Meal count must be zero (unconstrained) or positive."
	}
	if len(in.Selections) == 0 {
		return "Package needs at least one meal selection."
	}

	ids := make([]string, 0, len(in.Selections))
	for _, sel := range in.Selections {
		if sel.Quantity <= 0 {
			return "Selection quantities must be positive."
		}
		ids = append(ids, sel.MealID)
	}

	// Every referenced meal must exist and be active.
	count, err := db.MealsCollection.CountDocuments(ctx, bson.M{
		"mealId":   bson.M{"$in": ids},
		"isActive": true,
	})
	if err == nil && count != int64(len(uniqueStrings(ids))) {
		return "Package references unknown or inactive meals."
	}
	return ""
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// ListPackages returns active packages for the storefront.
func ListPackages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.PackagesCollection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		http.Error(w, "Failed to fetch packages", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var all []models.MealPackage
	if err := cursor.All(ctx, &all); err != nil {
		http.Error(w, "Failed to decode packages", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "data": all})
}

func CreatePackage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var body packageInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if msg := body.validate(ctx); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}

	pkg := models.MealPackage{
		PackageID:   utils.GenerateRandomString(14),
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		Price:       body.Price,
		MealCount:   body.MealCount,
		Selections:  body.Selections,
		IsActive:    active,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if _, err := db.PackagesCollection.InsertOne(ctx, pkg); err != nil {
		http.Error(w, "Failed to insert package", http.StatusInternalServerError)
		return
	}

	go mq.Emit(ctx, "package-created", models.Index{
		EntityType: "package", EntityId: pkg.PackageID, Method: "POST",
	})

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"ok": true, "data": pkg})
}

func UpdatePackage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	packageID := ps.ByName("packageid")

	var body packageInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if msg := body.validate(ctx); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	update := bson.M{
		"name":        strings.TrimSpace(body.Name),
		"description": body.Description,
		"price":       body.Price,
		"mealCount":   body.MealCount,
		"selections":  body.Selections,
		"updatedAt":   time.Now(),
	}
	if body.IsActive != nil {
		update["isActive"] = *body.IsActive
	}

	res, err := db.PackagesCollection.UpdateOne(ctx, bson.M{"packageId": packageID}, bson.M{"$set": update})
	if err != nil {
		http.Error(w, "Failed to update package", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Package not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func DeletePackage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	packageID := ps.ByName("packageid")

	res, err := db.PackagesCollection.UpdateOne(ctx, bson.M{"packageId": packageID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}})
	if err != nil {
		http.Error(w, "Failed to delete package", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Package not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}
