package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"plateful/db"
	"plateful/models"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddToCart increments quantity if the item exists, or inserts a new CartItem.
func AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		log.Println("AddToCart decode error:", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	// Must be logged in
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	item.UserID = userID

	if item.ItemId == "" || item.Quantity <= 0 {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}
	if item.ItemType != "meal" && item.ItemType != "package" {
		http.Error(w, "Item type must be meal or package", http.StatusBadRequest)
		return
	}

	// Snapshot name and price from the live catalog, never from the client.
	switch item.ItemType {
	case "meal":
		var meal models.Meal
		if err := db.MealsCollection.FindOne(ctx, bson.M{"mealId": item.ItemId, "isActive": true}).Decode(&meal); err != nil {
			http.Error(w, "Meal not found", http.StatusNotFound)
			return
		}
		item.ItemName, item.Price = meal.Name, meal.Price
	case "package":
		var pkg models.MealPackage
		if err := db.PackagesCollection.FindOne(ctx, bson.M{"packageId": item.ItemId, "isActive": true}).Decode(&pkg); err != nil {
			http.Error(w, "Package not found", http.StatusNotFound)
			return
		}
		item.ItemName, item.Price = pkg.Name, pkg.Price
	}

	// Upsert: increment quantity if same user/item exists
	filter := bson.M{
		"userId":   item.UserID,
		"itemId":   item.ItemId,
		"itemType": item.ItemType,
	}
	update := bson.M{
		"$inc": bson.M{"quantity": item.Quantity},
		"$set": bson.M{"touchedAt": time.Now()},
		"$setOnInsert": bson.M{
			"itemName": item.ItemName,
			"price":    item.Price,
			"addedAt":  time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := db.CartCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		log.Println("AddToCart UpdateOne error:", err)
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// GetCart returns all cart items for the user.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cursor, err := db.CartCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		log.Println("GetCart find error:", err)
		http.Error(w, "Failed to fetch cart", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		http.Error(w, "Failed to decode cart", http.StatusInternalServerError)
		return
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"items":    items,
		"subtotal": subtotal,
	})
}

// UpdateQuantity sets an item's quantity; zero removes it.
func UpdateQuantity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		ItemId   string `json:"itemId"`
		ItemType string `json:"itemType"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ItemId == "" || body.Quantity < 0 {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	filter := bson.M{"userId": userID, "itemId": body.ItemId, "itemType": body.ItemType}

	if body.Quantity == 0 {
		if _, err := db.CartCollection.DeleteOne(ctx, filter); err != nil {
			http.Error(w, "Failed to remove item", http.StatusInternalServerError)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
		return
	}

	update := bson.M{"$set": bson.M{"quantity": body.Quantity, "touchedAt": time.Now()}}
	if _, err := db.CartCollection.UpdateOne(ctx, filter, update); err != nil {
		http.Error(w, "Failed to update item", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ClearCart removes everything from the user's cart.
func ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := db.CartCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		http.Error(w, "Failed to clear cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
