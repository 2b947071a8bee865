package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"time"

	"plateful/db"
	"plateful/globals"
	"plateful/models"
	"plateful/mq"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetMyOrders lists the authenticated user's orders, newest first, combining
// regular and package orders.
func GetMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sort := options.Find().SetSort(bson.M{"createdAt": -1})

	var regular []models.Order
	cursor, err := db.OrdersCollection.Find(ctx, bson.M{"userId": userID}, sort)
	if err != nil {
		http.Error(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	if err := cursor.All(ctx, &regular); err != nil {
		http.Error(w, "Failed to decode orders", http.StatusInternalServerError)
		return
	}

	var packages []models.PackageOrder
	cursor, err = db.PackageOrdersCollection.Find(ctx, bson.M{"userId": userID}, sort)
	if err != nil {
		http.Error(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	if err := cursor.All(ctx, &packages); err != nil {
		http.Error(w, "Failed to decode orders", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"orders":        regular,
		"packageOrders": packages,
	})
}

// GetOrder returns a single order if it belongs to the caller or the caller
// is an admin. Looks up regular orders first, then package orders.
func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := ps.ByName("orderid")
	userID := utils.GetUserIDFromRequest(r)
	role, _ := r.Context().Value(globals.RoleKey).([]string)
	isAdmin := slices.Contains(role, "admin")

	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err == nil {
		if order.UserID != userID && !isAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, order)
		return
	}
	if err != mongo.ErrNoDocuments {
		http.Error(w, "Failed to fetch order", http.StatusInternalServerError)
		return
	}

	var pkgOrder models.PackageOrder
	err = db.PackageOrdersCollection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&pkgOrder)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch order", http.StatusInternalServerError)
		return
	}
	if pkgOrder.UserID != userID && !isAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, pkgOrder)
}

// CancelOrder lets a customer cancel their own order while it is still
// pending or confirmed.
func CancelOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := ps.ByName("orderid")
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := bson.M{
		"orderId": orderID,
		"userId":  userID,
		"status":  bson.M{"$in": []string{models.OrderPending, models.OrderConfirmed}},
	}
	update := bson.M{"$set": bson.M{"status": models.OrderCancelled, "updatedAt": time.Now()}}

	res, err := db.OrdersCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		http.Error(w, "Failed to cancel order", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		res, err = db.PackageOrdersCollection.UpdateOne(ctx, filter, update)
		if err != nil {
			http.Error(w, "Failed to cancel order", http.StatusInternalServerError)
			return
		}
		if res.MatchedCount == 0 {
			http.Error(w, "Order not found or no longer cancellable", http.StatusConflict)
			return
		}
	}

	go mq.Emit(ctx, "order-cancelled", models.Index{EntityType: "order", EntityId: orderID, Method: "PUT"})
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": models.OrderCancelled})
}

// AdminListOrders lists orders for the back office, filterable by status and
// collection date.
func AdminListOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter["collectionDate"] = date
	}

	sort := options.Find().SetSort(bson.M{"createdAt": -1})

	var regular []models.Order
	cursor, err := db.OrdersCollection.Find(ctx, filter, sort)
	if err != nil {
		http.Error(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	if err := cursor.All(ctx, &regular); err != nil {
		http.Error(w, "Failed to decode orders", http.StatusInternalServerError)
		return
	}

	var packages []models.PackageOrder
	cursor, err = db.PackageOrdersCollection.Find(ctx, filter, sort)
	if err != nil {
		http.Error(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	if err := cursor.All(ctx, &packages); err != nil {
		http.Error(w, "Failed to decode orders", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"orders":        regular,
		"packageOrders": packages,
	})
}

// UpdateOrderStatus advances an order along the status lifecycle. Transitions
// not listed in OrderStatusFlow are rejected.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := ps.ByName("orderid")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	collection := db.OrdersCollection
	var current string
	var order models.Order
	err := collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err == nil {
		current = order.Status
	} else if err == mongo.ErrNoDocuments {
		collection = db.PackageOrdersCollection
		var pkgOrder models.PackageOrder
		if err := collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&pkgOrder); err != nil {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		current = pkgOrder.Status
	} else {
		http.Error(w, "Failed to fetch order", http.StatusInternalServerError)
		return
	}

	if !slices.Contains(models.OrderStatusFlow[current], body.Status) {
		http.Error(w, "Cannot move from "+current+" to "+body.Status, http.StatusConflict)
		return
	}

	update := bson.M{"$set": bson.M{"status": body.Status, "updatedAt": time.Now()}}
	if _, err := collection.UpdateOne(ctx, bson.M{"orderId": orderID}, update); err != nil {
		log.Println("UpdateOrderStatus error:", err)
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	go mq.Emit(ctx, "order-status-changed", models.Index{EntityType: "order", EntityId: orderID, Method: "PUT"})
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": body.Status})
}
