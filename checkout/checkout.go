package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"plateful/coupons"
	"plateful/db"
	"plateful/models"
	"plateful/mq"
	"plateful/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// checkoutInput is the client payload for a regular (cart) checkout.
type checkoutInput struct {
	Address        string `json:"address"`
	CollectionDate string `json:"collectionDate"` // YYYY-MM-DD
	CouponCode     string `json:"couponCode,omitempty"`
}

// packageCheckoutInput is the payload for a package or subscription checkout.
type packageCheckoutInput struct {
	PackageID      string                 `json:"packageId"`
	Selections     []models.MealSelection `json:"selections"`
	CollectionDate string                 `json:"collectionDate"`
	Subscription   bool                   `json:"subscription,omitempty"`
}

func validCollectionDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// CheckoutCart converts the user's cart into a pending order and returns a
// payment session. Meal items become order lines; package items become
// separate package orders with the package's default selections.
func CheckoutCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input checkoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if !validCollectionDate(input.CollectionDate) {
		http.Error(w, "collectionDate must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	cursor, err := db.CartCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		http.Error(w, "Failed to read cart", http.StatusInternalServerError)
		return
	}
	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		http.Error(w, "Failed to read cart", http.StatusInternalServerError)
		return
	}
	if len(items) == 0 {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	username := utils.GetUsernameFromRequest(r)

	var lines []models.OrderLine
	var mealSubtotal float64
	var pkgOrders []*models.PackageOrder
	for _, item := range items {
		if item.ItemType == "package" {
			pkgOrder, err := buildPackageOrder(ctx, userID, username, item, input.CollectionDate)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			pkgOrders = append(pkgOrders, pkgOrder)
			continue
		}
		mealSubtotal += item.Price * float64(item.Quantity)
		lines = append(lines, models.OrderLine{
			MealID:   item.ItemId,
			MealName: item.ItemName,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	cartSubtotal := mealSubtotal
	for _, pkgOrder := range pkgOrders {
		cartSubtotal += pkgOrder.Total
	}

	var discount float64
	if input.CouponCode != "" {
		var coupon models.Coupon
		err := db.CouponsCollection.FindOne(ctx, bson.M{"code": input.CouponCode}).Decode(&coupon)
		if err != nil {
			http.Error(w, "Coupon not found", http.StatusNotFound)
			return
		}
		result := coupons.Evaluate(coupon, cartSubtotal, time.Now())
		if !result.Valid {
			http.Error(w, result.Message, http.StatusUnprocessableEntity)
			return
		}
		discount = result.Discount
	}

	// Split the discount across the orders it covers so recorded totals
	// sum to the charged amount.
	subtotals := make([]float64, 0, 1+len(pkgOrders))
	if len(lines) > 0 {
		subtotals = append(subtotals, mealSubtotal)
	}
	for _, pkgOrder := range pkgOrders {
		subtotals = append(subtotals, pkgOrder.Total)
	}
	shares := apportionDiscount(discount, subtotals)

	now := time.Now()
	var orderIDs []string

	if len(lines) > 0 {
		share := shares[0]
		shares = shares[1:]
		order := models.Order{
			OrderID:        "ord-" + uuid.NewString(),
			UserID:         userID,
			CustomerName:   username,
			Status:         models.OrderPending,
			Items:          lines,
			Address:        input.Address,
			CouponCode:     input.CouponCode,
			Discount:       share,
			Total:          mealSubtotal - share,
			CollectionDate: input.CollectionDate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err := db.OrdersCollection.InsertOne(ctx, order); err != nil {
			log.Println("CheckoutCart insert order error:", err)
			http.Error(w, "Failed to create order", http.StatusInternalServerError)
			return
		}
		orderIDs = append(orderIDs, order.OrderID)
		go mq.Emit(ctx, "order-created", models.Index{EntityType: "order", EntityId: order.OrderID, Method: "POST"})
	}

	for i, pkgOrder := range pkgOrders {
		if shares[i] > 0 {
			pkgOrder.CouponCode = input.CouponCode
			pkgOrder.Discount = shares[i]
			pkgOrder.Total -= shares[i]
		}
		if _, err := db.PackageOrdersCollection.InsertOne(ctx, pkgOrder); err != nil {
			log.Println("CheckoutCart insert package order error:", err)
			http.Error(w, "Failed to create order", http.StatusInternalServerError)
			return
		}
		orderIDs = append(orderIDs, pkgOrder.OrderID)
		go mq.Emit(ctx, "order-created", models.Index{EntityType: "package_order", EntityId: pkgOrder.OrderID, Method: "POST"})
	}

	if _, err := db.CartCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		log.Println("CheckoutCart clear cart error:", err)
	}

	session := newPaymentSession(orderIDs, cartSubtotal-discount)
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"ok":       true,
		"orderIds": orderIDs,
		"total":    cartSubtotal - discount,
		"discount": discount,
		"payment":  session,
	})
}

// apportionDiscount splits a discount across order subtotals pro rata,
// rounded to cents. The last share absorbs the rounding remainder so the
// shares always sum to the full discount.
func apportionDiscount(discount float64, subtotals []float64) []float64 {
	shares := make([]float64, len(subtotals))
	if discount <= 0 || len(subtotals) == 0 {
		return shares
	}
	var total float64
	for _, s := range subtotals {
		total += s
	}
	if total <= 0 {
		return shares
	}

	var assigned float64
	for i, s := range subtotals[:len(subtotals)-1] {
		shares[i] = roundCents(discount * s / total)
		assigned += shares[i]
	}
	shares[len(shares)-1] = roundCents(discount - assigned)
	return shares
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// buildPackageOrder expands a package cart item into a PackageOrder using the
// package's default selections repeated per quantity.
func buildPackageOrder(ctx context.Context, userID, username string, item models.CartItem, collectionDate string) (*models.PackageOrder, error) {
	var pkg models.MealPackage
	err := db.PackagesCollection.FindOne(ctx, bson.M{"packageId": item.ItemId, "isActive": true}).Decode(&pkg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("package %s is no longer available", item.ItemId)
		}
		return nil, fmt.Errorf("failed to load package")
	}

	selections := make([]models.MealSelection, 0, len(pkg.Selections))
	for _, sel := range pkg.Selections {
		selections = append(selections, models.MealSelection{
			MealID:   sel.MealID,
			Quantity: sel.Quantity * item.Quantity,
		})
	}

	now := time.Now()
	return &models.PackageOrder{
		OrderID:        "pkg-" + uuid.NewString(),
		UserID:         userID,
		CustomerName:   username,
		Status:         models.OrderPending,
		PackageID:      pkg.PackageID,
		PackageName:    pkg.Name,
		Selections:     selections,
		Total:          pkg.Price * float64(item.Quantity),
		CollectionDate: collectionDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CheckoutPackage creates a package order directly, with custom selections,
// bypassing the cart. Used for the build-your-own-box flow and subscriptions.
func CheckoutPackage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input packageCheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.PackageID == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if !validCollectionDate(input.CollectionDate) {
		http.Error(w, "collectionDate must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var pkg models.MealPackage
	if err := db.PackagesCollection.FindOne(ctx, bson.M{"packageId": input.PackageID, "isActive": true}).Decode(&pkg); err != nil {
		http.Error(w, "Package not found", http.StatusNotFound)
		return
	}

	selections := input.Selections
	if len(selections) == 0 {
		selections = pkg.Selections
	}
	if err := validateSelections(ctx, selections, pkg.MealCount); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	now := time.Now()
	order := models.PackageOrder{
		OrderID:        "pkg-" + uuid.NewString(),
		UserID:         userID,
		CustomerName:   utils.GetUsernameFromRequest(r),
		Status:         models.OrderPending,
		PackageID:      pkg.PackageID,
		PackageName:    pkg.Name,
		Selections:     selections,
		Total:          pkg.Price,
		Subscription:   input.Subscription,
		CollectionDate: input.CollectionDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := db.PackageOrdersCollection.InsertOne(ctx, order); err != nil {
		log.Println("CheckoutPackage insert error:", err)
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	go mq.Emit(ctx, "order-created", models.Index{EntityType: "package_order", EntityId: order.OrderID, Method: "POST"})

	session := newPaymentSession([]string{order.OrderID}, order.Total)
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"ok":      true,
		"orderId": order.OrderID,
		"total":   order.Total,
		"payment": session,
	})
}

// validateSelections checks every selected meal exists and is active, and that
// the total count matches the package size when one is configured.
func validateSelections(ctx context.Context, selections []models.MealSelection, mealCount int) error {
	if len(selections) == 0 {
		return fmt.Errorf("at least one meal selection is required")
	}
	var total int
	ids := make([]string, 0, len(selections))
	for _, sel := range selections {
		if sel.MealID == "" || sel.Quantity <= 0 {
			return fmt.Errorf("selections must have a meal and a positive quantity")
		}
		total += sel.Quantity
		ids = append(ids, sel.MealID)
	}
	if mealCount > 0 && total != mealCount {
		return fmt.Errorf("package requires exactly %d meals, got %d", mealCount, total)
	}

	count, err := db.MealsCollection.CountDocuments(ctx, bson.M{"mealId": bson.M{"$in": ids}, "isActive": true})
	if err != nil {
		return fmt.Errorf("failed to validate selections")
	}
	if int(count) != len(uniqueStrings(ids)) {
		return fmt.Errorf("one or more selected meals are unavailable")
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
