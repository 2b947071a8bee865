package coupons

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"plateful/db"
	"plateful/models"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

type CouponRequest struct {
	Code string  `json:"code"`
	Cart float64 `json:"cart"` // cart subtotal, for min spend rules
}

type CouponResponse struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"` // absolute amount, not %
	Message  string  `json:"message"`
}

// Evaluate applies a coupon definition to a subtotal at a given moment.
// The returned discount is an absolute amount, never exceeding the subtotal.
func Evaluate(coupon models.Coupon, subtotal float64, now time.Time) CouponResponse {
	if !coupon.Active {
		return CouponResponse{Valid: false, Message: "Coupon is not active"}
	}
	if now.After(coupon.ExpiresAt) {
		return CouponResponse{Valid: false, Message: "Coupon has expired"}
	}
	if subtotal < coupon.MinSpend {
		return CouponResponse{Valid: false, Message: fmt.Sprintf("Minimum spend of %.2f not met", coupon.MinSpend)}
	}

	discount := coupon.Fixed
	if coupon.Percent > 0 {
		discount += subtotal * coupon.Percent / 100
	}
	if discount > subtotal {
		discount = subtotal
	}

	return CouponResponse{Valid: true, Discount: discount, Message: "Coupon applied"}
}

func ValidateCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	code := strings.TrimSpace(strings.ToLower(req.Code))
	if code == "" {
		utils.RespondWithJSON(w, http.StatusOK, CouponResponse{Valid: false, Message: "No coupon provided"})
		return
	}

	var coupon models.Coupon
	err := db.CouponsCollection.FindOne(r.Context(), bson.M{"code": code}).Decode(&coupon)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusOK, CouponResponse{Valid: false, Message: "Unknown coupon"})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, Evaluate(coupon, req.Cart, time.Now()))
}

// --- Admin CRUD ---

func ListCoupons(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.CouponsCollection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Failed to fetch coupons", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var all []models.Coupon
	if err := cursor.All(ctx, &all); err != nil {
		http.Error(w, "Failed to decode coupons", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "data": all})
}

func CreateCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var body models.Coupon
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	body.Code = strings.TrimSpace(strings.ToLower(body.Code))
	if body.Code == "" {
		http.Error(w, "Coupon code is required", http.StatusBadRequest)
		return
	}
	if body.Percent < 0 || body.Percent > 100 || body.Fixed < 0 {
		http.Error(w, "Invalid discount values", http.StatusBadRequest)
		return
	}
	if body.Percent == 0 && body.Fixed == 0 {
		http.Error(w, "Coupon must carry a discount", http.StatusBadRequest)
		return
	}

	count, err := db.CouponsCollection.CountDocuments(ctx, bson.M{"code": body.Code})
	if err == nil && count > 0 {
		http.Error(w, "Coupon code already exists", http.StatusConflict)
		return
	}

	body.CreatedAt = time.Now()
	if _, err := db.CouponsCollection.InsertOne(ctx, body); err != nil {
		http.Error(w, "Failed to insert coupon", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"ok": true, "data": body})
}

func UpdateCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	code := strings.ToLower(ps.ByName("code"))

	var body struct {
		Percent   *float64   `json:"percent"`
		Fixed     *float64   `json:"fixed"`
		MinSpend  *float64   `json:"minSpend"`
		ExpiresAt *time.Time `json:"expiresAt"`
		Active    *bool      `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	update := bson.M{}
	if body.Percent != nil {
		update["percent"] = *body.Percent
	}
	if body.Fixed != nil {
		update["fixed"] = *body.Fixed
	}
	if body.MinSpend != nil {
		update["minSpend"] = *body.MinSpend
	}
	if body.ExpiresAt != nil {
		update["expiresAt"] = *body.ExpiresAt
	}
	if body.Active != nil {
		update["active"] = *body.Active
	}
	if len(update) == 0 {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	res, err := db.CouponsCollection.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$set": update})
	if err != nil {
		http.Error(w, "Failed to update coupon", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Coupon not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func DeleteCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	code := strings.ToLower(ps.ByName("code"))

	res, err := db.CouponsCollection.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		http.Error(w, "Failed to delete coupon", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Coupon not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}
