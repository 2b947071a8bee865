package analytics

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"plateful/db"
	"plateful/models"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// completedStatuses are the statuses that count toward revenue.
var completedStatuses = []string{
	models.OrderDelivered,
	models.OrderCompleted,
}

// parseRange reads ?from=YYYY-MM-DD&to=YYYY-MM-DD, defaulting to the last 30 days.
func parseRange(r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now()
	from, to := now.AddDate(0, 0, -30), now

	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, false
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, false
		}
		to = t.AddDate(0, 0, 1) // inclusive end date
	}
	return from, to, true
}

// GetRevenueSummary returns order counts and revenue totals over the range,
// split across regular and package orders.
func GetRevenueSummary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	from, to, ok := parseRange(r)
	if !ok {
		http.Error(w, "from/to must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	pipeline := []bson.M{
		{"$match": bson.M{
			"createdAt": bson.M{"$gte": from, "$lt": to},
			"status":    bson.M{"$in": completedStatuses},
		}},
		{"$group": bson.M{
			"_id":      nil,
			"orders":   bson.M{"$sum": 1},
			"revenue":  bson.M{"$sum": "$total"},
			"discount": bson.M{"$sum": "$discount"},
		}},
	}

	type totals struct {
		Orders   int     `bson:"orders" json:"orders"`
		Revenue  float64 `bson:"revenue" json:"revenue"`
		Discount float64 `bson:"discount" json:"discount"`
	}

	var regular, packages totals

	cursor, err := db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		http.Error(w, "Aggregation failed", http.StatusInternalServerError)
		return
	}
	var rows []totals
	if err := cursor.All(ctx, &rows); err != nil {
		http.Error(w, "Aggregation failed", http.StatusInternalServerError)
		return
	}
	if len(rows) > 0 {
		regular = rows[0]
	}

	cursor, err = db.PackageOrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		http.Error(w, "Aggregation failed", http.StatusInternalServerError)
		return
	}
	rows = nil
	if err := cursor.All(ctx, &rows); err != nil {
		http.Error(w, "Aggregation failed", http.StatusInternalServerError)
		return
	}
	if len(rows) > 0 {
		packages = rows[0]
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"from":          from.Format("2006-01-02"),
		"to":            to.AddDate(0, 0, -1).Format("2006-01-02"),
		"orders":        regular,
		"packageOrders": packages,
		"totalRevenue":  regular.Revenue + packages.Revenue,
	})
}

// GetPopularMeals returns the most-ordered meals in the range, by quantity.
func GetPopularMeals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	from, to, ok := parseRange(r)
	if !ok {
		http.Error(w, "from/to must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	pipeline := []bson.M{
		{"$match": bson.M{
			"createdAt": bson.M{"$gte": from, "$lt": to},
			"status":    bson.M{"$nin": []string{models.OrderCancelled}},
		}},
		{"$unwind": "$items"},
		{"$group": bson.M{
			"_id":      "$items.mealId",
			"mealName": bson.M{"$first": "$items.mealName"},
			"quantity": bson.M{"$sum": "$items.quantity"},
			"revenue":  bson.M{"$sum": bson.M{"$multiply": []any{"$items.price", "$items.quantity"}}},
		}},
		{"$sort": bson.M{"quantity": -1}},
		{"$limit": 20},
	}

	cursor, err := db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		http.Error(w, "Aggregation failed", http.StatusInternalServerError)
		return
	}

	type row struct {
		MealID   string  `bson:"_id" json:"mealId"`
		MealName string  `bson:"mealName" json:"mealName"`
		Quantity int     `bson:"quantity" json:"quantity"`
		Revenue  float64 `bson:"revenue" json:"revenue"`
	}
	var rows []row
	if err := cursor.All(ctx, &rows); err != nil {
		http.Error(w, "Aggregation failed", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "meals": rows})
}

// GetOrdersByDay returns daily order counts and revenue for charting.
func GetOrdersByDay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	from, to, ok := parseRange(r)
	if !ok {
		http.Error(w, "from/to must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	pipeline := []bson.M{
		{"$match": bson.M{
			"createdAt": bson.M{"$gte": from, "$lt": to},
			"status":    bson.M{"$nin": []string{models.OrderCancelled}},
		}},
		{"$group": bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"orders":  bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$total"},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	type row struct {
		Day     string  `bson:"_id" json:"day"`
		Orders  int     `bson:"orders" json:"orders"`
		Revenue float64 `bson:"revenue" json:"revenue"`
	}

	var days []row
	for _, coll := range []*mongo.Collection{db.OrdersCollection, db.PackageOrdersCollection} {
		cursor, err := coll.Aggregate(ctx, pipeline)
		if err != nil {
			http.Error(w, "Aggregation failed", http.StatusInternalServerError)
			return
		}
		var rows []row
		if err := cursor.All(ctx, &rows); err != nil {
			http.Error(w, "Aggregation failed", http.StatusInternalServerError)
			return
		}
		days = append(days, rows...)
	}

	// Merge the two collections' rows per day.
	merged := make(map[string]*row)
	for _, d := range days {
		m := merged[d.Day]
		if m == nil {
			day := d
			merged[d.Day] = &day
			continue
		}
		m.Orders += d.Orders
		m.Revenue += d.Revenue
	}
	out := make([]row, 0, len(merged))
	for _, m := range merged {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b row) int { return strings.Compare(a.Day, b.Day) })

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "days": out})
}
