package recovery

import (
	"context"
	"log"
	"net/http"
	"time"

	"plateful/db"
	"plateful/models"
	"plateful/mq"
	"plateful/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// A cart counts as abandoned when untouched this long.
	abandonAfter = 2 * time.Hour
	// Minimum gap between recovery emails to the same user.
	suppressFor = 24 * time.Hour

	scanInterval = 15 * time.Minute
)

// StartWorker scans for abandoned carts on a ticker until ctx is cancelled.
func StartWorker(ctx context.Context) {
	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	log.Println("Cart recovery worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Cart recovery worker stopped")
			return
		case <-ticker.C:
			if err := scanOnce(ctx, time.Now()); err != nil {
				log.Println("Cart recovery scan failed:", err)
			}
		}
	}
}

// scanOnce finds users whose carts went stale, sends each at most one
// recovery email per suppression window, and records the attempt.
func scanOnce(ctx context.Context, now time.Time) error {
	cursor, err := db.CartCollection.Find(ctx, bson.M{
		"touchedAt": bson.M{"$lt": now.Add(-abandonAfter)},
	})
	if err != nil {
		return err
	}
	var stale []models.CartItem
	if err := cursor.All(ctx, &stale); err != nil {
		return err
	}

	type bucket struct {
		items    int
		subtotal float64
	}
	byUser := make(map[string]*bucket)
	for _, item := range stale {
		b := byUser[item.UserID]
		if b == nil {
			b = &bucket{}
			byUser[item.UserID] = b
		}
		b.items += item.Quantity
		b.subtotal += item.Price * float64(item.Quantity)
	}

	for userID, b := range byUser {
		if suppressed(ctx, userID, now) {
			continue
		}

		var user models.User
		if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err != nil {
			continue
		}
		if user.Email == "" {
			continue
		}

		record := models.RecoveryEmail{
			UserID:   userID,
			Email:    user.Email,
			Items:    b.items,
			Subtotal: b.subtotal,
			SentAt:   now,
		}
		if _, err := db.RecoveryEmailsCollection.InsertOne(ctx, record); err != nil {
			log.Println("Cart recovery: failed to record attempt:", err)
			continue
		}

		// Actual delivery is handled by the mail consumer downstream.
		go mq.Emit(ctx, "cart-abandoned", models.Index{
			EntityType: "cart",
			EntityId:   userID,
			Method:     "POST",
		})
		log.Printf("Cart recovery: queued email to %s (%d items)", user.Email, b.items)
	}
	return nil
}

func suppressed(ctx context.Context, userID string, now time.Time) bool {
	err := db.RecoveryEmailsCollection.FindOne(ctx, bson.M{
		"userId": userID,
		"sentAt": bson.M{"$gt": now.Add(-suppressFor)},
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false
	}
	if err != nil {
		log.Println("Cart recovery: suppression lookup failed:", err)
	}
	return true
}

// AdminListRecoveryEmails lists recent recovery attempts for the back office.
func AdminListRecoveryEmails(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"sentAt": -1}).SetLimit(100)
	cursor, err := db.RecoveryEmailsCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		http.Error(w, "Failed to fetch recovery emails", http.StatusInternalServerError)
		return
	}
	var records []models.RecoveryEmail
	if err := cursor.All(ctx, &records); err != nil {
		http.Error(w, "Failed to decode recovery emails", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "emails": records})
}
