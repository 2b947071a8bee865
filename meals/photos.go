package meals

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"plateful/db"
	"plateful/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const mealPicDir = "static/mealpic"

// UploadMealPhoto accepts a multipart image for a meal, stores the original
// and a 300px thumbnail, and records the paths on the meal document.
func UploadMealPhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	mealID := ps.ByName("mealid")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["photo"]
	if len(files) == 0 {
		http.Error(w, "Photo file is required", http.StatusBadRequest)
		return
	}

	photoPath, thumbPath, err := processMealPhoto(files[0])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res, err := db.MealsCollection.UpdateOne(ctx, bson.M{"mealId": mealID},
		bson.M{"$set": bson.M{"photo": photoPath, "thumb": thumbPath, "updatedAt": time.Now()}})
	if err != nil {
		http.Error(w, "Failed to update meal photo", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Meal not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"photo": photoPath,
		"thumb": thumbPath,
	})
}

func processMealPhoto(file *multipart.FileHeader) (string, string, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	uniqueID := uuid.New().String()
	fileName := uniqueID + ".jpg"

	originalPath := filepath.Join(mealPicDir, fileName)
	thumbDir := filepath.Join(mealPicDir, "thumb")
	thumbnailPath := filepath.Join(thumbDir, fileName)

	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := imaging.Save(img, originalPath); err != nil {
		return "", "", fmt.Errorf("failed to save original image: %w", err)
	}

	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, thumbnailPath); err != nil {
		return "", "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/static/mealpic/" + fileName, "/static/mealpic/thumb/" + fileName, nil
}
