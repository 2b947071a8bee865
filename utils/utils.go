package utils

import (
	rndm "math/rand"
	"net/http"
	"strconv"
	"strings"

	"plateful/globals"
	"plateful/middleware"
)

// --- Random String and ID Generators ---

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

// --- Request Helpers ---

func GetUserIDFromRequest(r *http.Request) string {
	ctx := r.Context()
	requestingUserID, ok := ctx.Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetUsernameFromRequest(r *http.Request) string {
	tokenString := r.Header.Get("Authorization")
	claims, err := middleware.ValidateJWT(tokenString)
	if err != nil {
		return ""
	}
	return claims.Username
}

// --- Query Options ---

type QueryOptions struct {
	Page     int
	Limit    int
	Search   string
	Category string
	Dietary  string
	Sort     string
	MinPrice *float64
	MaxPrice *float64
}

func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}

	var minPrice, maxPrice *float64
	if s := q.Get("min_price"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			minPrice = &v
		}
	}
	if s := q.Get("max_price"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			maxPrice = &v
		}
	}

	return QueryOptions{
		Page:     page,
		Limit:    limit,
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Dietary:  q.Get("dietary"),
		Sort:     q.Get("sort"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}
}

func ContainsIgnoreCase(str, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}
