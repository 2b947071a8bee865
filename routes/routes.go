package routes

import (
	"net/http"

	"plateful/analytics"
	"plateful/auth"
	"plateful/cart"
	"plateful/categories"
	"plateful/checkout"
	"plateful/coupons"
	"plateful/ingredients"
	"plateful/meals"
	"plateful/middleware"
	"plateful/nutrition"
	"plateful/orders"
	"plateful/packages"
	"plateful/production"
	"plateful/ratelim"
	"plateful/recovery"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/mealpic/*filepath", http.Dir("static/mealpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.RefreshToken))
}

// AddCatalogRoutes wires the public storefront: browsing, nutrition, coupons.
func AddCatalogRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, nh *nutrition.Handler) {
	router.GET("/api/meals", rl.Limit(meals.GetMeals))
	router.GET("/api/meals/:mealid", meals.GetMeal)
	router.GET("/api/meals/:mealid/nutrition", nh.GetMealNutrition)
	router.GET("/api/categories", categories.ListCategories)
	router.GET("/api/packages", packages.ListPackages)
	router.POST("/api/coupons/validate", rl.Limit(coupons.ValidateCoupon))
}

func AddCartRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/cart", middleware.Authenticate(cart.GetCart))
	router.POST("/api/cart", rl.Limit(middleware.Authenticate(cart.AddToCart)))
	router.PUT("/api/cart", middleware.Authenticate(cart.UpdateQuantity))
	router.DELETE("/api/cart", middleware.Authenticate(cart.ClearCart))

	router.POST("/api/checkout", rl.Limit(middleware.Authenticate(checkout.CheckoutCart)))
	router.POST("/api/checkout/package", rl.Limit(middleware.Authenticate(checkout.CheckoutPackage)))
}

func AddOrderRoutes(router *httprouter.Router) {
	router.GET("/api/orders", middleware.Authenticate(orders.GetMyOrders))
	router.GET("/api/orders/:orderid", middleware.Authenticate(orders.GetOrder))
	router.GET("/api/orders/:orderid/receipt", middleware.Authenticate(orders.GetReceipt))
	router.PUT("/api/orders/:orderid/cancel", middleware.Authenticate(orders.CancelOrder))
}

// AddAdminRoutes wires the back office. Everything here requires the admin role.
func AddAdminRoutes(router *httprouter.Router) {
	admin := func(h httprouter.Handle) httprouter.Handle {
		return middleware.Authenticate(middleware.RequireRole("admin", h))
	}

	router.GET("/api/admin/meals", admin(meals.AdminListMeals))
	router.POST("/api/admin/meals", admin(meals.CreateMeal))
	router.PUT("/api/admin/meals/:mealid", admin(meals.UpdateMeal))
	router.DELETE("/api/admin/meals/:mealid", admin(meals.DeleteMeal))
	router.POST("/api/admin/meals/:mealid/photo", admin(meals.UploadMealPhoto))

	router.GET("/api/admin/ingredients", admin(ingredients.ListIngredients))
	router.POST("/api/admin/ingredients", admin(ingredients.CreateIngredient))
	router.PUT("/api/admin/ingredients/:ingredientid", admin(ingredients.UpdateIngredient))
	router.DELETE("/api/admin/ingredients/:ingredientid", admin(ingredients.DeleteIngredient))

	router.POST("/api/admin/categories", admin(categories.CreateCategory))
	router.PUT("/api/admin/categories/:categoryid", admin(categories.UpdateCategory))
	router.DELETE("/api/admin/categories/:categoryid", admin(categories.DeleteCategory))

	router.POST("/api/admin/packages", admin(packages.CreatePackage))
	router.PUT("/api/admin/packages/:packageid", admin(packages.UpdatePackage))
	router.DELETE("/api/admin/packages/:packageid", admin(packages.DeletePackage))

	router.GET("/api/admin/coupons", admin(coupons.ListCoupons))
	router.POST("/api/admin/coupons", admin(coupons.CreateCoupon))
	router.PUT("/api/admin/coupons/:code", admin(coupons.UpdateCoupon))
	router.DELETE("/api/admin/coupons/:code", admin(coupons.DeleteCoupon))

	router.GET("/api/admin/orders", admin(orders.AdminListOrders))
	router.PUT("/api/admin/orders/:orderid/status", admin(orders.UpdateOrderStatus))

	router.GET("/api/admin/recovery/emails", admin(recovery.AdminListRecoveryEmails))

	router.GET("/api/admin/analytics/revenue", admin(analytics.GetRevenueSummary))
	router.GET("/api/admin/analytics/popular-meals", admin(analytics.GetPopularMeals))
	router.GET("/api/admin/analytics/orders-by-day", admin(analytics.GetOrdersByDay))
}

// AddProductionRoutes wires the kitchen production engine: run control, the
// live dashboard stream, and the printable sheet.
func AddProductionRoutes(router *httprouter.Router, h *production.Handler, hub *production.Hub, runner *production.Runner) {
	admin := func(handle httprouter.Handle) httprouter.Handle {
		return middleware.Authenticate(middleware.RequireRole("admin", handle))
	}

	router.POST("/api/admin/production/run", admin(h.StartRun))
	router.POST("/api/admin/production/retry-ingredients", admin(h.RetryIngredients))
	router.GET("/api/admin/production/summary", admin(h.GetSummary))
	router.GET("/api/admin/production/sheet", admin(h.PrintSheet))
	router.GET("/ws/production", production.StreamHandler(hub, runner))
}
