package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	MealsCollection          *mongo.Collection
	IngredientsCollection    *mongo.Collection
	CategoriesCollection     *mongo.Collection
	PackagesCollection       *mongo.Collection
	CouponsCollection        *mongo.Collection
	OrdersCollection         *mongo.Collection
	PackageOrdersCollection  *mongo.Collection
	CartCollection           *mongo.Collection
	UserCollection           *mongo.Collection
	RecoveryEmailsCollection *mongo.Collection
	Client                   *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("platefuldb")
	MealsCollection = database.Collection("meals")
	IngredientsCollection = database.Collection("ingredients")
	CategoriesCollection = database.Collection("categories")
	PackagesCollection = database.Collection("packages")
	CouponsCollection = database.Collection("coupons")
	OrdersCollection = database.Collection("orders")
	PackageOrdersCollection = database.Collection("package_orders")
	CartCollection = database.Collection("carts")
	UserCollection = database.Collection("users")
	RecoveryEmailsCollection = database.Collection("recovery_emails")
}
