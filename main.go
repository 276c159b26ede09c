package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/northmart/backend-go/config"
	"github.com/northmart/backend-go/database"
	"github.com/northmart/backend-go/handlers"
	"github.com/northmart/backend-go/jobs"
	customMiddleware "github.com/northmart/backend-go/middleware"
	"github.com/northmart/backend-go/repository/mongodb"
	"github.com/northmart/backend-go/routes"
	"github.com/northmart/backend-go/services"
)

const sweepInterval = time.Hour

func main() {
	// Load environment variables
	config.LoadEnv()
	cfg := config.New()

	// Initialize Echo
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(customMiddleware.Metrics())

	// Connect to MongoDB and Redis
	db, err := database.ConnectDB(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Repositories
	products := mongodb.NewProductRepo(db)
	carts := mongodb.NewCartRepo(db)
	orders := mongodb.NewOrderRepo(db)
	payments := mongodb.NewPaymentRepo(db)
	users := mongodb.NewUserRepo(db)

	// Background queue and services
	queue := jobs.NewQueue(redisClient, "")
	catalogService := services.NewCatalogService(products)
	cartService := services.NewCartService(carts, products)
	orderService := services.NewOrderService(orders, carts, products, queue)
	provider := services.NewStripeProvider(cfg.StripeSecretKey, cfg.WebhookSecret)
	paymentService := services.NewPaymentService(payments, orders, provider)

	// Workers: email delivery plus the inventory/order sweeps
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := jobs.NewWorker(queue)
	jobs.NewEmailJobs(users, orders, jobs.LogMailer{}).Register(worker)
	sweeper := jobs.NewSweeper(orderService, catalogService)
	sweeper.Register(worker)

	for i := 0; i < cfg.WorkerCount; i++ {
		go worker.Run(ctx)
	}
	go sweeper.RunScheduled(ctx, sweepInterval)

	// Setup routes
	routes.SetupRoutes(e, routes.Handlers{
		Auth:     handlers.NewAuthHandler(users, queue, cfg.JWTSecret),
		Products: handlers.NewProductHandler(catalogService),
		Cart:     handlers.NewCartHandler(cartService),
		Orders:   handlers.NewOrderHandler(orderService),
		Payments: handlers.NewPaymentHandler(paymentService),
	}, cfg.JWTSecret)

	// Start the server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
