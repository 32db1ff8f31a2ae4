package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"

	"flashxship-api/cart"
	"flashxship-api/config"
	"flashxship-api/database"
	"flashxship-api/handlers"
	"flashxship-api/middleware"
	"flashxship-api/queue"
	"flashxship-api/services/auth"
	"flashxship-api/services/email"
	"flashxship-api/services/payment/stripe"
	"flashxship-api/worker"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware records slow requests and errors; the happy path stays
// quiet.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		elapsed := time.Since(start)
		if elapsed > 500*time.Millisecond || wrapper.status >= 400 {
			log.Printf(
				"%s %s %s %d %v",
				r.Method,
				r.RequestURI,
				r.RemoteAddr,
				wrapper.status,
				elapsed,
			)
		}
	})
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds | log.LUTC)

	numCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(numCPU)
	log.Printf("Server starting with %d CPUs available", numCPU)

	cfg := config.Load()
	log.Printf("Configuration loaded successfully")

	var db *database.Connection
	var err error
	for retries := 0; retries < 5; retries++ {
		db, err = database.NewConnection(cfg.Database)
		if err == nil {
			break
		}
		retryDelay := time.Duration(retries+1) * time.Second
		log.Printf("Failed to connect to database (attempt %d/5): %v. Retrying in %v...",
			retries+1, err, retryDelay)
		time.Sleep(retryDelay)
	}

	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.GetDB().PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Successfully connected to database")

	jobQueue, err := queue.NewQueue(cfg.Redis.URL, "notification_jobs")
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer jobQueue.Close()
	log.Println("Successfully connected to Redis")

	// The cart store shares the queue's Redis connection pool.
	cartStore := cart.NewRedisStore(jobQueue.Client())

	rateLimiter, err := middleware.NewRateLimiter(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	defer rateLimiter.Close()

	authService := auth.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, db)
	emailService := email.NewSMTPService(cfg.SMTP)
	stripeClient := stripe.NewClient(cfg.Stripe.SecretKey)

	workerConcurrency := cfg.Redis.WorkerConcurrency
	if workerConcurrency < 2 {
		workerConcurrency = 2
	} else if workerConcurrency > 8 {
		workerConcurrency = 8
	}

	notificationWorker := worker.NewWorker(jobQueue, emailService)
	notificationWorker.Start(workerConcurrency)
	defer notificationWorker.Stop()

	authHandler := handlers.NewAuthHandler(authService, db, jobQueue, cfg.Server.FrontendURL)
	cartHandler := handlers.NewCartHandler(db, cartStore, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	orderHandler := handlers.NewOrderHandler(db, cartStore)
	checkoutHandler := handlers.NewCheckoutHandler(db, stripeClient, jobQueue, cfg)
	adminHandler := handlers.NewAdminHandler(db, jobQueue, cfg)
	contactHandler := handlers.NewContactHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)
	router.Use(middleware.SecurityHeadersMiddleware)
	router.Use(rateLimiter.RateLimitMiddleware())

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.OptionalAuth(authService))

	authOnly := middleware.AuthMiddleware(authService)
	staffOnly := func(next http.Handler) http.Handler {
		return authOnly(middleware.RequireStaff()(next))
	}
	protect := func(h http.HandlerFunc) http.Handler { return authOnly(h) }
	admin := func(h http.HandlerFunc) http.Handler { return staffOnly(h) }

	// Accounts
	api.HandleFunc("/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	api.HandleFunc("/password-reset", authHandler.RequestPasswordReset).Methods("POST", "OPTIONS")
	api.HandleFunc("/password-reset/confirm", authHandler.ConfirmPasswordReset).Methods("POST", "OPTIONS")
	api.Handle("/user", protect(authHandler.GetCurrentUser)).Methods("GET", "OPTIONS")
	api.Handle("/user", protect(authHandler.UpdateProfile)).Methods("PUT", "OPTIONS")

	// Catalog
	api.HandleFunc("/products", catalogHandler.GetProducts).Methods("GET", "OPTIONS")
	api.HandleFunc("/products/{id:[0-9]+}", catalogHandler.GetProduct).Methods("GET", "OPTIONS")
	api.HandleFunc("/equipment", catalogHandler.GetEquipment).Methods("GET", "OPTIONS")
	api.HandleFunc("/equipment/{id:[0-9]+}", catalogHandler.GetEquipmentItem).Methods("GET", "OPTIONS")
	api.HandleFunc("/product-categories", catalogHandler.GetProductCategories).Methods("GET", "OPTIONS")
	api.HandleFunc("/equipment-categories", catalogHandler.GetEquipmentCategories).Methods("GET", "OPTIONS")

	api.Handle("/products", admin(catalogHandler.CreateProduct)).Methods("POST", "OPTIONS")
	api.Handle("/products/{id:[0-9]+}", admin(catalogHandler.UpdateProduct)).Methods("PUT", "OPTIONS")
	api.Handle("/products/{id:[0-9]+}", admin(catalogHandler.DeleteProduct)).Methods("DELETE", "OPTIONS")
	api.Handle("/equipment", admin(catalogHandler.CreateEquipment)).Methods("POST", "OPTIONS")
	api.Handle("/equipment/{id:[0-9]+}", admin(catalogHandler.UpdateEquipment)).Methods("PUT", "OPTIONS")
	api.Handle("/equipment/{id:[0-9]+}", admin(catalogHandler.DeleteEquipment)).Methods("DELETE", "OPTIONS")
	api.Handle("/product-categories", admin(catalogHandler.CreateProductCategory)).Methods("POST", "OPTIONS")
	api.Handle("/product-categories/{id:[0-9]+}", admin(catalogHandler.DeleteProductCategory)).Methods("DELETE", "OPTIONS")
	api.Handle("/equipment-categories", admin(catalogHandler.CreateEquipmentCategory)).Methods("POST", "OPTIONS")
	api.Handle("/equipment-categories/{id:[0-9]+}", admin(catalogHandler.DeleteEquipmentCategory)).Methods("DELETE", "OPTIONS")

	// Cart; anonymous visitors get a cookie-backed session cart
	api.HandleFunc("/cart", cartHandler.GetCart).Methods("GET", "OPTIONS")
	api.HandleFunc("/cart", cartHandler.AddToCart).Methods("POST", "OPTIONS")
	api.HandleFunc("/cart", cartHandler.UpdateQuantity).Methods("PUT", "OPTIONS")
	api.HandleFunc("/cart/days", cartHandler.UpdateDays).Methods("PUT", "OPTIONS")
	api.HandleFunc("/cart/remove", cartHandler.RemoveFromCart).Methods("POST", "OPTIONS")
	api.HandleFunc("/cart", cartHandler.ClearCart).Methods("DELETE", "OPTIONS")
	api.Handle("/merge-cart", protect(cartHandler.MergeCart)).Methods("POST", "OPTIONS")

	// Orders and payment
	api.Handle("/orders", protect(orderHandler.CreateOrder)).Methods("POST", "OPTIONS")
	api.Handle("/orders", protect(orderHandler.GetOrders)).Methods("GET", "OPTIONS")
	api.Handle("/orders/{id:[0-9]+}", protect(orderHandler.GetOrder)).Methods("GET", "OPTIONS")
	api.Handle("/checkout/session", protect(checkoutHandler.CreateCheckoutSession)).Methods("POST", "OPTIONS")
	api.HandleFunc("/stripe/webhook", checkoutHandler.StripeWebhook).Methods("POST")

	// Contact and reviews
	api.HandleFunc("/contact", contactHandler.SubmitMessage).Methods("POST", "OPTIONS")
	api.HandleFunc("/reviews", reviewHandler.GetReviews).Methods("GET", "OPTIONS")
	api.HandleFunc("/reviews", reviewHandler.CreateReview).Methods("POST", "OPTIONS")

	// Back office
	api.Handle("/admin/orders/{id:[0-9]+}/{action}", admin(adminHandler.UpdateOrderStatus)).Methods("PUT", "OPTIONS")
	api.Handle("/admin/dashboard", admin(adminHandler.GetDashboardStats)).Methods("GET", "OPTIONS")
	api.Handle("/admin/messages", admin(adminHandler.GetMessages)).Methods("GET", "OPTIONS")
	api.Handle("/admin/messages/{id:[0-9]+}/respond", admin(adminHandler.RespondToMessage)).Methods("POST", "OPTIONS")
	api.Handle("/admin/reviews/{id:[0-9]+}/approve", admin(reviewHandler.ApproveReview)).Methods("PUT", "OPTIONS")
	api.Handle("/admin/reviews/{id:[0-9]+}", admin(reviewHandler.DeleteReview)).Methods("DELETE", "OPTIONS")
	api.Handle("/admin/jobs/failed", admin(adminHandler.GetFailedJobs)).Methods("GET", "OPTIONS")
	api.Handle("/admin/jobs/{id:[0-9]+}/retry", admin(adminHandler.RetryFailedJob)).Methods("POST", "OPTIONS")

	startTime := time.Now()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		health := struct {
			Status    string `json:"status"`
			Time      string `json:"time"`
			Database  string `json:"database"`
			Redis     string `json:"redis"`
			Uptime    string `json:"uptime"`
			GoVersion string `json:"go_version"`
		}{
			Status:    "ok",
			Time:      time.Now().Format(time.RFC3339),
			Database:  "connected",
			Redis:     "connected",
			Uptime:    fmt.Sprintf("%v", time.Since(startTime)),
			GoVersion: runtime.Version(),
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer dbCancel()

		if err := db.GetDB().PingContext(dbCtx); err != nil {
			health.Status = "degraded"
			health.Database = "error"
		}

		redisCtx, redisCancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer redisCancel()

		if err := jobQueue.Client().Ping(redisCtx).Err(); err != nil {
			health.Status = "degraded"
			health.Redis = "error"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	}).Methods("GET")

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	<-stop
	log.Println("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Stopping notification worker...")
	notificationWorker.Stop()

	time.Sleep(2 * time.Second)

	log.Println("Closing database connections...")
	db.Close()

	log.Println("Closing Redis connections...")
	jobQueue.Close()

	log.Println("Server exited properly")
}
