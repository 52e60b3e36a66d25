package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/craftbill/invoice-service/internal/config"
	"github.com/craftbill/invoice-service/internal/handler"
	"github.com/craftbill/invoice-service/internal/integrations/rates"
	"github.com/craftbill/invoice-service/internal/middleware"
	"github.com/craftbill/invoice-service/internal/repository"
	"github.com/craftbill/invoice-service/internal/scheduler"
	"github.com/craftbill/invoice-service/internal/service"
	"github.com/craftbill/invoice-service/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger, cfg)
	h := handler.NewHandler(svc)
	mailer := email.NewSender(cfg, logger)
	ratesClient := rates.NewClient(cfg, logger)

	// Start recurring billing jobs
	sched := scheduler.NewScheduler(svc, mailer, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Daily exchange rate endpoint
	r.HandleFunc("/rates/{currency}", func(w http.ResponseWriter, r *http.Request) {
		currency := mux.Vars(r)["currency"]
		rate, err := ratesClient.GetDailyRate(currency)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"rate": rate})
	}).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/clients", h.CreateClient).Methods("POST")
	authRouter.HandleFunc("/clients", h.ListClients).Methods("GET")
	authRouter.HandleFunc("/clients/{id}", h.GetClient).Methods("GET")
	authRouter.HandleFunc("/clients/{id}", h.UpdateClient).Methods("PUT")
	authRouter.HandleFunc("/clients/{id}", h.ArchiveClient).Methods("DELETE")
	authRouter.HandleFunc("/clients/{id}/jobs", h.CreateJob).Methods("POST")
	authRouter.HandleFunc("/clients/{id}/jobs", h.ListJobs).Methods("GET")
	authRouter.HandleFunc("/jobs/{id}/complete", h.CompleteJob).Methods("POST")
	authRouter.HandleFunc("/clients/{id}/contracts", h.CreateContract).Methods("POST")
	authRouter.HandleFunc("/clients/{id}/contracts", h.ListContracts).Methods("GET")
	authRouter.HandleFunc("/contracts/{id}/send", h.SendContract).Methods("POST")
	authRouter.HandleFunc("/contracts/{id}/sign", h.SignContract).Methods("POST")
	authRouter.HandleFunc("/clients/{id}/subscriptions", h.CreateSubscription).Methods("POST")
	authRouter.HandleFunc("/clients/{id}/subscriptions", h.ListSubscriptions).Methods("GET")
	authRouter.HandleFunc("/subscriptions/{id}", h.CancelSubscription).Methods("DELETE")
	authRouter.HandleFunc("/invoices", h.CreateInvoice).Methods("POST")
	authRouter.HandleFunc("/invoices", h.ListInvoices).Methods("GET")
	authRouter.HandleFunc("/invoices/{id}", h.GetInvoice).Methods("GET")
	authRouter.HandleFunc("/invoices/{id}", h.DeleteInvoice).Methods("DELETE")
	authRouter.HandleFunc("/invoices/{id}/send", h.SendInvoice).Methods("POST")
	authRouter.HandleFunc("/invoices/{id}/pay", h.PayInvoice).Methods("POST")
	authRouter.HandleFunc("/invoices/{id}/write-off", h.WriteOffInvoice).Methods("POST")
	authRouter.HandleFunc("/invoices/{id}/schedules", h.AddSchedule).Methods("POST")
	authRouter.HandleFunc("/invoices/{id}/schedules", h.ListSchedules).Methods("GET")
	authRouter.HandleFunc("/invoices/{id}/schedules/{scheduleID}", h.EditSchedule).Methods("PATCH")
	authRouter.HandleFunc("/invoices/{id}/schedules/{scheduleID}", h.DeleteSchedule).Methods("DELETE")
	authRouter.HandleFunc("/invoices/{id}/schedules/{scheduleID}/pay", h.PaySchedule).Methods("POST")

	// Admin routes
	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware(repo))
	adminRouter.HandleFunc("/users", h.AdminListUsers).Methods("GET")
	adminRouter.HandleFunc("/invoices/{id}/schedules/{scheduleID}", h.AdminDeleteSchedule).Methods("DELETE")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
