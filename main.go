package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/oriolpt/senderisme/backend/config"
	"github.com/oriolpt/senderisme/backend/database"
	"github.com/oriolpt/senderisme/backend/handlers"
	"github.com/oriolpt/senderisme/backend/scraper"
	"github.com/oriolpt/senderisme/backend/services"
)

func main() {
	log.Println("Starting Senderisme Backend Application...")

	// .env is optional; it only carries DB credential overrides.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using config and environment as-is")
	}

	configPath := "config/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = "config.yaml"
		if _, errFallback := os.Stat(configPath); os.IsNotExist(errFallback) {
			log.Fatalf("Config file not found at default paths. Error: %v", errFallback)
		}
	}

	err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, DB name: %s",
		config.AppConfig.Server.Port, config.AppConfig.Database.DBName)
	log.Printf("Cultural items CSV URL: %s", config.AppConfig.CulturalDataset.CsvURL)

	err = database.InitDB(config.AppConfig.Database)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()

	store := database.NewStore(database.DB)
	tracks := scraper.NewTrackFetcher(config.AppConfig.Proximity.TrackFetchTimeout)

	proximityService := services.NewProximityService(store, tracks, config.AppConfig.Proximity)
	routeService := services.NewRouteService(store)
	preferenceService := services.NewPreferenceService(store)
	importService := services.NewCulturalImportService(store)

	routeHandler := handlers.NewRouteHandler(proximityService, routeService)
	itemHandler := handlers.NewItemHandler(proximityService)
	preferenceHandler := handlers.NewPreferenceHandler(preferenceService)
	adminHandler := handlers.NewAdminHandler(importService)

	// --- Setup HTTP routes ---
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.DB.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "senderisme backend is healthy"}`)
	})

	http.Handle("/api/routes/", routeHandler)          // trailing / to catch sub-paths
	http.Handle("/api/cultural-items/", itemHandler)   // trailing / to catch sub-paths
	http.Handle("/api/users/", preferenceHandler)      // trailing / to catch sub-paths

	http.HandleFunc("/api/admin/refresh-cultural-items", adminHandler.ForceRefreshCulturalItemsHandler)
	http.HandleFunc("/api/admin/check-update-cultural-items", adminHandler.CheckAndUpdateCulturalItemsHandler)

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	err = http.ListenAndServe(serverAddr, nil)
	if err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
