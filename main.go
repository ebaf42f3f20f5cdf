package main

import (
	"CookShare-Backend/cmd/config"
	migration "CookShare-Backend/cmd/database/migrate"
	"CookShare-Backend/cmd/database/seed"
	"CookShare-Backend/internal/utils"
	"CookShare-Backend/internal/utils/logging"
	"context"
	"flag"
	"log"

	"go.uber.org/zap"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "run database migrations and exit")
	ingredientsFile := flag.String("ingredients", "", "path to an ingredients JSON file to import")
	tagsFile := flag.String("tags", "", "path to a tags JSON file to import")
	flag.Parse()

	utils.LoadConfig()
	logging.InitializeLogger()
	defer logging.Close()
	logger := logging.GetLogger()

	db, err := config.ConnectDB()
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	if err := migration.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	if *ingredientsFile != "" || *tagsFile != "" {
		if err := seed.LoadReferenceData(context.Background(), db, *ingredientsFile, *tagsFile); err != nil {
			logger.Fatal("reference data import failed", zap.Error(err))
		}
	}

	if *migrateOnly {
		return
	}

	app, err := config.NewApp(db)
	if err != nil {
		logger.Fatal("app setup failed", zap.Error(err))
	}

	port := utils.GetConfig("APP_PORT")
	logger.Info("starting server", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
