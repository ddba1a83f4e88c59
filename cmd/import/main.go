package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"dose-planner/internal/database"
	"dose-planner/internal/importer"
	"dose-planner/internal/repository"
)

func main() {
	var csvPath, dbPath string
	flag.StringVar(&csvPath, "file", "", "path to medicine CSV file")
	flag.StringVar(&dbPath, "db", "", "path to database file (defaults to DATABASE_PATH)")
	flag.Parse()

	if csvPath == "" {
		log.Fatal("usage: import -file <medicines.csv> [-db <planner.db>]")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if dbPath == "" {
		dbPath = os.Getenv("DATABASE_PATH")
	}
	if dbPath == "" {
		dbPath = "./data/planner.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", csvPath, err)
	}
	defer f.Close()

	imp := importer.NewImporter(repository.NewMedicineRepository(db))
	result, err := imp.ImportCSV(f)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import complete: %d imported, %d skipped, %d failed",
		result.Imported, result.Skipped, result.Failed)
}
