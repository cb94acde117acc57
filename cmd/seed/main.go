// Command seed populates a catalog database with sample public domain books.
// Usage: go run cmd/seed/main.go [-db path/to/libris.db]
package main

import (
	"flag"
	"log"
	"os"

	"github.com/mkowalik/libris/internal/audit"
	"github.com/mkowalik/libris/internal/config"
	"github.com/mkowalik/libris/internal/database"
	auditdb "github.com/mkowalik/libris/internal/database/audit"
	"github.com/mkowalik/libris/internal/database/authors"
	"github.com/mkowalik/libris/internal/database/books"
	"github.com/mkowalik/libris/internal/database/categories"
	"github.com/mkowalik/libris/internal/entities"
)

func main() {
	dbPath := flag.String("db", config.DefaultDatabasePath, "path to the database file")
	flag.Parse()

	log.Printf("Seeding catalog database at %s...", *dbPath)

	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	recorder := audit.NewRecorder(auditdb.NewRepository(db.DB))
	authorRepo := authors.NewRepository(db.DB, recorder, db.Notifiers)
	bookRepo := books.NewRepository(db.DB, recorder, db.Notifiers)
	categoryRepo := categories.NewRepository(db.DB, recorder, db.Notifiers)

	authorIDs := seedAuthors(authorRepo)
	categoryIDs := seedCategories(categoryRepo)
	seedBooks(bookRepo, authorIDs, categoryIDs)

	log.Println("Catalog database seeded successfully!")
}

func seedAuthors(repo *authors.Repository) map[string]string {
	samples := []entities.Author{
		{Name: "George Orwell", Nationality: "British"},
		{Name: "Jane Austen", Nationality: "British"},
		{Name: "Jules Verne", Nationality: "French"},
		{Name: "Mary Shelley", Nationality: "British"},
	}

	ids := make(map[string]string)
	for _, sample := range samples {
		author, err := repo.Insert(sample, "seed")
		if err != nil {
			log.Printf("Failed to seed author %s: %v", sample.Name, err)
			continue
		}
		ids[author.Name] = author.ID
		log.Printf("Seeded author: %s", author.Name)
	}
	return ids
}

func seedCategories(repo *categories.Repository) map[string]string {
	ids := make(map[string]string)
	for _, existing := range mustList(repo) {
		ids[existing.Name] = existing.ID
	}

	fictionID := ids["Fiction"]
	subcategories := []entities.Category{
		{Name: "Science Fiction", ParentID: &fictionID},
		{Name: "Gothic", ParentID: &fictionID},
	}
	for _, sample := range subcategories {
		category, err := repo.Insert(sample, "seed")
		if err != nil {
			log.Printf("Failed to seed category %s: %v", sample.Name, err)
			continue
		}
		ids[category.Name] = category.ID
		log.Printf("Seeded category: %s (level %d)", category.Name, category.Level)
	}
	return ids
}

func mustList(repo *categories.Repository) []entities.Category {
	existing, err := repo.GetAll()
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	return existing
}

type bookSeed struct {
	book       entities.Book
	authorName string
	category   string
}

func seedBooks(repo *books.Repository, authorIDs, categoryIDs map[string]string) {
	samples := []bookSeed{
		{
			book: entities.Book{
				Title: "Nineteen Eighty-Four", ISBN: "9780452284234",
				Publisher: "Secker & Warburg", PublishYear: 1949,
				PageCount: 328, Language: "en", Location: "A-1",
			},
			authorName: "George Orwell",
			category:   "Science Fiction",
		},
		{
			book: entities.Book{
				Title: "Pride and Prejudice", ISBN: "9780306406157",
				Publisher: "T. Egerton", PublishYear: 1813,
				PageCount: 432, Language: "en", Location: "A-2",
			},
			authorName: "Jane Austen",
			category:   "Fiction",
		},
		{
			book: entities.Book{
				Title: "Twenty Thousand Leagues Under the Seas", ISBN: "0306406152",
				Publisher: "Pierre-Jules Hetzel", PublishYear: 1872,
				PageCount: 517, Language: "fr", Location: "B-1",
			},
			authorName: "Jules Verne",
			category:   "Science Fiction",
		},
		{
			book: entities.Book{
				Title: "Frankenstein", ISBN: "0452284236",
				Publisher: "Lackington, Hughes", PublishYear: 1818,
				PageCount: 280, Language: "en", Location: "B-2",
			},
			authorName: "Mary Shelley",
			category:   "Gothic",
		},
	}

	for _, sample := range samples {
		authorID, ok := authorIDs[sample.authorName]
		if !ok {
			log.Printf("Skipping %s: author %s not seeded", sample.book.Title, sample.authorName)
			continue
		}

		book, err := repo.InsertWithAuthors(sample.book, []string{authorID}, nil, "seed")
		if err != nil {
			log.Printf("Failed to seed book %s: %v", sample.book.Title, err)
			continue
		}

		if categoryID, ok := categoryIDs[sample.category]; ok {
			if err := repo.SetCategories(book.ID, []string{categoryID}, "seed"); err != nil {
				log.Printf("Failed to categorize %s: %v", book.Title, err)
			}
		}
		log.Printf("Seeded book: %s by %s", book.Title, sample.authorName)
	}
}
