package database

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkowalik/libris/internal/entities"
	"github.com/mkowalik/libris/internal/stream"
)

// Default categories every catalog starts with. "Uncategorized" is the bucket
// detached books can be re-linked to by callers.
var defaultCategories = []string{"Uncategorized", "Fiction", "Non-Fiction"}

// Notifiers carries the per-entity change notifiers shared by the
// repositories, so a cascading write in one repository (category deletion
// soft-deleting books) can wake watchers of another.
type Notifiers struct {
	Books      *stream.Notifier
	Authors    *stream.Notifier
	Categories *stream.Notifier
}

func NewNotifiers() *Notifiers {
	return &Notifiers{
		Books:      stream.NewNotifier(),
		Authors:    stream.NewNotifier(),
		Categories: stream.NewNotifier(),
	}
}

type Database struct {
	DB        *gorm.DB
	Notifiers *Notifiers
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Author{},
		&entities.Category{},
		&entities.BookAuthor{},
		&entities.BookCategory{},
		&entities.AuditLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db, Notifiers: NewNotifiers()}

	if err := database.seedCategories(); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedCategories() error {
	for _, name := range defaultCategories {
		var existing entities.Category
		result := d.DB.Where("LOWER(name) = LOWER(?) AND is_deleted = ?", name, false).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			category := entities.Category{ID: uuid.NewString(), Name: name}
			if err := d.DB.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to create category %s: %w", name, err)
			}
			log.Printf("Created category: %s", name)
		} else if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// UncategorizedID returns the id of the default "Uncategorized" bucket.
func (d *Database) UncategorizedID() (string, error) {
	var category entities.Category
	err := d.DB.Where("LOWER(name) = LOWER(?) AND is_deleted = ?", "Uncategorized", false).First(&category).Error
	if err != nil {
		return "", err
	}
	return category.ID, nil
}
