package audit

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/mkowalik/libris/internal/catalog"
	"github.com/mkowalik/libris/internal/entities"
)

// Repository handles the append-only audit log. Entries are never updated;
// the only delete path is the retention purge.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append saves one audit entry.
func (r *Repository) Append(entry *entities.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return catalog.WrapStorage("append audit entry", err)
	}
	return nil
}

// List retrieves paginated audit entries, most recent first.
func (r *Repository) List(limit, offset int) ([]entities.AuditLog, int64, error) {
	return r.list(r.db.Model(&entities.AuditLog{}), limit, offset)
}

// ListByTable retrieves entries for one table, most recent first.
func (r *Repository) ListByTable(tableName string, limit, offset int) ([]entities.AuditLog, int64, error) {
	return r.list(r.db.Model(&entities.AuditLog{}).Where("table_name = ?", tableName), limit, offset)
}

// ListByRecord retrieves the mutation history of a single record.
func (r *Repository) ListByRecord(recordID string, limit, offset int) ([]entities.AuditLog, int64, error) {
	return r.list(r.db.Model(&entities.AuditLog{}).Where("record_id = ?", recordID), limit, offset)
}

func (r *Repository) list(query *gorm.DB, limit, offset int) ([]entities.AuditLog, int64, error) {
	var entries []entities.AuditLog
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, catalog.WrapStorage("count audit entries", err)
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, catalog.WrapStorage("list audit entries", err)
	}
	return entries, total, nil
}

// GetByID retrieves a single audit entry.
func (r *Repository) GetByID(id uint) (*entities.AuditLog, error) {
	var entry entities.AuditLog
	err := r.db.First(&entry, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &catalog.NotFoundError{Entity: "audit entry", ID: strconv.FormatUint(uint64(id), 10)}
	}
	if err != nil {
		return nil, catalog.WrapStorage("load audit entry", err)
	}
	return &entry, nil
}

// DeleteOldEntries removes entries older than the cutoff. This is the only
// hard delete permitted on the audit table. Returns the number removed.
func (r *Repository) DeleteOldEntries(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditLog{})
	if result.Error != nil {
		return 0, catalog.WrapStorage("purge audit entries", result.Error)
	}
	return result.RowsAffected, nil
}
