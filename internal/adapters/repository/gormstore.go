package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sves-daq/backend/internal/domain/model"
)

// Supported SQL drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// documentRow is one document of any collection.
type documentRow struct {
	Collection string         `gorm:"column:collection;primaryKey;type:varchar(64)"`
	ID         string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	Body       datatypes.JSON `gorm:"column:body;type:json;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null;index:idx_documents_created"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;not null"`
}

func (documentRow) TableName() string { return "documents" }

// GormStore keeps documents as JSON rows in MySQL or SQLite.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm connects to driver with dsn and prepares the documents table.
func OpenGorm(ctx context.Context, driver, dsn string, opts ...GormOption) (*GormStore, error) {
	settings := gormSettings{autoMigrate: true}
	for _, opt := range opts {
		opt(&settings)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	cfg := &gorm.Config{}
	if settings.log != nil {
		cfg.Logger = newGormLogger(settings.log)
	}
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if settings.maxOpen > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", driver, err)
		}
		sqlDB.SetMaxOpenConns(settings.maxOpen)
	}
	if settings.autoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(&documentRow{}); err != nil {
			return nil, fmt.Errorf("migrate documents: %w", err)
		}
	}
	return &GormStore{db: db}, nil
}

func decodeRow(r documentRow) (model.Document, error) {
	doc := model.Document{}
	if len(r.Body) > 0 {
		if err := json.Unmarshal(r.Body, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", r.Collection, r.ID, err)
		}
	}
	return doc.With(r.ID), nil
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (doc model.Document, err error) {
	start := time.Now()
	defer func() { observe("get", collection, start, err) }()

	var row documentRow
	err = s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeRow(row)
}

func (s *GormStore) List(ctx context.Context, collection string, q Query) (out []model.Document, err error) {
	start := time.Now()
	defer func() { observe("list", collection, start, err) }()
	if err := validate(collection, q); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Model(&documentRow{}).Where("collection = ?", collection)
	for _, f := range q.Filters {
		if f.Field == model.FieldID {
			tx = tx.Where("id = ?", f.Value)
			continue
		}
		tx = tx.Where(datatypes.JSONQuery("body").Equals(f.Value, f.Field))
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	switch q.OrderBy {
	case "", model.FieldID:
		tx = tx.Order("id " + dir)
	default:
		// field names are restricted to [A-Za-z0-9_] by validate
		tx = tx.Where(datatypes.JSONQuery("body").HasKey(q.OrderBy)).
			Order(fmt.Sprintf("JSON_EXTRACT(body, '$.%s') %s", q.OrderBy, dir)).
			Order("created_at ASC")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []documentRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out = make([]model.Document, 0, len(rows))
	for _, r := range rows {
		doc, err := decodeRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *GormStore) Add(ctx context.Context, collection string, doc model.Document) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, doc, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *GormStore) Set(ctx context.Context, collection, id string, doc model.Document, merge bool) (err error) {
	start := time.Now()
	defer func() { observe("set", collection, start, err) }()
	if err := validate(collection, Query{}); err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidQuery
	}

	body := stripID(doc)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentRow
		err := tx.Where("collection = ? AND id = ?", collection, id).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			raw, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", collection, id, err)
			}
			return tx.Create(&documentRow{Collection: collection, ID: id, Body: raw}).Error
		case err != nil:
			return fmt.Errorf("set %s/%s: %w", collection, id, err)
		}

		if merge {
			prev, err := decodeRow(row)
			if err != nil {
				return err
			}
			delete(prev, model.FieldID)
			for k, v := range body {
				prev[k] = v
			}
			body = prev
		}
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", collection, id, err)
		}
		return tx.Model(&documentRow{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]any{"body": datatypes.JSON(raw), "updated_at": time.Now()}).Error
	})
}

func (s *GormStore) Count(ctx context.Context, collection string) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&documentRow{}).Where("collection = ?", collection).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return int(n), nil
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
