package records

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"asset-registry/core/database"
	"asset-registry/core/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

// GormStore keeps records in three relational tables.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ registry.PersistentStore = (*GormStore)(nil)

// NewGormStore creates a store over db.
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormStore{db: db, logger: logger}
}

// Migrate creates or updates the record tables.
func (s *GormStore) Migrate() error {
	if err := s.db.AutoMigrate(&recordRow{}, &entryRow{}, &labelRow{}); err != nil {
		return fmt.Errorf("failed to migrate record tables: %w", err)
	}
	return nil
}

// VerifySchema checks that every record table carries the expected columns.
func (s *GormStore) VerifySchema() error {
	tables := make([]string, 0, len(schema))
	for t := range schema {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	var problems []string
	for _, t := range tables {
		missing, err := database.MissingColumns(s.db, t, schema[t])
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("%s missing %s", t, strings.Join(missing, ", ")))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("record schema mismatch: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads the record of typeName.
func (s *GormStore) Load(ctx context.Context, typeName string) (*registry.Record, error) {
	db := s.db.WithContext(ctx)

	var row recordRow
	err := db.Where("type_name = ?", typeName).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", registry.ErrRecordNotFound, typeName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record %s: %w", typeName, err)
	}

	var entries []entryRow
	if err := db.Where("type_name = ?", typeName).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to query entries of %s: %w", typeName, err)
	}
	var labels []labelRow
	if err := db.Where("type_name = ?", typeName).Order("position").Find(&labels).Error; err != nil {
		return nil, fmt.Errorf("failed to query labels of %s: %w", typeName, err)
	}

	rec := registry.NewRecord(typeName)
	rec.Group = row.GroupName
	for _, e := range entries {
		rec.Entries[e.RecordKey] = e.Value
	}
	for _, l := range labels {
		rec.Labels = append(rec.Labels, registry.LabelStart{Name: l.Name, Start: l.StartingIndex})
	}
	return rec, nil
}

// Create inserts an empty record for typeName.
func (s *GormStore) Create(ctx context.Context, typeName string) (*registry.Record, error) {
	if err := s.db.WithContext(ctx).Create(&recordRow{TypeName: typeName}).Error; err != nil {
		return nil, fmt.Errorf("failed to create record %s: %w", typeName, err)
	}
	s.logger.Info("Created registry record", zap.String("registry", typeName), zap.String("backend", BackendDatabase))
	return registry.NewRecord(typeName), nil
}

// Save replaces the record, its entries and its labels in one transaction.
func (s *GormStore) Save(ctx context.Context, rec *registry.Record) error {
	entries := make([]entryRow, 0, len(rec.Entries))
	for _, k := range rec.SortedKeys() {
		entries = append(entries, entryRow{TypeName: rec.Type, RecordKey: k, Value: rec.Entries[k]})
	}
	labels := make([]labelRow, 0, len(rec.Labels))
	for i, l := range rec.Labels {
		labels = append(labels, labelRow{TypeName: rec.Type, Name: l.Name, StartingIndex: l.Start, Position: i})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := recordRow{TypeName: rec.Type, GroupName: rec.Group}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to upsert record: %w", err)
		}

		if err := tx.Where("type_name = ?", rec.Type).Delete(&entryRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(entries, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert entries: %w", err)
			}
		}

		if err := tx.Where("type_name = ?", rec.Type).Delete(&labelRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear labels: %w", err)
		}
		if len(labels) > 0 {
			if err := tx.Create(&labels).Error; err != nil {
				return fmt.Errorf("failed to insert labels: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.Type, err)
	}
	return nil
}
