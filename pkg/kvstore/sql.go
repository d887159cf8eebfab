package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey"`
	Value     string    `gorm:"column:entry_value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (entry) TableName() string { return "kv_entries" }

type sequence struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value int64  `gorm:"column:value"`
}

func (sequence) TableName() string { return "kv_sequences" }

// SQL stores values in the kv_entries table created by the goose migrations.
type SQL struct {
	client *db.Client
}

func NewSQL(client *db.Client) (*SQL, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &SQL{client: client}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var row entry
	err := s.client.DB().WithContext(ctx).Where("entry_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sql get %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	row := entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.client.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("sql set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if err := s.client.DB().WithContext(ctx).Where("entry_key = ?", key).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("sql delete %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Next(ctx context.Context, name string) (int64, error) {
	var next int64
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("kv_sequences.value + 1")}),
		}).Create(&sequence{Name: name, Value: 1}).Error
		if err != nil {
			return err
		}
		var row sequence
		if err := tx.Where("name = ?", name).Take(&row).Error; err != nil {
			return err
		}
		next = row.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sql sequence %s: %w", name, err)
	}
	return next, nil
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
