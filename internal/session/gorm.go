package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type record struct {
	ID        string `gorm:"primaryKey;size:128"`
	Data      []byte
	UpdatedAt time.Time
}

func (record) TableName() string { return "storefront_sessions" }

// GormBackend keeps one row per scope. Works on the sqlite and postgres drivers.
type GormBackend struct {
	DB    *gorm.DB
	codec codec
}

func NewGormBackend(ctx context.Context, db *gorm.DB, sealer *Sealer) (*GormBackend, error) {
	if err := db.WithContext(ctx).AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return &GormBackend{DB: db, codec: codec{sealer: sealer}}, nil
}

func (g *GormBackend) Load(ctx context.Context, id string) (Session, bool, error) {
	var rec record
	if err := g.DB.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	s, err := g.codec.decode(rec.Data)
	if err != nil {
		return Session{}, false, err
	}
	return s, true, nil
}

func (g *GormBackend) Save(ctx context.Context, id string, s Session) error {
	data, err := g.codec.encode(s)
	if err != nil {
		return err
	}
	rec := record{ID: id, Data: data}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
}

func (g *GormBackend) Delete(ctx context.Context, id string) error {
	return g.DB.WithContext(ctx).Where("id = ?", id).Delete(&record{}).Error
}

// Purge drops scopes untouched since before and returns their ids.
func (g *GormBackend) Purge(ctx context.Context, before time.Time) ([]string, error) {
	var ids []string
	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&record{}).Where("updated_at < ?", before.UTC()).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("id IN ?", ids).Delete(&record{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("purge sessions: %w", err)
	}
	return ids, nil
}
