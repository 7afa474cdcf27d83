// Package activity keeps the append-only log of who changed what.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"propdesk-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.ActivityAction
	Description string
	Before      any
	After       any
}

type Filter struct {
	EntityType string
	EntityID   uint
	UserID     uint
	Limit      int
}

const (
	defaultLimit = 100
	maxLimit     = 500
)

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Write(ctx context.Context, opts LogOptions) error {
	entry := models.ActivityLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}

// Record writes the entry and only logs a failure; the change it describes already happened.
func (r *Recorder) Record(ctx context.Context, opts LogOptions) {
	if r == nil {
		return
	}
	if err := r.Write(ctx, opts); err != nil {
		log.Printf("activity log not written: %v", err)
	}
}

// List returns the newest entries first.
func (r *Recorder) List(ctx context.Context, f Filter) ([]models.ActivityLog, error) {
	q := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID > 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var logs []models.ActivityLog
	if err := q.Order("created_at desc").Order("id desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return logs, nil
}

// snapshot encodes v as JSON; nil and unencodable values become "null".
func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
