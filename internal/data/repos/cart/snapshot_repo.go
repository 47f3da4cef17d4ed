package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// SnapshotRepo persists one named cart record per session: the durable local
// snapshot the engine rehydrates from at session start.
type SnapshotRepo interface {
	Save(ctx context.Context, sessionID uuid.UUID, items []domain.LineItem) error
	Load(ctx context.Context, sessionID uuid.UUID) ([]domain.LineItem, bool, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return &snapshotRepo{db: db, log: baseLog.With("repo", "CartSnapshotRepo")}
}

func (r *snapshotRepo) Save(ctx context.Context, sessionID uuid.UUID, items []domain.LineItem) error {
	if sessionID == uuid.Nil {
		return nil
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}
	row := &domain.CartRecord{
		ID:        uuid.New(),
		SessionID: sessionID,
		Items:     datatypes.JSON(payload),
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"items",
				"updated_at",
			}),
		}).
		Create(row).Error
}

// Load returns (nil, false, nil) when no record exists. A record whose
// payload fails to decode reports an error so the caller can fall back to an
// empty cart instead of failing construction.
func (r *snapshotRepo) Load(ctx context.Context, sessionID uuid.UUID) ([]domain.LineItem, bool, error) {
	if sessionID == uuid.Nil {
		return nil, false, nil
	}
	var row domain.CartRecord
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Limit(1).Find(&row).Error; err != nil {
		return nil, false, err
	}
	if row.ID == uuid.Nil {
		return nil, false, nil
	}
	var items []domain.LineItem
	if err := json.Unmarshal(row.Items, &items); err != nil {
		return nil, false, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, true, nil
}

func (r *snapshotRepo) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&domain.CartRecord{}).Error
}
