package message

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "genbot-api/internal/domain/conversation"
	"genbot-api/internal/infrastructure/database/entities"
	"genbot-api/internal/utils/platformerrors"
)

// Repository persists messages.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a message repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts the message. Conflicts on the platform message id are ignored
// so redelivered webhook payloads do not duplicate rows; created reports
// whether a new row was written.
func (r *Repository) Save(ctx context.Context, msg *domain.Message) (bool, error) {
	entity := entities.NewSchemaMessage(msg)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform_message_id"}},
			DoNothing: true,
		}).
		Create(entity)
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"message.save",
			fmt.Sprintf("failed to save message %s", msg.PlatformMessageID),
			result.Error,
		)
	}

	created := result.RowsAffected > 0
	if created {
		msg.ID = entity.ID
		msg.CreatedAt = entity.CreatedAt
	}
	return created, nil
}

// History returns the user's limit most recent messages, presented oldest
// first. The query selects newest-first so the limit keeps the tail of the
// conversation, then the slice is flipped back into chronological order.
func (r *Repository) History(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []entities.Message
	if err := query.Find(&records).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"message.history",
			fmt.Sprintf("failed to load history for user %s", userID),
			err,
		)
	}

	return chronological(records), nil
}

// chronological maps newest-first records into oldest-first domain messages.
func chronological(records []entities.Message) []domain.Message {
	result := make([]domain.Message, len(records))
	for i := range records {
		result[len(records)-1-i] = *records[i].EtoD()
	}
	return result
}
