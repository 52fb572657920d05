package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "genbot-api/internal/domain/conversation"
	"genbot-api/internal/infrastructure/database/entities"
	"genbot-api/internal/utils/platformerrors"
)

// Repository persists conversation metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate returns the user's most recently created conversation, creating
// one when none exists. A non-empty displayName backfills a conversation
// created before the name was known.
func (r *Repository) GetOrCreate(ctx context.Context, userID, displayName string) (*domain.Conversation, error) {
	var entity entities.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&entity).Error

	if err == nil {
		if displayName != "" && entity.DisplayName == nil {
			entity.DisplayName = &displayName
			if updateErr := r.db.WithContext(ctx).Model(&entity).Update("display_name", displayName).Error; updateErr != nil {
				return nil, platformerrors.NewError(
					ctx,
					platformerrors.LayerRepository,
					platformerrors.ErrorTypeStore,
					"conversation.update_display_name",
					fmt.Sprintf("failed to update display name for user %s", userID),
					updateErr,
				)
			}
		}
		return entity.EtoD(), nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"conversation.find_latest",
			fmt.Sprintf("failed to fetch conversation for user %s", userID),
			err,
		)
	}

	entity = entities.Conversation{
		PublicID: "conv_" + uuid.NewString(),
		UserID:   userID,
	}
	if displayName != "" {
		entity.DisplayName = &displayName
	}

	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"conversation.create",
			fmt.Sprintf("failed to create conversation for user %s", userID),
			err,
		)
	}

	return entity.EtoD(), nil
}

// List fetches conversations ordered by most recent activity, with the total
// count for pagination.
func (r *Repository) List(ctx context.Context, pagination *domain.Pagination) ([]*domain.Conversation, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Conversation{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"conversation.count",
			"failed to count conversations",
			err,
		)
	}

	if pagination != nil {
		offset := (pagination.Page - 1) * pagination.PageSize
		query = query.Offset(offset).Limit(pagination.PageSize)
	}

	var records []entities.Conversation
	if err := query.Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"conversation.list",
			"failed to list conversations",
			err,
		)
	}

	result := make([]*domain.Conversation, len(records))
	for i := range records {
		result[i] = records[i].EtoD()
	}
	return result, total, nil
}
