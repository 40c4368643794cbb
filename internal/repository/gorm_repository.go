package repository

import (
	"context"
	"errors"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormMessageRepository 是 MessageRepository 接口的 GORM 实现。
type gormMessageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormMessageRepository 创建一个新的基于 GORM 的消息存储，表结构需提前迁移。
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Append 在数据库中插入一条消息记录，时间戳不早于该会话的上一条消息。
func (r *gormMessageRepository) Append(ctx context.Context, msg model.NewChatMessage) (model.ChatMessage, error) {
	at := r.now()
	var last model.ChatMessage
	res := r.db.WithContext(ctx).
		Where("session_id = ?", msg.SessionID).
		Order("seq DESC").
		Limit(1).
		Find(&last)
	if res.Error != nil {
		return model.ChatMessage{}, res.Error
	}
	if res.RowsAffected > 0 {
		at = clampTimestamp(at, last.Timestamp)
	}

	stored := newChatMessage(msg, at)
	if err := r.db.WithContext(ctx).Create(&stored).Error; err != nil {
		return model.ChatMessage{}, err
	}
	return stored, nil
}

// History 按自增序号（即插入顺序）返回消息。
func (r *gormMessageRepository) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	return messages, nil
}

// gormConversationRepository 是 ConversationRepository 接口的 GORM 实现。
type gormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository 创建一个新的基于 GORM 的会话摘要存储。
func NewGormConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// Touch 以 upsert 方式创建或累加会话摘要，并发的首轮请求不会丢失计数。
func (r *gormConversationRepository) Touch(ctx context.Context, sessionID, title string, added int, at time.Time) (model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := model.Conversation{
			ID:           uuid.NewString(),
			SessionID:    sessionID,
			Title:        title,
			CreatedAt:    at,
			UpdatedAt:    at,
			LastActivity: at,
			MessageCount: added,
		}
		updates := append(
			clause.AssignmentColumns([]string{"last_activity", "updated_at"}),
			clause.Assignment{
				Column: clause.Column{Name: "message_count"},
				Value:  gorm.Expr("conversations.message_count + ?", added),
			},
		)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: updates,
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Where("session_id = ?", sessionID).First(&conv).Error
	})
	if err != nil {
		return model.Conversation{}, err
	}
	return conv, nil
}

func (r *gormConversationRepository) FindBySessionID(ctx context.Context, sessionID string) (model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Conversation{}, ErrConversationNotFound
	}
	if err != nil {
		return model.Conversation{}, err
	}
	return conv, nil
}

func (r *gormConversationRepository) List(ctx context.Context) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).Order("last_activity DESC").Find(&convs).Error
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	return convs, nil
}
