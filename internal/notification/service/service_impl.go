package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetflow/fleetflow/internal/clock"
	"github.com/fleetflow/fleetflow/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Broadcaster domain.Broadcaster
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	broadcaster domain.Broadcaster
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("notification.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		broadcaster: p.Broadcaster,
	}
}

// wireEvent is the record pushed to live clients after the row commits.
type wireEvent struct {
	Event      string          `json:"event"`
	ID         string          `json:"id"`
	Type       domain.Type     `json:"type"`
	Severity   domain.Severity `json:"severity"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	EntityType *string         `json:"entity_type"`
	EntityID   *string         `json:"entity_id"`
	CreatedAt  string          `json:"created_at"`
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Notification, error) {
	severity := req.Severity
	if severity == "" {
		severity = domain.SeverityInfo
	}

	notif := domain.Notification{
		ID:        s.genID.Generate().String(),
		Type:      req.Type,
		Severity:  severity,
		Title:     req.Title,
		Message:   req.Message,
		CreatedAt: s.clock.Now(),
	}
	if v := strings.TrimSpace(req.EntityType); v != "" {
		notif.EntityType = &v
	}
	if v := strings.TrimSpace(req.EntityID); v != "" {
		notif.EntityID = &v
	}

	if err := s.db.WithContext(ctx).Create(&notif).Error; err != nil {
		return nil, err
	}

	// The row is committed; the live push is best effort only.
	s.push(notif)

	return &notif, nil
}

func (s *Service) push(notif domain.Notification) {
	payload, err := json.Marshal(wireEvent{
		Event:      "new_notification",
		ID:         notif.ID,
		Type:       notif.Type,
		Severity:   notif.Severity,
		Title:      notif.Title,
		Message:    notif.Message,
		EntityType: notif.EntityType,
		EntityID:   notif.EntityID,
		CreatedAt:  notif.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		s.log.Warn("notification push encode failed",
			zap.String("notification_id", notif.ID),
			zap.Error(err),
		)
		return
	}
	s.broadcaster.Broadcast(string(payload))
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Notification, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	stmt := s.db.WithContext(ctx).Model(&domain.Notification{})
	if req.UnreadOnly {
		stmt = stmt.Where("is_read = ?", false)
	}
	var notifs []domain.Notification
	if err := stmt.Order("created_at DESC").Limit(limit).Find(&notifs).Error; err != nil {
		return nil, err
	}
	return notifs, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
