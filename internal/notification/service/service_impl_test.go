package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetflow/fleetflow/internal/clock"
	"github.com/fleetflow/fleetflow/internal/notification/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type captureBroadcaster struct {
	mu       sync.Mutex
	messages []string
}

func (b *captureBroadcaster) Broadcast(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
}

func (b *captureBroadcaster) all() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages...)
}

func setupNotifications(t *testing.T) (domain.Service, *captureBroadcaster, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Notification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	broadcaster := &captureBroadcaster{}

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(testNow),
		Broadcaster: broadcaster,
	})
	return svc, broadcaster, db
}

func TestCreatePersistsThenPushes(t *testing.T) {
	svc, broadcaster, db := setupNotifications(t)

	notif, err := svc.Create(context.Background(), domain.CreateRequest{
		Type:       domain.TypeMaintenance,
		Severity:   domain.SeverityWarning,
		Title:      "Preventive Maintenance Due",
		Message:    "Vehicle KA-01 needs service",
		EntityType: "vehicle",
		EntityID:   "veh-1",
	})
	require.NoError(t, err)

	var stored domain.Notification
	require.NoError(t, db.First(&stored, "id = ?", notif.ID).Error)
	assert.Equal(t, domain.TypeMaintenance, stored.Type)
	assert.False(t, stored.IsRead)

	messages := broadcaster.all()
	require.Len(t, messages, 1)

	var wire map[string]any
	require.NoError(t, json.Unmarshal([]byte(messages[0]), &wire))
	assert.Equal(t, "new_notification", wire["event"])
	assert.Equal(t, notif.ID, wire["id"])
	assert.Equal(t, "warning", wire["severity"])
	assert.Equal(t, "vehicle", wire["entity_type"])
	assert.Equal(t, testNow.Format(time.RFC3339), wire["created_at"])
}

func TestCreateDefaultsSeverityToInfo(t *testing.T) {
	svc, _, _ := setupNotifications(t)

	notif, err := svc.Create(context.Background(), domain.CreateRequest{
		Type:    domain.TypeOperational,
		Title:   "Trip dispatched",
		Message: "TRP-001 left the depot",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityInfo, notif.Severity)
	assert.Nil(t, notif.EntityType)
}

func TestListUnreadOnlyAndLimit(t *testing.T) {
	svc, _, db := setupNotifications(t)

	for i := 0; i < 4; i++ {
		_, err := svc.Create(context.Background(), domain.CreateRequest{
			Type:    domain.TypeOperational,
			Title:   fmt.Sprintf("n%d", i),
			Message: "m",
		})
		require.NoError(t, err)
	}
	require.NoError(t, db.Model(&domain.Notification{}).
		Where("title = ?", "n0").Update("is_read", true).Error)

	unread, err := svc.List(context.Background(), domain.ListRequest{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread, 3)

	limited, err := svc.List(context.Background(), domain.ListRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMarkRead(t *testing.T) {
	svc, _, db := setupNotifications(t)

	notif, err := svc.Create(context.Background(), domain.CreateRequest{
		Type:    domain.TypeSafety,
		Title:   "t",
		Message: "m",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), notif.ID))

	var stored domain.Notification
	require.NoError(t, db.First(&stored, "id = ?", notif.ID).Error)
	assert.True(t, stored.IsRead)

	assert.ErrorIs(t, svc.MarkRead(context.Background(), "missing-id"), domain.ErrNotFound)
}
