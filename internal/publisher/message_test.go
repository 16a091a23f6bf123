package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seinfeld/internal/domain"
)

func TestNewPublishing(t *testing.T) {
	start, end := domain.Date(2009, 12, 17), domain.Date(2009, 12, 19)
	update := &domain.StreakUpdate{
		Login:         "bob",
		NewDays:       []string{"2009-12-18", "2009-12-19"},
		StreakStart:   &start,
		StreakEnd:     &end,
		CurrentStreak: 3,
		LongestStreak: 7,
	}
	now := time.Date(2009, 12, 20, 8, 30, 0, 0, time.UTC)

	pub, err := newPublishing(update, now)
	require.NoError(t, err)

	_, err = uuid.Parse(pub.MessageId)
	assert.NoError(t, err)
	assert.Equal(t, EventStreakUpdated, pub.Type)
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), pub.DeliveryMode)

	var msg StreakMessage
	require.NoError(t, json.Unmarshal(pub.Body, &msg))
	assert.Equal(t, EventStreakUpdated, msg.Event)
	assert.Equal(t, "bob", msg.Update.Login)
	assert.Equal(t, []string{"2009-12-18", "2009-12-19"}, msg.Update.NewDays)
	assert.Equal(t, 3, msg.Update.CurrentStreak)
	assert.Equal(t, 7, msg.Update.LongestStreak)
	assert.True(t, msg.Timestamp.Equal(now))
}

func TestNewPublishing_UniqueIDs(t *testing.T) {
	update := &domain.StreakUpdate{Login: "bob"}

	a, err := newPublishing(update, time.Now())
	require.NoError(t, err)
	b, err := newPublishing(update, time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, a.MessageId, b.MessageId)
}
