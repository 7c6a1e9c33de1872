package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeysExhaustive(t *testing.T) {
	for _, eventType := range AllTypes {
		keys := CacheKeys(eventType)
		assert.NotEmpty(t, keys, "event type %s has no cache invalidation entry", eventType)
	}
}

func TestCacheKeysIncludeNotificationCaches(t *testing.T) {
	// Every event produces notifications, so every event must invalidate
	// the notification caches.
	for _, eventType := range AllTypes {
		keys := CacheKeys(eventType)
		assert.Contains(t, keys, CacheKeyNotificationSummary, "event type %s", eventType)
		assert.Contains(t, keys, CacheKeyAllNotifications, "event type %s", eventType)
	}
}

func TestCacheKeysUnknownType(t *testing.T) {
	assert.Nil(t, CacheKeys(Type("nonsense.event")))
}

func TestCacheKeysReturnsCopy(t *testing.T) {
	keys := CacheKeys(TypeAppointmentConfirmed)
	keys[0] = "mutated"
	assert.NotContains(t, CacheKeys(TypeAppointmentConfirmed), "mutated")
}

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := StatusChanged{
		AppointmentID:  uuid.New(),
		FacilityID:     uuid.New(),
		PreviousStatus: "confirmed",
		NewStatus:      "closed",
		StartTime:      time.Now().UTC().Truncate(time.Second),
	}

	env, err := NewEnvelope(TypeAppointmentClosed, payload)
	require.NoError(t, err)
	assert.Equal(t, CacheKeys(TypeAppointmentClosed), env.CacheKeys)

	raw, err := env.Marshal()
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeAppointmentClosed, decoded.Type)

	p, err := DecodePayload(decoded.Type, decoded.Payload)
	require.NoError(t, err)
	assert.Equal(t, payload, p)
}

func TestDecodePayloadVariants(t *testing.T) {
	invite := OfferInvite{
		AppointmentID: uuid.New(),
		FacilityID:    uuid.New(),
		FacilityName:  "Mercy General",
		RadiusMiles:   20,
		Language:      "Spanish",
	}
	env, err := NewEnvelope(TypeOfferInvite, invite)
	require.NoError(t, err)

	p, err := DecodePayload(env.Type, env.Payload)
	require.NoError(t, err)
	got, ok := p.(OfferInvite)
	require.True(t, ok)
	assert.Equal(t, invite.FacilityName, got.FacilityName)
	assert.Equal(t, invite.RadiusMiles, got.RadiusMiles)
}

func TestDecodePayloadUnknownType(t *testing.T) {
	_, err := DecodePayload(Type("bogus"), []byte(`{}`))
	assert.Error(t, err)
}

func TestChannels(t *testing.T) {
	assert.Equal(t, "notifications:admins", AdminChannel())

	id := uuid.New()
	assert.Equal(t, "notifications:user:"+id.String(), UserChannel(id))
}
