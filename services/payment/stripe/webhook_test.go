package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

var completedPayload = []byte(`{
	"id": "evt_1",
	"type": "checkout.session.completed",
	"data": {
		"object": {
			"id": "cs_test_123",
			"payment_intent": "pi_test_456",
			"amount_total": 4500,
			"metadata": {"order_id": "17"}
		}
	}
}`)

func TestConstructEventAcceptsValidSignature(t *testing.T) {
	header := SignPayload(completedPayload, testSecret, time.Now())

	event, err := ConstructEvent(completedPayload, header, testSecret, DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", event.Type)

	var session CheckoutSessionObject
	require.NoError(t, event.UnmarshalObject(&session))
	assert.Equal(t, "cs_test_123", session.ID)
	assert.Equal(t, "pi_test_456", session.PaymentIntent)
	assert.Equal(t, "17", session.Metadata["order_id"])
}

func TestConstructEventRejectsWrongSecret(t *testing.T) {
	header := SignPayload(completedPayload, "whsec_other", time.Now())

	_, err := ConstructEvent(completedPayload, header, testSecret, DefaultTolerance)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestConstructEventRejectsTamperedPayload(t *testing.T) {
	header := SignPayload(completedPayload, testSecret, time.Now())
	tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"metadata":{"order_id":"99"}}}}`)

	_, err := ConstructEvent(tampered, header, testSecret, DefaultTolerance)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestConstructEventRejectsStaleTimestamp(t *testing.T) {
	header := SignPayload(completedPayload, testSecret, time.Now().Add(-time.Hour))

	_, err := ConstructEvent(completedPayload, header, testSecret, DefaultTolerance)
	assert.ErrorIs(t, err, ErrTimestampTooOld)
}

func TestConstructEventRejectsMalformedHeaders(t *testing.T) {
	for _, header := range []string{"", "garbage", "t=abc,v1=00", "v1=deadbeef", "t=123"} {
		_, err := ConstructEvent(completedPayload, header, testSecret, 0)
		assert.ErrorIs(t, err, ErrInvalidSignatureHeader, "header %q", header)
	}
}
