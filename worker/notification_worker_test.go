package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashxship-api/queue"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

// fakeSender records deliveries instead of talking SMTP.
type fakeSender struct {
	sent []sentMail
}

func (f *fakeSender) SendEmail(to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func TestProcessOrderStatusEmail(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(nil, sender)

	// JSON round-trips numbers as float64; the job data mimics that.
	err := w.processJob(&queue.Job{
		ID:   "1",
		Type: queue.JobTypeOrderStatusEmail,
		Data: map[string]interface{}{
			"to":       "buyer@example.com",
			"status":   "SHIPPED",
			"order_id": float64(42),
		},
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "buyer@example.com", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].subject, "on its way")
	assert.Contains(t, sender.sent[0].body, "#42")
}

func TestProcessContactResponseEmail(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(nil, sender)

	err := w.processJob(&queue.Job{
		ID:   "2",
		Type: queue.JobTypeContactResponseEmail,
		Data: map[string]interface{}{
			"to":       "visitor@example.com",
			"name":     "Ada",
			"subject":  "Bulk pricing",
			"date":     "2026-08-25",
			"response": "We can offer a volume discount.",
		},
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Re: Bulk pricing", sender.sent[0].subject)
	assert.Contains(t, sender.sent[0].body, "volume discount")
	assert.Contains(t, sender.sent[0].body, "your message from 2026-08-25")
}

func TestProcessReviewInviteEmail(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(nil, sender)

	err := w.processJob(&queue.Job{
		ID:   "4",
		Type: queue.JobTypeReviewInviteEmail,
		Data: map[string]interface{}{
			"to":         "buyer@example.com",
			"order_id":   float64(42),
			"review_url": "https://flashxship.co/reviews",
		},
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "buyer@example.com", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].body, "#42")
	assert.Contains(t, sender.sent[0].body, "https://flashxship.co/reviews")
}

func TestProcessPasswordResetEmail(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(nil, sender)

	err := w.processJob(&queue.Job{
		ID:   "3",
		Type: queue.JobTypePasswordResetEmail,
		Data: map[string]interface{}{
			"to":        "user@example.com",
			"reset_url": "https://flashxship.co/reset-password?token=abc",
		},
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].body, "token=abc")
}

func TestProcessJobRejectsBadData(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(nil, sender)

	cases := []*queue.Job{
		{ID: "a", Type: queue.JobTypeOrderStatusEmail, Data: map[string]interface{}{"status": "SHIPPED", "order_id": float64(1)}},
		{ID: "b", Type: queue.JobTypeOrderStatusEmail, Data: map[string]interface{}{"to": "x@y.z", "order_id": float64(1)}},
		{ID: "c", Type: queue.JobTypeOrderStatusEmail, Data: map[string]interface{}{"to": "x@y.z", "status": "SHIPPED", "order_id": "nope"}},
		{ID: "d", Type: queue.JobTypePasswordResetEmail, Data: map[string]interface{}{"to": "x@y.z"}},
		{ID: "e", Type: queue.JobTypeReviewInviteEmail, Data: map[string]interface{}{"to": "x@y.z", "order_id": float64(1)}},
		{ID: "f", Type: queue.JobType("unknown_type"), Data: map[string]interface{}{}},
	}

	for _, job := range cases {
		assert.Error(t, w.processJob(job), "job %s", job.ID)
	}
	assert.Empty(t, sender.sent)
}
