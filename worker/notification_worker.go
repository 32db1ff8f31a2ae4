package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"flashxship-api/queue"
	"flashxship-api/services/email"
)

// Worker drains the notification queue and delivers emails in the
// background so HTTP handlers never block on SMTP.
type Worker struct {
	queue     *queue.Queue
	sender    email.Sender
	shutdown  chan struct{}
	isRunning bool
}

func NewWorker(q *queue.Queue, sender email.Sender) *Worker {
	return &Worker{
		queue:    q,
		sender:   sender,
		shutdown: make(chan struct{}),
	}
}

// Start launches the processing goroutines plus one scheduler goroutine
// that promotes due delayed jobs.
func (w *Worker) Start(concurrency int) {
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		go w.processJobs(i)
	}
	go w.processDelayedJobs()

	log.Printf("Started %d notification worker goroutines", concurrency)
}

// Stop signals all worker goroutines to exit.
func (w *Worker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("Stopping notification worker...")
	close(w.shutdown)
	w.isRunning = false
}

func (w *Worker) processJobs(workerID int) {
	log.Printf("Worker %d starting", workerID)

	for {
		select {
		case <-w.shutdown:
			log.Printf("Worker %d shutting down", workerID)
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			job, err := w.queue.Dequeue(ctx, 5*time.Second)
			cancel()

			if err != nil {
				log.Printf("Worker %d: Error dequeuing job: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if job == nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			log.Printf("Worker %d processing job %s of type %s", workerID, job.ID, job.Type)

			jobErr := w.processJob(job)
			if jobErr != nil {
				log.Printf("Worker %d: Error processing job %s: %v", workerID, job.ID, jobErr)

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				failErr := w.queue.FailJob(ctx, job, jobErr)
				cancel()

				if failErr != nil {
					log.Printf("Worker %d: Error marking job %s as failed: %v", workerID, job.ID, failErr)
				}

				time.Sleep(time.Second)
				continue
			}

			ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
			completeErr := w.queue.CompleteJob(ctx, job)
			cancel()

			if completeErr != nil {
				log.Printf("Worker %d: Error marking job %s as complete: %v", workerID, job.ID, completeErr)
			}
		}
	}
}

// processDelayedJobs promotes retry-scheduled jobs back onto the main queue.
func (w *Worker) processDelayedJobs() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := w.queue.ProcessDelayedJobs(ctx); err != nil {
				log.Printf("Error processing delayed jobs: %v", err)
			}
			cancel()
		}
	}
}

func (w *Worker) processJob(job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeOrderStatusEmail:
		return w.processOrderStatusEmail(job)
	case queue.JobTypeContactResponseEmail:
		return w.processContactResponseEmail(job)
	case queue.JobTypePasswordResetEmail:
		return w.processPasswordResetEmail(job)
	case queue.JobTypeReviewInviteEmail:
		return w.processReviewInviteEmail(job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (w *Worker) processOrderStatusEmail(job *queue.Job) error {
	to, ok := job.Data["to"].(string)
	if !ok || to == "" {
		return fmt.Errorf("invalid recipient in job data")
	}

	status, ok := job.Data["status"].(string)
	if !ok || status == "" {
		return fmt.Errorf("invalid status in job data")
	}

	orderID, err := intField(job, "order_id")
	if err != nil {
		return err
	}

	subject, body := email.BuildOrderStatusEmail(status, orderID)
	return w.sender.SendEmail(to, subject, body)
}

func (w *Worker) processContactResponseEmail(job *queue.Job) error {
	to, ok := job.Data["to"].(string)
	if !ok || to == "" {
		return fmt.Errorf("invalid recipient in job data")
	}

	name, _ := job.Data["name"].(string)
	originalSubject, _ := job.Data["subject"].(string)
	sentDate, _ := job.Data["date"].(string)
	response, ok := job.Data["response"].(string)
	if !ok || response == "" {
		return fmt.Errorf("invalid response text in job data")
	}

	subject, body := email.BuildContactResponseEmail(name, originalSubject, response, sentDate)
	return w.sender.SendEmail(to, subject, body)
}

func (w *Worker) processPasswordResetEmail(job *queue.Job) error {
	to, ok := job.Data["to"].(string)
	if !ok || to == "" {
		return fmt.Errorf("invalid recipient in job data")
	}

	resetURL, ok := job.Data["reset_url"].(string)
	if !ok || resetURL == "" {
		return fmt.Errorf("invalid reset_url in job data")
	}

	subject, body := email.BuildPasswordResetEmail(resetURL)
	return w.sender.SendEmail(to, subject, body)
}

func (w *Worker) processReviewInviteEmail(job *queue.Job) error {
	to, ok := job.Data["to"].(string)
	if !ok || to == "" {
		return fmt.Errorf("invalid recipient in job data")
	}

	reviewURL, ok := job.Data["review_url"].(string)
	if !ok || reviewURL == "" {
		return fmt.Errorf("invalid review_url in job data")
	}

	orderID, err := intField(job, "order_id")
	if err != nil {
		return err
	}

	subject, body := email.BuildReviewInviteEmail(orderID, reviewURL)
	return w.sender.SendEmail(to, subject, body)
}

// intField reads a numeric job field; JSON round-trips numbers as float64.
func intField(job *queue.Job, key string) (int, error) {
	switch v := job.Data[key].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid %s in job data", key)
	}
}
