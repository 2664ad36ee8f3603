// Package tasks runs the fire-and-forget side effects of admission:
// severity classification and routing. Tasks are enqueued after the
// admission transaction commits and processed off the request path, so a
// submission succeeds fast and a failing side effect never invalidates it.
package tasks

import (
	"encoding/json"
	"log"
	"time"

	"speakup/backend/internal/config"
	"speakup/backend/internal/routing"
	"speakup/backend/internal/severity"
)

const (
	KindClassify = "classify"
	KindRoute    = "route"
)

// Task is one unit of background work, serialized as JSON on the Redis
// queue.
type Task struct {
	Kind        string `json:"kind"`
	ComplaintID string `json:"complaint_id"`
	Title       string `json:"title,omitempty"`
	Category    string `json:"category,omitempty"`
	Content     string `json:"content,omitempty"`
	Attempts    int    `json:"attempts"`
}

// Queue is the durable task transport (a Redis list in production).
type Queue interface {
	EnqueueTask(payload []byte) error
	DequeueTask(timeout time.Duration) ([]byte, error)
}

// Enqueue serializes and pushes a task.
func Enqueue(q Queue, t Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return q.EnqueueTask(payload)
}

type Store interface {
	UpdateComplaintSeverity(id, severity string) error
}

type Router interface {
	Route(complaintID, category string) (routing.Result, error)
}

// Notifier receives best-effort alerts about routed and critical
// complaints. Implementations must tolerate being called concurrently.
type Notifier interface {
	ComplaintAssigned(complaintID, title, handlerID, department string)
	CriticalComplaint(complaintID, title string)
}

type Worker struct {
	Queue    Queue
	Store    Store
	Router   Router
	Notifier Notifier
}

func NewWorker(queue Queue, store Store, router Router, notifier Notifier) *Worker {
	return &Worker{Queue: queue, Store: store, Router: router, Notifier: notifier}
}

// Run consumes the queue until the process exits. Failed tasks are
// requeued up to the attempt cap, then dropped with an error log; they
// never propagate back to the submitter.
func (w *Worker) Run() {
	log.Println("Intake task worker started.")

	for {
		payload, err := w.Queue.DequeueTask(5 * time.Second)
		if err != nil {
			log.Printf("ERROR: Task dequeue failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if payload == nil {
			continue
		}

		var task Task
		if err := json.Unmarshal(payload, &task); err != nil {
			log.Printf("ERROR: Dropping malformed task payload: %v", err)
			continue
		}

		if err := w.Handle(task); err != nil {
			w.retry(task, err)
		}
	}
}

// Handle processes a single task.
func (w *Worker) Handle(task Task) error {
	switch task.Kind {
	case KindClassify:
		tier := severity.Classify(task.Content)
		if err := w.Store.UpdateComplaintSeverity(task.ComplaintID, tier); err != nil {
			return err
		}
		log.Printf("INFO: Complaint %s classified as %s", task.ComplaintID, tier)
		if tier == "critical" && w.Notifier != nil {
			w.Notifier.CriticalComplaint(task.ComplaintID, task.Title)
		}
		return nil

	case KindRoute:
		result, err := w.Router.Route(task.ComplaintID, task.Category)
		if err != nil {
			return err
		}
		if result.Assigned {
			log.Printf("INFO: Complaint %s routed to handler %s (%s)", task.ComplaintID, result.HandlerID, result.Department)
			if w.Notifier != nil {
				w.Notifier.ComplaintAssigned(task.ComplaintID, task.Title, result.HandlerID, result.Department)
			}
		}
		return nil

	default:
		log.Printf("WARNING: Dropping task with unknown kind %q", task.Kind)
		return nil
	}
}

func (w *Worker) retry(task Task, cause error) {
	task.Attempts++
	if task.Attempts >= config.TaskMaxAttempts {
		log.Printf("ERROR: Task %s for complaint %s failed permanently after %d attempts: %v",
			task.Kind, task.ComplaintID, task.Attempts, cause)
		return
	}

	// Requeue at the tail without sleeping: the worker is a single
	// goroutine and a delay here would stall every other queued task.
	log.Printf("WARNING: Task %s for complaint %s failed (attempt %d), requeueing: %v",
		task.Kind, task.ComplaintID, task.Attempts, cause)

	if err := Enqueue(w.Queue, task); err != nil {
		log.Printf("ERROR: Requeue failed for task %s complaint %s: %v", task.Kind, task.ComplaintID, err)
	}
}
