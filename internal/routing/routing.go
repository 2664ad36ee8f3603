// Package routing assigns admitted complaints to a handling department and
// a handler. Routing is best-effort: an unknown category or an empty
// handler pool leaves the complaint unassigned without surfacing an error
// to the submitter.
package routing

import (
	"log"

	"speakup/backend/internal/models"
)

type Store interface {
	GetDepartmentByCategory(category string) (*models.Department, error)
	ListHandlers() ([]models.User, error)
	AssignComplaint(id, handlerID string) error
}

// Result describes the routing outcome. Assigned is false for the
// "unrouted" cases; Department is still set when the department exists but
// has no handler.
type Result struct {
	Assigned   bool   `json:"assigned"`
	HandlerID  string `json:"handler_id,omitempty"`
	Department string `json:"department,omitempty"`
}

type Engine struct {
	Store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{Store: store}
}

// Route looks up the department for the category and assigns the first
// handler in stable order. Re-routing an already-assigned complaint
// overwrites the assignment; it never duplicates it.
func (e *Engine) Route(complaintID, category string) (Result, error) {
	dept, err := e.Store.GetDepartmentByCategory(category)
	if err != nil {
		return Result{}, err
	}
	if dept == nil {
		log.Printf("INFO: No department for category %q, complaint %s left unrouted", category, complaintID)
		return Result{}, nil
	}

	handlers, err := e.Store.ListHandlers()
	if err != nil {
		return Result{}, err
	}
	if len(handlers) == 0 {
		log.Printf("INFO: No handlers available, complaint %s left unrouted (department %s)", complaintID, dept.Name)
		return Result{Department: dept.Name}, nil
	}

	// Deterministic policy: first handler by stable ordering. Workload
	// balancing is out of scope.
	handler := handlers[0]
	if err := e.Store.AssignComplaint(complaintID, handler.ID); err != nil {
		return Result{}, err
	}

	return Result{Assigned: true, HandlerID: handler.ID, Department: dept.Name}, nil
}
