package services

import (
	"fmt"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
)

// WorkflowGraph is the status adjacency of one workflow, built once from its steps.
type WorkflowGraph struct {
	WorkflowID string
	initial    string
	order      []string
	successors map[string][]string
	steps      map[string]string
}

// BuildWorkflowGraph validates the live steps of a workflow and materializes their adjacency.
// knownStatuses, when non-nil, lists the ticket statuses that exist.
func BuildWorkflowGraph(workflowID string, steps []models.WorkflowStep, knownStatuses map[string]bool) (*WorkflowGraph, error) {
	configErr := func(format string, args ...interface{}) error {
		return &apierrors.WorkflowConfigError{WorkflowID: workflowID, Reason: fmt.Sprintf(format, args...)}
	}

	live := make(map[string]models.WorkflowStep, len(steps))
	var ids []string
	for _, step := range steps {
		if step.Deleted {
			continue
		}
		if step.WorkflowID != "" && step.WorkflowID != workflowID {
			return nil, configErr("step %q belongs to workflow %q", step.ID, step.WorkflowID)
		}
		if _, dup := live[step.ID]; dup {
			return nil, configErr("duplicate step %q", step.ID)
		}
		live[step.ID] = step
		ids = append(ids, step.ID)
	}
	if len(ids) == 0 {
		return nil, configErr("workflow has no steps")
	}

	statusOwner := make(map[string]string, len(ids))
	incoming := make(map[string]int, len(ids))
	for _, id := range ids {
		step := live[id]
		if knownStatuses != nil && !knownStatuses[step.TicketStatusID] {
			return nil, configErr("step %q references unknown status %q", id, step.TicketStatusID)
		}
		if other, dup := statusOwner[step.TicketStatusID]; dup {
			return nil, configErr("steps %q and %q share status %q", other, id, step.TicketStatusID)
		}
		statusOwner[step.TicketStatusID] = id

		if step.WorkflowStepID == "" {
			continue
		}
		if _, ok := live[step.WorkflowStepID]; !ok {
			return nil, configErr("step %q references unknown next step %q", id, step.WorkflowStepID)
		}
		incoming[step.WorkflowStepID]++
	}

	if err := detectStepCycle(ids, live); err != nil {
		return nil, configErr("%v", err)
	}

	var entries []string
	for _, id := range ids {
		if incoming[id] == 0 {
			entries = append(entries, id)
		}
	}
	switch {
	case len(entries) == 0:
		return nil, configErr("no entry step")
	case len(entries) > 1:
		return nil, configErr("%d entry steps %v, expected exactly one", len(entries), entries)
	}

	g := &WorkflowGraph{
		WorkflowID: workflowID,
		initial:    live[entries[0]].TicketStatusID,
		successors: make(map[string][]string, len(ids)),
		steps:      make(map[string]string, len(ids)),
	}
	for _, id := range ids {
		step := live[id]
		g.steps[step.TicketStatusID] = id
		if step.WorkflowStepID != "" {
			next := live[step.WorkflowStepID].TicketStatusID
			g.successors[step.TicketStatusID] = append(g.successors[step.TicketStatusID], next)
		}
	}

	// Only statuses reachable from the entry are states of the machine.
	queue := []string{g.initial}
	seen := map[string]bool{g.initial: true}
	for len(queue) > 0 {
		status := queue[0]
		queue = queue[1:]
		g.order = append(g.order, status)
		for _, next := range g.successors[status] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	if len(g.order) != len(ids) {
		return nil, configErr("%d steps are unreachable from the entry step", len(ids)-len(g.order))
	}

	return g, nil
}

func detectStepCycle(ids []string, live map[string]models.WorkflowStep) error {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int, len(ids))
	for _, start := range ids {
		if state[start] != unvisited {
			continue
		}
		var path []string
		for id := start; id != ""; id = live[id].WorkflowStepID {
			if state[id] == onPath {
				return fmt.Errorf("step %q is part of a cycle", id)
			}
			if state[id] == done {
				break
			}
			state[id] = onPath
			path = append(path, id)
		}
		for _, id := range path {
			state[id] = done
		}
	}
	return nil
}

// InitialStatus is the status of the entry step
func (g *WorkflowGraph) InitialStatus() string {
	return g.initial
}

// Statuses lists every state from the entry onward
func (g *WorkflowGraph) Statuses() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Contains reports whether status is a state of the workflow
func (g *WorkflowGraph) Contains(status string) bool {
	_, ok := g.steps[status]
	return ok
}

// StepFor returns the id of the step bound to status
func (g *WorkflowGraph) StepFor(status string) (string, bool) {
	id, ok := g.steps[status]
	return id, ok
}

// Successors lists the statuses reachable in one hop from status
func (g *WorkflowGraph) Successors(status string) []string {
	out := make([]string, len(g.successors[status]))
	copy(out, g.successors[status])
	return out
}

// CanTransition reports whether to is a direct successor of from
func (g *WorkflowGraph) CanTransition(from, to string) bool {
	for _, next := range g.successors[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status has no outgoing step
func (g *WorkflowGraph) IsTerminal(status string) bool {
	return g.Contains(status) && len(g.successors[status]) == 0
}
