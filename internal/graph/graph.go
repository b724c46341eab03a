// Package graph provides a small state-machine engine for pipeline
// orchestration: named nodes mutate a shared state, unconditional edges
// chain stages, and conditional edges pick the successor from the state
// after a node ran. Both QA pipeline variants are built on it.
package graph

import (
	"context"
	"errors"
	"fmt"
)

// End is the terminal pseudo-node. Routing to it stops the traversal.
const End = "__end__"

// defaultMaxSteps bounds a traversal. Conditional edges can form cycles; the
// step bound turns an unbounded loop into an error instead of a hang.
const defaultMaxSteps = 32

var (
	// ErrNoEntryPoint indicates Run was called before SetEntryPoint
	ErrNoEntryPoint = errors.New("graph has no entry point")

	// ErrUnknownNode indicates an edge or entry point names a node that
	// was never added
	ErrUnknownNode = errors.New("unknown graph node")

	// ErrNoOutgoingEdge indicates a node finished with nowhere to go
	ErrNoOutgoingEdge = errors.New("node has no outgoing edge")

	// ErrStepLimit indicates the traversal exceeded its step bound
	ErrStepLimit = errors.New("graph step limit exceeded")
)

// NodeFunc executes one stage against the state.
type NodeFunc[S any] func(ctx context.Context, state S) error

// RouteFunc inspects the state after its node ran and names the successor,
// or End to terminate.
type RouteFunc[S any] func(state S) string

// Graph is a directed graph of stages over a state of type S.
// Build it once, then Run it per traversal; Run itself holds no graph-level
// mutable state, so a built graph is safe to share.
type Graph[S any] struct {
	nodes    map[string]NodeFunc[S]
	edges    map[string]string
	routes   map[string]RouteFunc[S]
	entry    string
	maxSteps int
}

// New creates an empty graph.
func New[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:    make(map[string]NodeFunc[S]),
		edges:    make(map[string]string),
		routes:   make(map[string]RouteFunc[S]),
		maxSteps: defaultMaxSteps,
	}
}

// AddNode registers a named stage.
func (g *Graph[S]) AddNode(name string, fn NodeFunc[S]) {
	g.nodes[name] = fn
}

// AddEdge wires an unconditional transition.
func (g *Graph[S]) AddEdge(from, to string) {
	g.edges[from] = to
}

// AddConditionalEdge wires a state-dependent transition. A conditional edge
// takes precedence over an unconditional one on the same node.
func (g *Graph[S]) AddConditionalEdge(from string, route RouteFunc[S]) {
	g.routes[from] = route
}

// SetEntryPoint names the node a traversal starts at.
func (g *Graph[S]) SetEntryPoint(name string) {
	g.entry = name
}

// SetMaxSteps overrides the traversal step bound.
func (g *Graph[S]) SetMaxSteps(n int) {
	if n > 0 {
		g.maxSteps = n
	}
}

// Run executes the graph from the entry point until End, an error, or the
// step bound. Node errors abort the traversal wrapped with the node name.
func (g *Graph[S]) Run(ctx context.Context, state S) error {
	if g.entry == "" {
		return ErrNoEntryPoint
	}

	current := g.entry
	for step := 0; ; step++ {
		if step >= g.maxSteps {
			return fmt.Errorf("%w: %d steps at node %q", ErrStepLimit, step, current)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fn, ok := g.nodes[current]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownNode, current)
		}
		if err := fn(ctx, state); err != nil {
			return fmt.Errorf("node %q: %w", current, err)
		}

		next, err := g.next(current, state)
		if err != nil {
			return err
		}
		if next == End {
			return nil
		}
		current = next
	}
}

func (g *Graph[S]) next(current string, state S) (string, error) {
	if route, ok := g.routes[current]; ok {
		next := route(state)
		if next != End {
			if _, ok := g.nodes[next]; !ok {
				return "", fmt.Errorf("%w: %q routed from %q", ErrUnknownNode, next, current)
			}
		}
		return next, nil
	}
	if next, ok := g.edges[current]; ok {
		return next, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoOutgoingEdge, current)
}
