package graph

import (
	"context"
	"errors"
	"testing"
)

type trace struct {
	visited []string
	retry   bool
	retried int
}

func visit(name string) NodeFunc[*trace] {
	return func(ctx context.Context, s *trace) error {
		s.visited = append(s.visited, name)
		return nil
	}
}

func TestRunLinearChain(t *testing.T) {
	g := New[*trace]()
	g.AddNode("a", visit("a"))
	g.AddNode("b", visit("b"))
	g.AddNode("c", visit("c"))
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", End)
	g.SetEntryPoint("a")

	s := &trace{}
	if err := g.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(s.visited) != len(want) {
		t.Fatalf("expected %v, got %v", want, s.visited)
	}
	for i := range want {
		if s.visited[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], s.visited[i])
		}
	}
}

func TestRunConditionalLoop(t *testing.T) {
	g := New[*trace]()
	g.AddNode("generate", func(ctx context.Context, s *trace) error {
		s.visited = append(s.visited, "generate")
		return nil
	})
	g.AddNode("correct", func(ctx context.Context, s *trace) error {
		s.visited = append(s.visited, "correct")
		s.retried++
		s.retry = false
		return nil
	})
	g.AddConditionalEdge("generate", func(s *trace) string {
		if s.retry {
			return "correct"
		}
		return End
	})
	g.AddEdge("correct", "generate")
	g.SetEntryPoint("generate")

	s := &trace{retry: true}
	if err := g.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.retried != 1 {
		t.Errorf("expected exactly one correction pass, got %d", s.retried)
	}
	want := []string{"generate", "correct", "generate"}
	if len(s.visited) != len(want) {
		t.Fatalf("expected %v, got %v", want, s.visited)
	}
}

func TestRunNodeErrorWrapsName(t *testing.T) {
	boom := errors.New("boom")
	g := New[*trace]()
	g.AddNode("explode", func(ctx context.Context, s *trace) error { return boom })
	g.AddEdge("explode", End)
	g.SetEntryPoint("explode")

	err := g.Run(context.Background(), &trace{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped node error, got %v", err)
	}
}

func TestRunNoEntryPoint(t *testing.T) {
	g := New[*trace]()
	g.AddNode("a", visit("a"))

	if err := g.Run(context.Background(), &trace{}); !errors.Is(err, ErrNoEntryPoint) {
		t.Fatalf("expected ErrNoEntryPoint, got %v", err)
	}
}

func TestRunUnknownEntryNode(t *testing.T) {
	g := New[*trace]()
	g.SetEntryPoint("missing")

	if err := g.Run(context.Background(), &trace{}); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestRunMissingOutgoingEdge(t *testing.T) {
	g := New[*trace]()
	g.AddNode("a", visit("a"))
	g.SetEntryPoint("a")

	if err := g.Run(context.Background(), &trace{}); !errors.Is(err, ErrNoOutgoingEdge) {
		t.Fatalf("expected ErrNoOutgoingEdge, got %v", err)
	}
}

func TestRunStepLimitBreaksCycle(t *testing.T) {
	g := New[*trace]()
	g.AddNode("a", visit("a"))
	g.AddNode("b", visit("b"))
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	g.SetEntryPoint("a")
	g.SetMaxSteps(10)

	if err := g.Run(context.Background(), &trace{}); !errors.Is(err, ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
}

func TestRunRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	g := New[*trace]()
	g.AddNode("a", func(ctx context.Context, s *trace) error {
		cancel()
		return nil
	})
	g.AddNode("b", visit("b"))
	g.AddEdge("a", "b")
	g.AddEdge("b", End)
	g.SetEntryPoint("a")

	s := &trace{}
	if err := g.Run(ctx, s); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for _, v := range s.visited {
		if v == "b" {
			t.Error("expected traversal to stop before node b")
		}
	}
}
