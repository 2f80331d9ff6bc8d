package planner

import (
	"errors"
	"testing"
)

func TestParallelGroupsChain(t *testing.T) {
	plan := Parallel([]string{"echo a", "echo b", "echo c"})
	plan.AddDependency(1, 0)
	plan.AddDependency(2, 1)

	groups, err := plan.ParallelGroups()
	if err != nil {
		t.Fatalf("ParallelGroups: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	for i, group := range groups {
		if len(group) != 1 {
			t.Fatalf("group %d has %d tasks, want 1", i, len(group))
		}
		if group[0].ID != i {
			t.Fatalf("group %d holds task %d, want %d", i, group[0].ID, i)
		}
	}
}

func TestParallelGroupsIndependent(t *testing.T) {
	plan := Parallel([]string{"echo a", "echo b", "echo c"})

	groups, err := plan.ParallelGroups()
	if err != nil {
		t.Fatalf("ParallelGroups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Fatalf("expected 3 tasks in group, got %d", len(groups[0]))
	}
}

func TestParallelGroupsDiamond(t *testing.T) {
	plan := Parallel([]string{"a", "b", "c", "d"})
	plan.AddDependency(1, 0)
	plan.AddDependency(2, 0)
	plan.AddDependency(3, 1)
	plan.AddDependency(3, 2)

	groups, err := plan.ParallelGroups()
	if err != nil {
		t.Fatalf("ParallelGroups: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if len(groups[1]) != 2 {
		t.Fatalf("expected middle group of 2, got %d", len(groups[1]))
	}
}

func TestParallelGroupsCycle(t *testing.T) {
	plan := Parallel([]string{"a", "b", "c"})
	plan.AddDependency(1, 2)
	plan.AddDependency(2, 1)

	groups, err := plan.ParallelGroups()
	if err == nil {
		t.Fatal("expected cycle error")
	}
	var cycle *ErrDependencyCycle
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *ErrDependencyCycle, got %T", err)
	}
	if len(cycle.Unplaced) != 2 || cycle.Unplaced[0] != 1 || cycle.Unplaced[1] != 2 {
		t.Fatalf("unexpected unplaced ids %v", cycle.Unplaced)
	}
	if len(groups) != 1 || len(groups[0]) != 1 || groups[0][0].ID != 0 {
		t.Fatalf("expected truncated schedule with task 0, got %v", groups)
	}
}

func TestSequentialSingleGroup(t *testing.T) {
	plan := Sequential([]string{"echo a", "echo b"})

	groups, err := plan.ParallelGroups()
	if err != nil {
		t.Fatalf("ParallelGroups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected single group, got %d", len(groups))
	}
	if groups[0][0].ID != 0 || groups[0][1].ID != 1 {
		t.Fatal("sequential plan must preserve order")
	}
}

func TestPerDirectoryDescriptions(t *testing.T) {
	plan := PerDirectory([]string{"/repos/alpha", "/repos/beta"}, "git pull")
	if plan.TaskCount() != 2 {
		t.Fatalf("expected 2 tasks, got %d", plan.TaskCount())
	}
	if plan.Tasks[0].Description != "git pull in alpha" {
		t.Fatalf("unexpected description %q", plan.Tasks[0].Description)
	}
	if plan.Tasks[1].WorkingDir != "/repos/beta" {
		t.Fatalf("unexpected working dir %q", plan.Tasks[1].WorkingDir)
	}
}

func TestEmptyPlan(t *testing.T) {
	plan := New(nil)
	groups, err := plan.ParallelGroups()
	if err != nil {
		t.Fatalf("ParallelGroups: %v", err)
	}
	if len(groups) != 1 || len(groups[0]) != 0 {
		t.Fatalf("expected one empty group, got %v", groups)
	}
}
