package planner

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Task is one schedulable shell command with an optional working directory.
// Tasks are immutable once a plan has been handed to the executor.
type Task struct {
	ID          int
	Command     string
	WorkingDir  string
	Description string
}

// NewTask builds a task with the default description.
func NewTask(id int, command string) Task {
	return Task{
		ID:          id,
		Command:     command,
		Description: fmt.Sprintf("Task %d", id),
	}
}

// Plan is a set of tasks plus optional dependency edges and the derived
// parallel/sequential schedule.
type Plan struct {
	Tasks          []Task
	CanParallelize bool

	// dependencies maps task id to the ids it depends on.
	dependencies map[int][]int
}

// New creates a parallelizable plan over the given tasks.
func New(tasks []Task) *Plan {
	return &Plan{
		Tasks:          tasks,
		CanParallelize: true,
		dependencies:   make(map[int][]int),
	}
}

// AddTask appends a task to the plan.
func (p *Plan) AddTask(task Task) {
	p.Tasks = append(p.Tasks, task)
}

// AddDependency records that task id depends on dependsOn. Multiple edges per
// task are allowed. Referenced ids are not validated here; ParallelGroups
// reports unsatisfiable schedules.
func (p *Plan) AddDependency(id, dependsOn int) {
	p.dependencies[id] = append(p.dependencies[id], dependsOn)
}

// DisableParallelization forces sequential execution in list order.
func (p *Plan) DisableParallelization() {
	p.CanParallelize = false
}

// TaskCount returns the number of tasks in the plan.
func (p *Plan) TaskCount() int {
	return len(p.Tasks)
}

// ErrDependencyCycle reports tasks that could never be scheduled because
// their dependencies form a cycle or reference ids outside the plan.
type ErrDependencyCycle struct {
	// Unplaced lists the task ids left out of the schedule, ascending.
	Unplaced []int
}

func (e *ErrDependencyCycle) Error() string {
	return fmt.Sprintf("dependency cycle or unresolvable reference: tasks %v cannot be scheduled", e.Unplaced)
}

// ParallelGroups computes the ordered sequence of parallel-safe groups. Each
// task appears in exactly one group, and a task's group index is strictly
// greater than every dependency's group index. With parallelization disabled
// or no tasks, a single group holding everything is returned.
//
// When a malformed dependency set stalls progress, the truncated schedule is
// returned together with an *ErrDependencyCycle naming the stuck tasks.
func (p *Plan) ParallelGroups() ([][]Task, error) {
	if !p.CanParallelize || len(p.Tasks) == 0 {
		group := make([]Task, len(p.Tasks))
		copy(group, p.Tasks)
		return [][]Task{group}, nil
	}

	var groups [][]Task
	placed := make(map[int]bool, len(p.Tasks))

	for len(placed) < len(p.Tasks) {
		var current []Task
		for _, task := range p.Tasks {
			if placed[task.ID] {
				continue
			}
			ready := true
			for _, dep := range p.dependencies[task.ID] {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				current = append(current, task)
			}
		}

		if len(current) == 0 {
			var stuck []int
			for _, task := range p.Tasks {
				if !placed[task.ID] {
					stuck = append(stuck, task.ID)
				}
			}
			sort.Ints(stuck)
			return groups, &ErrDependencyCycle{Unplaced: stuck}
		}

		for _, task := range current {
			placed[task.ID] = true
		}
		groups = append(groups, current)
	}

	return groups, nil
}

// Single builds a plan containing one command.
func Single(command string) *Plan {
	return New([]Task{NewTask(0, command)})
}

// Parallel builds a plan of independent commands that may run concurrently.
func Parallel(commands []string) *Plan {
	tasks := make([]Task, 0, len(commands))
	for id, command := range commands {
		tasks = append(tasks, NewTask(id, command))
	}
	return New(tasks)
}

// Sequential builds a plan of commands forced to run one at a time in order.
func Sequential(commands []string) *Plan {
	plan := Parallel(commands)
	plan.DisableParallelization()
	return plan
}

// PerDirectory fans one command out across many working directories.
func PerDirectory(dirs []string, command string) *Plan {
	tasks := make([]Task, 0, len(dirs))
	for id, dir := range dirs {
		task := NewTask(id, command)
		task.WorkingDir = dir
		task.Description = fmt.Sprintf("%s in %s", command, filepath.Base(dir))
		tasks = append(tasks, task)
	}
	return New(tasks)
}
