package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/Agions/gantt-chart-component/internal/model"
)

func day(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func task(id, start, end string) model.Task {
	return model.Task{ID: id, Start: day(start), End: day(end)}
}

func fs(from, to string) model.Dependency {
	return model.Dependency{FromID: from, ToID: to, Type: model.FinishToStart}
}

func byID(tasks []model.Task) map[string]model.Task {
	m := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}

func assertDates(t *testing.T, got model.Task, start, end string) {
	t.Helper()
	if s := model.FormatDate(got.Start); s != start {
		t.Errorf("task %s: expected start %s, got %s", got.ID, start, s)
	}
	if e := model.FormatDate(got.End); e != end {
		t.Errorf("task %s: expected end %s, got %s", got.ID, end, e)
	}
}

func TestReschedule_ChainPushesForward(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-10"),
		task("B", "2024-06-05", "2024-06-08"), // overlaps A
		task("C", "2024-06-01", "2024-06-01"),
	}
	deps := []model.Dependency{fs("A", "B"), fs("B", "C")}

	out := byID(Reschedule(tasks, deps, nil))

	assertDates(t, out["A"], "2024-06-01", "2024-06-10")
	assertDates(t, out["B"], "2024-06-11", "2024-06-14")
	assertDates(t, out["C"], "2024-06-15", "2024-06-15")
}

func TestReschedule_LatestPredecessorWins(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-03"),
		task("B", "2024-06-01", "2024-06-20"),
		task("C", "2024-06-04", "2024-06-06"),
	}
	out := byID(Reschedule(tasks, []model.Dependency{fs("A", "C"), fs("B", "C")}, nil))
	assertDates(t, out["C"], "2024-06-21", "2024-06-23")
}

func TestReschedule_PullsLateTaskBack(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-02"),
		task("B", "2024-06-20", "2024-06-22"),
	}
	out := byID(Reschedule(tasks, []model.Dependency{fs("A", "B")}, nil))
	assertDates(t, out["B"], "2024-06-03", "2024-06-05")
}

func TestReschedule_LagAndPredecessorList(t *testing.T) {
	a := task("A", "2024-06-01", "2024-06-02")
	b := task("B", "2024-06-01", "2024-06-02")
	b.Predecessors = []string{"A"}
	c := task("C", "2024-06-01", "2024-06-01")

	deps := []model.Dependency{{FromID: "B", ToID: "C", Type: model.FinishToStart, Lag: 2}}
	out := byID(Reschedule([]model.Task{a, b, c}, deps, nil))

	assertDates(t, out["B"], "2024-06-03", "2024-06-04")
	assertDates(t, out["C"], "2024-06-07", "2024-06-07")
}

func TestReschedule_IgnoresNonFinishToStart(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-10"),
		task("B", "2024-06-02", "2024-06-04"),
	}
	deps := []model.Dependency{{FromID: "A", ToID: "B", Type: model.StartToStart}}

	out := Reschedule(tasks, deps, nil)
	if !reflect.DeepEqual(out, tasks) {
		t.Errorf("expected no changes for start_to_start, got %+v", out)
	}
}

func TestReschedule_ReadonlyNotMoved(t *testing.T) {
	b := task("B", "2024-06-02", "2024-06-04")
	b.Readonly = true
	tasks := []model.Task{task("A", "2024-06-01", "2024-06-10"), b}

	out := byID(Reschedule(tasks, []model.Dependency{fs("A", "B")}, nil))
	assertDates(t, out["B"], "2024-06-02", "2024-06-04")
}

func TestReschedule_DoesNotMutateInput(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-10"),
		task("B", "2024-06-02", "2024-06-04"),
	}
	before := model.CloneTasks(tasks)
	Reschedule(tasks, []model.Dependency{fs("A", "B")}, nil)
	if !reflect.DeepEqual(tasks, before) {
		t.Error("Reschedule mutated its input")
	}
}

func TestReschedule_CycleTerminates(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-02"),
		task("B", "2024-06-03", "2024-06-04"),
		task("C", "2024-06-05", "2024-06-06"),
	}
	deps := []model.Dependency{fs("A", "B"), fs("B", "C"), fs("C", "A")}

	done := make(chan []model.Task, 1)
	go func() { done <- Reschedule(tasks, deps, nil) }()
	select {
	case out := <-done:
		if len(out) != 3 {
			t.Errorf("expected 3 tasks, got %d", len(out))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Reschedule did not return on a cyclic graph")
	}
}

func TestPlan_ReportsChanges(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-10"),
		task("B", "2024-06-11", "2024-06-12"), // already in place
		task("C", "2024-06-01", "2024-06-02"),
	}
	_, changes := Plan(tasks, []model.Dependency{fs("A", "B"), fs("B", "C")}, nil)

	want := []Change{{ID: "C", OldStart: "2024-06-01", NewStart: "2024-06-13"}}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("expected %+v, got %+v", want, changes)
	}
}
