package cpm

import (
	"math/rand"
	"reflect"
	"strconv"
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
	return model.Task{ID: id, Name: "Task " + id, Start: day(start), End: day(end)}
}

func fs(from, to string) model.Dependency {
	return model.Dependency{FromID: from, ToID: to, Type: model.FinishToStart}
}

func chainExample() ([]model.Task, []model.Dependency) {
	e := task("E", "2024-07-26", "2024-07-26")
	e.Type = model.TaskTypeMilestone
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-10"),
		task("B", "2024-06-11", "2024-06-25"),
		task("C", "2024-06-26", "2024-07-15"),
		task("D", "2024-07-16", "2024-07-25"),
		e,
	}
	deps := []model.Dependency{fs("A", "B"), fs("B", "C"), fs("C", "D"), fs("D", "E")}
	return tasks, deps
}

func TestAnalyze_LinearChain(t *testing.T) {
	tasks, deps := chainExample()
	result := Analyze(tasks, deps, Options{})

	if want := model.DaysBetween(day("2024-06-01"), day("2024-07-26")); result.ProjectDuration != want {
		t.Errorf("expected project duration %d, got %d", want, result.ProjectDuration)
	}
	if got := model.FormatDate(result.ProjectEndDate()); got != "2024-07-26" {
		t.Errorf("expected project end 2024-07-26, got %s", got)
	}
	if !reflect.DeepEqual(result.CriticalTaskIDs, []string{"A", "B", "C", "D", "E"}) {
		t.Errorf("expected all tasks critical, got %v", result.CriticalTaskIDs)
	}
	if len(result.CriticalPaths) != 1 || len(result.CriticalPaths[0]) != 5 {
		t.Errorf("expected one 5-task critical path, got %v", result.CriticalPaths)
	}

	assertSchedule(t, result.Nodes["A"], 0, 9, 0, 9, 0, true)
	assertSchedule(t, result.Nodes["B"], 10, 24, 10, 24, 0, true)
	assertSchedule(t, result.Nodes["C"], 25, 44, 25, 44, 0, true)
	assertSchedule(t, result.Nodes["D"], 45, 54, 45, 54, 0, true)
	assertSchedule(t, result.Nodes["E"], 55, 55, 55, 55, 0, true)
}

func TestAnalyze_ParallelBranches(t *testing.T) {
	// A -> B(10d) -> D
	// A -> C(4d)  -> D
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-03"),
		task("B", "2024-06-04", "2024-06-14"),
		task("C", "2024-06-04", "2024-06-08"),
		task("D", "2024-06-15", "2024-06-16"),
	}
	deps := []model.Dependency{fs("A", "B"), fs("A", "C"), fs("B", "D"), fs("C", "D")}

	result := Analyze(tasks, deps, Options{})

	if result.IsCritical("C") {
		t.Error("expected the shorter branch C to NOT be critical")
	}
	if f, _ := result.Float("C"); f != 6 {
		t.Errorf("expected C float = 10-4 = 6, got %d", f)
	}
	for _, id := range []string{"A", "B", "D"} {
		if !result.IsCritical(id) {
			t.Errorf("expected task %s to be critical", id)
		}
	}
	if !reflect.DeepEqual(result.CriticalPaths, [][]string{{"A", "B", "D"}}) {
		t.Errorf("expected single path A-B-D, got %v", result.CriticalPaths)
	}
}

func TestAnalyze_TiedPathsAllReported(t *testing.T) {
	//     A
	//   /   \
	//  B     C   (same duration)
	//   \   /
	//     D
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-02"),
		task("B", "2024-06-03", "2024-06-05"),
		task("C", "2024-06-03", "2024-06-05"),
		task("D", "2024-06-06", "2024-06-07"),
	}
	deps := []model.Dependency{fs("A", "B"), fs("A", "C"), fs("B", "D"), fs("C", "D")}

	result := Analyze(tasks, deps, Options{})

	want := [][]string{{"A", "B", "D"}, {"A", "C", "D"}}
	if !reflect.DeepEqual(result.CriticalPaths, want) {
		t.Errorf("expected paths %v, got %v", want, result.CriticalPaths)
	}

	limited := Analyze(tasks, deps, Options{MaxPaths: 1})
	if len(limited.CriticalPaths) != 1 {
		t.Errorf("expected MaxPaths to cap enumeration at 1, got %v", limited.CriticalPaths)
	}
}

func TestAnalyze_CycleTerminates(t *testing.T) {
	// A -> B -> C -> A
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-03"),
		task("B", "2024-06-04", "2024-06-06"),
		task("C", "2024-06-07", "2024-06-09"),
	}
	deps := []model.Dependency{fs("A", "B"), fs("B", "C"), fs("C", "A")}

	done := make(chan *Result, 1)
	go func() { done <- Analyze(tasks, deps, Options{}) }()

	var result *Result
	select {
	case result = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Analyze did not return on a cyclic graph")
	}

	if len(result.Cycles) != 1 {
		t.Errorf("expected one ignored edge, got %v", result.Cycles)
	}
	assertInvariants(t, result)
}

func TestAnalyze_CycleWithAcyclicTail(t *testing.T) {
	tasks := []model.Task{
		task("X", "2024-06-01", "2024-06-02"),
		task("A", "2024-06-03", "2024-06-04"),
		task("B", "2024-06-05", "2024-06-06"),
		task("Y", "2024-06-07", "2024-06-20"),
	}
	deps := []model.Dependency{fs("X", "A"), fs("A", "B"), fs("B", "A"), fs("X", "Y")}

	result := Analyze(tasks, deps, Options{})
	if len(result.Cycles) == 0 {
		t.Error("expected the A <-> B cycle to be reported")
	}
	assertInvariants(t, result)
	if !result.IsCritical("Y") {
		t.Error("expected the long acyclic branch X -> Y to stay critical")
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	tasks, deps := chainExample()
	first := Analyze(tasks, deps, Options{})
	second := Analyze(tasks, deps, Options{})
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical results for identical inputs")
	}
}

func TestAnalyze_DoesNotMutateInputs(t *testing.T) {
	tasks, deps := chainExample()
	tasks[1].Predecessors = []string{"A"}
	tasksCopy := model.CloneTasks(tasks)
	depsCopy := model.CloneDependencies(deps)

	Analyze(tasks, deps, Options{})

	if !reflect.DeepEqual(tasks, tasksCopy) || !reflect.DeepEqual(deps, depsCopy) {
		t.Error("Analyze mutated its inputs")
	}
}

func TestAnalyze_InvalidDatesTreatedAsZeroDuration(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-10", "2024-06-01"),
		{ID: "B", Name: "no dates"},
	}
	result := Analyze(tasks, nil, Options{})
	if result.Nodes["A"].Duration != 0 || result.Nodes["B"].Duration != 0 {
		t.Errorf("expected zero durations, got A=%d B=%d",
			result.Nodes["A"].Duration, result.Nodes["B"].Duration)
	}
	assertInvariants(t, result)
}

func TestAnalyze_Empty(t *testing.T) {
	result := Analyze(nil, nil, Options{})
	if result.ProjectDuration != 0 || len(result.CriticalTaskIDs) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if !result.ProjectEndDate().IsZero() {
		t.Error("expected zero project end date without tasks")
	}
}

func TestAnalyze_ExplicitAnchor(t *testing.T) {
	tasks := []model.Task{task("A", "2024-06-01", "2024-06-03")}
	result := Analyze(tasks, nil, Options{Anchor: day("2024-05-30")})
	assertSchedule(t, result.Nodes["A"], 2, 4, 2, 4, 0, true)
	if got := model.FormatDate(result.ProjectEndDate()); got != "2024-06-03" {
		t.Errorf("expected project end 2024-06-03, got %s", got)
	}
}

func TestAnalyze_DependencyTypesAndLag(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-06"), // 5 days
		task("B", "2024-06-01", "2024-06-04"), // 3 days
		task("C", "2024-06-01", "2024-06-03"), // 2 days
		task("D", "2024-06-01", "2024-06-02"), // 1 day
	}
	deps := []model.Dependency{
		{FromID: "A", ToID: "B", Type: model.StartToStart, Lag: 2},
		{FromID: "A", ToID: "C", Type: model.FinishToFinish},
		{FromID: "A", ToID: "D", Type: model.FinishToStart, Lag: -1},
	}

	result := Analyze(tasks, deps, Options{})

	if es := result.Nodes["B"].EarlyStart; es != 2 {
		t.Errorf("start_to_start +2: expected B ES=2, got %d", es)
	}
	if ef := result.Nodes["C"].EarlyFinish; ef != 5 {
		t.Errorf("finish_to_finish: expected C EF=5, got %d", ef)
	}
	if es := result.Nodes["D"].EarlyStart; es != 5 {
		t.Errorf("finish_to_start -1: expected D ES=5, got %d", es)
	}
	assertInvariants(t, result)
}

func TestAnalyze_DurationFollowsSinks(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-11"), // 10 days
		task("B", "2024-06-01", "2024-06-03"), // 2 days
	}
	deps := []model.Dependency{{FromID: "A", ToID: "B", Type: model.StartToStart}}

	result := Analyze(tasks, deps, Options{})

	if result.ProjectDuration != 2 {
		t.Errorf("expected duration from sink B = 2, got %d", result.ProjectDuration)
	}
	if ef := result.Nodes["A"].EarlyFinish; ef != 10 {
		t.Errorf("expected A EF=10, got %d", ef)
	}
	if result.LatestFinish != 10 {
		t.Errorf("expected latest finish 10, got %d", result.LatestFinish)
	}
}

func TestAnalyze_Waves(t *testing.T) {
	tasks := []model.Task{
		task("A", "2024-06-01", "2024-06-02"),
		task("B", "2024-06-01", "2024-06-03"),
		task("C", "2024-06-04", "2024-06-05"),
	}
	result := Analyze(tasks, []model.Dependency{fs("B", "C")}, Options{})

	if len(result.Waves) != 2 {
		t.Fatalf("expected 2 waves, got %+v", result.Waves)
	}
	if result.Waves[0].TaskIDs[0] != "B" {
		t.Errorf("expected critical task B first in wave 0, got %v", result.Waves[0].TaskIDs)
	}
	if result.Nodes["C"].Wave != 1 {
		t.Errorf("expected C in wave 1, got %d", result.Nodes["C"].Wave)
	}
}

func TestQueries_UnknownID(t *testing.T) {
	tasks, deps := chainExample()
	result := Analyze(tasks, deps, Options{})

	if result.IsCritical("nope") {
		t.Error("unknown id should not be critical")
	}
	if _, ok := result.Float("nope"); ok {
		t.Error("expected no float for unknown id")
	}
	if _, ok := result.LateFinishDate("nope"); ok {
		t.Error("expected no date for unknown id")
	}
	if d, ok := result.EarlyStartDate("B"); !ok || model.FormatDate(d) != "2024-06-11" {
		t.Errorf("expected B early start 2024-06-11, got %s", model.FormatDate(d))
	}
	if d, ok := result.LateFinishDate("D"); !ok || model.FormatDate(d) != "2024-07-25" {
		t.Errorf("expected D late finish 2024-07-25, got %s", model.FormatDate(d))
	}
}

func TestAnalyze_RandomDAGProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := day("2024-01-01")

	for round := 0; round < 25; round++ {
		n := 2 + rng.Intn(25)
		tasks := make([]model.Task, n)
		for i := range tasks {
			s := model.AddDays(start, rng.Intn(30))
			tasks[i] = model.Task{ID: strconv.Itoa(i), Start: s, End: model.AddDays(s, rng.Intn(10))}
		}
		var deps []model.Dependency
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rng.Intn(4) == 0 {
					deps = append(deps, fs(strconv.Itoa(i), strconv.Itoa(j)))
				}
			}
		}

		result := Analyze(tasks, deps, Options{})
		assertInvariants(t, result)
		if len(result.CriticalPaths) == 0 {
			t.Errorf("round %d: expected at least one critical path", round)
		}
		if got := model.DaysBetween(result.Anchor, result.ProjectEndDate()); got != result.ProjectDuration {
			t.Errorf("round %d: end date offset %d != duration %d", round, got, result.ProjectDuration)
		}
	}
}

func assertInvariants(t *testing.T, r *Result) {
	t.Helper()
	for id, n := range r.Nodes {
		if n.EarlyFinish != n.EarlyStart+n.Duration {
			t.Errorf("task %s: EF != ES + duration", id)
		}
		if n.LateStart != n.LateFinish-n.Duration {
			t.Errorf("task %s: LS != LF - duration", id)
		}
		if n.Float != n.LateStart-n.EarlyStart {
			t.Errorf("task %s: float != LS - ES", id)
		}
		if n.IsCritical != (n.Float == 0) {
			t.Errorf("task %s: critical=%v but float=%d", id, n.IsCritical, n.Float)
		}
		if len(r.Cycles) == 0 && n.Float < 0 {
			t.Errorf("task %s: negative float %d in acyclic graph", id, n.Float)
		}
	}
}

func assertSchedule(t *testing.T, ts *TaskNode, es, ef, ls, lf, float int, critical bool) {
	t.Helper()
	id := ts.Task.ID
	if ts.EarlyStart != es {
		t.Errorf("task %s: expected ES=%d, got %d", id, es, ts.EarlyStart)
	}
	if ts.EarlyFinish != ef {
		t.Errorf("task %s: expected EF=%d, got %d", id, ef, ts.EarlyFinish)
	}
	if ts.LateStart != ls {
		t.Errorf("task %s: expected LS=%d, got %d", id, ls, ts.LateStart)
	}
	if ts.LateFinish != lf {
		t.Errorf("task %s: expected LF=%d, got %d", id, lf, ts.LateFinish)
	}
	if ts.Float != float {
		t.Errorf("task %s: expected float=%d, got %d", id, float, ts.Float)
	}
	if ts.IsCritical != critical {
		t.Errorf("task %s: expected critical=%v, got %v", id, critical, ts.IsCritical)
	}
}
