package board

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"tacly.com/taskboard/internal/constants"
	model "tacly.com/taskboard/internal/models"
)

func task(id string, status constants.TaskStatus) model.Task {
	return model.Task{
		ID:          id,
		UserID:      "u1",
		Title:       "title " + id,
		Description: "description " + id,
		Status:      status,
		Priority:    constants.PriorityMedium,
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func sample() Board {
	return New([]model.Task{
		task("a", constants.StatusToDo),
		task("x", constants.StatusDoing),
		task("b", constants.StatusToDo),
		task("c", constants.StatusToDo),
		task("y", constants.StatusDone),
	})
}

func TestColumn(t *testing.T) {
	b := sample()

	if got := ids(b.Column(constants.StatusToDo)); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected ToDo column %v", got)
	}
	if got := b.Column("Archived"); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil column, got %#v", got)
	}
}

func TestDropOnColumn(t *testing.T) {
	b, change := sample().DragStart("a").DropOnColumn(constants.StatusDoing)

	if change == nil {
		t.Fatal("expected a status change")
	}
	want := task("a", constants.StatusDoing)
	if !reflect.DeepEqual(change.Task, want) {
		t.Errorf("status change must only replace the status:\n got %+v\nwant %+v", change.Task, want)
	}
	if b.Dragged() != "" {
		t.Error("drag state must be cleared")
	}
	if orig, _ := b.Find("a"); orig.Status != constants.StatusToDo {
		t.Error("the board itself waits for the server before changing")
	}
}

func TestDropOnSameColumnIsNoop(t *testing.T) {
	b, change := sample().DragStart("a").DropOnColumn(constants.StatusToDo)
	if change != nil {
		t.Errorf("expected no change, got %+v", change)
	}
	if b.Dragged() != "" {
		t.Error("drag state must be cleared")
	}
}

func TestDropWithoutDrag(t *testing.T) {
	b := sample()
	if _, change := b.DropOnColumn(constants.StatusDone); change != nil {
		t.Errorf("expected no change, got %+v", change)
	}
	if _, change := b.DropOnTask("a"); change != nil {
		t.Errorf("expected no change, got %+v", change)
	}
}

func TestDropOnTaskReordersWithinColumn(t *testing.T) {
	cases := []struct {
		from, to string
		want     []string
	}{
		{"c", "a", []string{"x", "y", "c", "a", "b"}},
		{"a", "c", []string{"x", "y", "b", "c", "a"}},
		{"a", "b", []string{"x", "y", "b", "a", "c"}},
	}

	for _, tc := range cases {
		b, change := sample().DragStart(tc.from).DropOnTask(tc.to)
		if change != nil {
			t.Errorf("%s->%s: reorder must not emit a change", tc.from, tc.to)
		}
		if got := ids(b.Tasks()); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s->%s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
		if b.Dragged() != "" {
			t.Errorf("%s->%s: drag state must be cleared", tc.from, tc.to)
		}
	}
}

func TestDropOnTaskDoesNotMutateInput(t *testing.T) {
	b := sample()
	before := ids(b.Tasks())

	b.DragStart("c").DropOnTask("a")

	if got := ids(b.Tasks()); !reflect.DeepEqual(got, before) {
		t.Errorf("transition mutated its input: %v", got)
	}
}

func TestDropOnTaskInOtherColumnChangesStatus(t *testing.T) {
	b, change := sample().DragStart("a").DropOnTask("y")

	if change == nil || change.Task.ID != "a" || change.Task.Status != constants.StatusDone {
		t.Fatalf("expected a to move to Done, got %+v", change)
	}
	if got := ids(b.Tasks()); !reflect.DeepEqual(got, []string{"a", "x", "b", "c", "y"}) {
		t.Errorf("a status change must not reorder, got %v", got)
	}
}

func TestDropOnItself(t *testing.T) {
	b, change := sample().DragStart("b").DropOnTask("b")
	if change != nil {
		t.Errorf("expected no change, got %+v", change)
	}
	if got := ids(b.Tasks()); !reflect.DeepEqual(got, ids(sample().Tasks())) {
		t.Errorf("order changed: %v", got)
	}
	if b.Dragged() != "" {
		t.Error("drag state must be cleared")
	}
}

type fakeBackend struct {
	tasks     []model.Task
	updates   []model.Task
	lists     int
	updateErr error
}

func (f *fakeBackend) ListTasks(context.Context) ([]model.Task, error) {
	f.lists++
	return f.tasks, nil
}

func (f *fakeBackend) UpdateTask(_ context.Context, t model.Task) error {
	f.updates = append(f.updates, t)
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i] = t
		}
	}
	return nil
}

func newBackend() *fakeBackend {
	return &fakeBackend{tasks: []model.Task{
		task("a", constants.StatusToDo),
		task("b", constants.StatusToDo),
		task("c", constants.StatusDoing),
	}}
}

func TestControllerMove(t *testing.T) {
	backend := newBackend()
	ctrl := NewController(backend)
	ctx := context.Background()

	if err := ctrl.Refresh(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if err := ctrl.Move(ctx, "a", constants.StatusDoing); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	if len(backend.updates) != 1 {
		t.Fatalf("expected exactly one update, got %d", len(backend.updates))
	}
	want := task("a", constants.StatusDoing)
	if !reflect.DeepEqual(backend.updates[0], want) {
		t.Errorf("unexpected update payload %+v", backend.updates[0])
	}
	if backend.lists != 2 {
		t.Errorf("expected a re-fetch after the update, got %d lists", backend.lists)
	}
	if got := ids(ctrl.Board().Column(constants.StatusDoing)); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("unexpected Doing column %v", got)
	}
}

func TestControllerReorderIsEphemeral(t *testing.T) {
	backend := newBackend()
	ctrl := NewController(backend)
	ctx := context.Background()

	_ = ctrl.Refresh(ctx)
	if err := ctrl.Reorder(ctx, "b", "a"); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	if len(backend.updates) != 0 {
		t.Errorf("reorder must not reach the server, got %d updates", len(backend.updates))
	}
	if got := ids(ctrl.Board().Column(constants.StatusToDo)); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("unexpected ToDo column %v", got)
	}

	_ = ctrl.Refresh(ctx)
	if got := ids(ctrl.Board().Column(constants.StatusToDo)); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("a refresh restores server order, got %v", got)
	}
}

func TestControllerUpdateFailure(t *testing.T) {
	backend := newBackend()
	backend.updateErr = errors.New("400 all fields must be filled")
	ctrl := NewController(backend)
	ctx := context.Background()

	_ = ctrl.Refresh(ctx)
	if err := ctrl.Move(ctx, "a", constants.StatusDone); !errors.Is(err, backend.updateErr) {
		t.Fatalf("expected the backend error, got %v", err)
	}
	if ctrl.Board().Dragged() != "" {
		t.Error("drag state must be cleared after a failed update")
	}
	if backend.lists != 1 {
		t.Errorf("no re-fetch after a failed update, got %d lists", backend.lists)
	}
}
