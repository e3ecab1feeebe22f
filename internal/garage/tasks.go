package garage

import (
	"context"
	"fmt"

	"github.com/midniteauto/backend/internal/gateway"
)

// TaskService manages a build's to-do list.
type TaskService struct {
	gw *gateway.Gateway
}

func NewTaskService(gw *gateway.Gateway) *TaskService {
	return &TaskService{gw: gw}
}

// List returns a car's tasks, newest first.
func (s *TaskService) List(ctx context.Context, carID string) ([]Task, error) {
	var tasks []Task
	err := s.gw.From("car_tasks").Eq("car_id", carID).Order("created_at", true).Find(ctx, &tasks)
	if err != nil {
		return nil, fmt.Errorf("garage: list tasks: %w", err)
	}
	return tasks, nil
}

// OpenCount returns how many tasks remain open, without loading them.
func (s *TaskService) OpenCount(ctx context.Context, carID string) (int64, error) {
	count, err := s.gw.From("car_tasks").Eq("car_id", carID).Eq("done", false).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("garage: open task count: %w", err)
	}
	return count, nil
}

func (s *TaskService) Add(ctx context.Context, task *Task) error {
	if task.CarID == "" || task.Title == "" {
		return fmt.Errorf("garage: add task: car_id and title are required")
	}
	if err := s.gw.Insert(ctx, task); err != nil {
		return fmt.Errorf("garage: add task: %w", err)
	}
	return nil
}

func (s *TaskService) Update(ctx context.Context, id string, fields map[string]any) (Task, error) {
	var task Task
	if err := s.gw.Update(ctx, &task, id, fields); err != nil {
		return Task{}, fmt.Errorf("garage: update task: %w", err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, &Task{}, id); err != nil {
		return fmt.Errorf("garage: delete task: %w", err)
	}
	return nil
}
