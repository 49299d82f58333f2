package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/llm"
	"chat-server/internal/infrastructure/queue"
	"chat-server/internal/worker"
)

// fakeTaskQueue hands out each task exactly once, the way the transactional
// Dequeue claims rows.
type fakeTaskQueue struct {
	mu        sync.Mutex
	tasks     []*queue.Task
	completed []uint
	failed    []uint
}

func (q *fakeTaskQueue) Enqueue(ctx context.Context, chatID, userID, prompt string) error {
	return nil
}

func (q *fakeTaskQueue) Dequeue(ctx context.Context) (*queue.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, nil
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	task.Attempts++
	return task, nil
}

func (q *fakeTaskQueue) MarkCompleted(ctx context.Context, taskID uint) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed = append(q.completed, taskID)
	return nil
}

func (q *fakeTaskQueue) MarkFailed(ctx context.Context, taskID uint, err error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append(q.failed, taskID)
	return nil
}

func (q *fakeTaskQueue) GetQueueDepth(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.tasks)), nil
}

type stubChatRepo struct {
	mu     sync.Mutex
	titles map[string]string
}

func (r *stubChatRepo) FindByID(ctx context.Context, id string) (*chat.Chat, error) {
	return &chat.Chat{ID: id}, nil
}

func (r *stubChatRepo) Create(ctx context.Context, c *chat.Chat) error { return nil }

func (r *stubChatRepo) UpdateTitle(ctx context.Context, id, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.titles == nil {
		r.titles = make(map[string]string)
	}
	r.titles[id] = title
	return nil
}

func (r *stubChatRepo) UpdateVisibility(ctx context.Context, id string, v chat.Visibility) error {
	return nil
}

func (r *stubChatRepo) UpdateProject(ctx context.Context, id string, projectID *string) error {
	return nil
}

func (r *stubChatRepo) Delete(ctx context.Context, id string) error { return nil }

func (r *stubChatRepo) ListByUser(ctx context.Context, userID string, limit int, endingBefore string) ([]*chat.Chat, error) {
	return nil, nil
}

func (r *stubChatRepo) ListByProject(ctx context.Context, projectID string) ([]*chat.Chat, error) {
	return nil, nil
}

type stubTitleProvider struct {
	response string
	err      error
}

func (p *stubTitleProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatCompletionResponse{
		Choices: []llm.ChatCompletionChoice{
			{Message: llm.ChatMessage{Role: "assistant", Content: p.response}},
		},
	}, nil
}

func (p *stubTitleProvider) CreateChatCompletionStream(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	return nil, errors.New("not implemented")
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWorkerProcessesClaimedTask(t *testing.T) {
	taskQueue := &fakeTaskQueue{
		tasks: []*queue.Task{{ID: 7, ChatID: "chat-1", UserID: "user-1", Prompt: "plan a trip"}},
	}
	repo := &stubChatRepo{}
	titles := chat.NewTitleGenerator(repo, &stubTitleProvider{response: "Trip planning"}, zerolog.Nop())

	w := worker.NewWorker(1, taskQueue, titles, 5*time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	defer w.Stop()

	waitFor(t, 5*time.Second, func() bool {
		taskQueue.mu.Lock()
		defer taskQueue.mu.Unlock()
		return len(taskQueue.completed) == 1
	})

	if taskQueue.completed[0] != 7 {
		t.Errorf("expected task 7 completed, got %v", taskQueue.completed)
	}
	if len(taskQueue.failed) != 0 {
		t.Errorf("no task should have failed, got %v", taskQueue.failed)
	}

	repo.mu.Lock()
	title := repo.titles["chat-1"]
	repo.mu.Unlock()
	if title != "Trip planning" {
		t.Errorf("expected title 'Trip planning', got %q", title)
	}

	// A claimed task is handed out once; the queue is drained.
	if task, _ := taskQueue.Dequeue(context.Background()); task != nil {
		t.Errorf("queue should be empty, got task %d", task.ID)
	}
}
