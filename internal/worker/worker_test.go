package worker

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/job"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	OnAsk          func(ctx context.Context, j jobModel.Job) jobModel.Job
	OnIngest       func(ctx context.Context, j jobModel.Job) jobModel.Job
}

func (m *MockRagService) Ask(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnAsk != nil {
		return m.OnAsk(ctx, j)
	}
	return j
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnIngest != nil {
		return m.OnIngest(ctx, j)
	}
	return j
}

func (m *MockRagService) Search(ctx context.Context, question string) ([]commonModels.QueryMatch, error) {
	return nil, nil
}

type MockJobStore struct {
	mu        sync.Mutex
	saved     []jobModel.Job
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	m.saved = append(m.saved, j)
	m.mu.Unlock()
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func (m *MockJobStore) statuses() []jobModel.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []jobModel.JobStatus
	for _, j := range m.saved {
		out = append(out, j.Status)
	}
	return out
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 2 {
			t.Errorf("Expected at least 2 workers, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeQuery}
		jobSvc.JobChannel <- jobModel.Job{Id: "test-2", JobType: jobModel.JobTypeIngest}

		time.Sleep(100 * time.Millisecond)

		processed := atomic.LoadInt32(&mockRag.ProcessedCount)
		if processed != 2 {
			t.Errorf("Expected 2 jobs processed, got %d", processed)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestExecuteJob_FinalStatus(t *testing.T) {
	tests := []struct {
		name string
		job  jobModel.Job
		rag  *MockRagService
		want jobModel.JobStatus
	}{
		{
			name: "query completes",
			job:  jobModel.Job{Id: "q", JobType: jobModel.JobTypeQuery},
			rag: &MockRagService{OnAsk: func(ctx context.Context, j jobModel.Job) jobModel.Job {
				j.JobPayload.Answer = "42"
				return j
			}},
			want: jobModel.JobStatusComplete,
		},
		{
			name: "failed ingest keeps the error status",
			job:  jobModel.Job{Id: "i", JobType: jobModel.JobTypeIngest},
			rag: &MockRagService{OnIngest: func(ctx context.Context, j jobModel.Job) jobModel.Job {
				j.Status = jobModel.JobStatusError
				j.Error = jobModel.JobError{Code: http.StatusUnprocessableEntity, Message: "INGESTION_FAILURE: boom"}
				return j
			}},
			want: jobModel.JobStatusError,
		},
		{
			name: "job runs under a deadline",
			job:  jobModel.Job{Id: "d", JobType: jobModel.JobTypeQuery},
			rag: &MockRagService{OnAsk: func(ctx context.Context, j jobModel.Job) jobModel.Job {
				if _, ok := ctx.Deadline(); !ok {
					j.Status = jobModel.JobStatusError
				}
				return j
			}},
			want: jobModel.JobStatusComplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockJobStore{}
			InitServices(&job.Service{JobStore: store}, tt.rag)

			executeJob(tt.job)

			got := store.statuses()
			if len(got) != 2 {
				t.Fatalf("expected 2 saves, got %v", got)
			}
			if got[0] != jobModel.JobStatusRunning {
				t.Errorf("first save got %s, want RUNNING", got[0])
			}
			if got[1] != tt.want {
				t.Errorf("final save got %s, want %s", got[1], tt.want)
			}
			final, _ := store.GetJob(context.Background(), tt.job.Id)
			if final.EndTime.IsZero() {
				t.Error("EndTime not set")
			}
		})
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 0)
	idleWorkerTimeout = 20 * time.Millisecond
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	workerWaitGroup = wg
	stopWorkerChannel = make(chan bool)

	createWorker()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("idle worker was not retired")
	}
	if count := atomic.LoadInt64(&currentWorkerCount); count != 0 {
		t.Errorf("Worker should have timed out and retired, but count is %d", count)
	}
}

func TestClaimRetirement_KeepsFloor(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 2)
	atomic.StoreInt64(&minWorkerCount, 1)
	t.Cleanup(func() {
		atomic.StoreInt64(&currentWorkerCount, 0)
		atomic.StoreInt64(&minWorkerCount, 0)
	})

	if !claimRetirement() {
		t.Fatal("worker above the floor should retire")
	}
	if claimRetirement() {
		t.Fatal("worker at the floor must not retire")
	}
	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestWorker_IdleTimeoutKeepsMinimum(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 1)
	idleWorkerTimeout = 5 * time.Millisecond
	t.Cleanup(func() {
		atomic.StoreInt64(&minWorkerCount, 0)
		idleWorkerTimeout = 20 * time.Millisecond
	})
	InitServices(&job.Service{JobChannel: make(chan jobModel.Job)}, &MockRagService{})

	wg := &sync.WaitGroup{}
	workerWaitGroup = wg
	stopWorkerChannel = make(chan bool)

	// all three time out on the same schedule
	for range 3 {
		createWorker()
	}

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&currentWorkerCount) > 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	// several more idle rounds must not take the pool below the floor
	time.Sleep(100 * time.Millisecond)
	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Fatalf("count = %d, want the floor of 1", count)
	}

	stopWorkerChannel <- true
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("last worker did not stop")
	}
	if count := atomic.LoadInt64(&currentWorkerCount); count != 0 {
		t.Errorf("count after stop = %d, want 0", count)
	}
}
