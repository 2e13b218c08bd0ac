package orchestrator

import "sync"

// jobQueue is a FIFO of job ids awaiting a worker. Submissions past the
// capacity stay out of the queue and surface CapacityExceeded to the caller.
type jobQueue struct {
	mu  sync.Mutex
	ids []string
}

func newJobQueue() *jobQueue {
	return &jobQueue{}
}

// Enqueue appends a job id
func (q *jobQueue) Enqueue(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
}

// Pop removes and returns the oldest job id, or "" when the queue is empty
func (q *jobQueue) Pop() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ids) == 0 {
		return ""
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id
}

// Len returns the number of queued job ids
func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}
