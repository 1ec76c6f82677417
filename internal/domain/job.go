package domain

import (
	"encoding/json"
	"time"
)

// JobState enumerates the lifecycle reported by the result backend.
type JobState string

const (
	JobPending JobState = "PENDING"
	JobStarted JobState = "STARTED"
	JobRetry   JobState = "RETRY"
	JobSuccess JobState = "SUCCESS"
	JobFailure JobState = "FAILURE"
)

// Job wire names shared by the gateway and the workers.
const (
	TaskCollectTrends   = "tasks.collect_trends_task"
	TaskGenerateContent = "tasks.generate_content_task"
)

// Job is the backend view of one enqueued unit of work.
type Job struct {
	ID     string          `json:"task_id"`
	State  JobState        `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Info   string          `json:"info,omitempty"`
	DoneAt *time.Time      `json:"date_done,omitempty"`
}
