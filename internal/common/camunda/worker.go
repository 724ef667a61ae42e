// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// WorkerOptions configures a job worker subscription.
type WorkerOptions struct {
	TaskType       string
	MaxJobsActive  int
	Timeout        time.Duration
	RequestTimeout time.Duration
	PollInterval   time.Duration
	FetchVariables []string
}

// OpenWorker subscribes handler to opts.TaskType. The returned worker must be
// closed on shutdown.
func OpenWorker(client zbc.Client, opts WorkerOptions, handler worker.JobHandler) worker.JobWorker {
	step := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(handler).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Name(fmt.Sprintf("%s-worker", opts.TaskType))

	if opts.RequestTimeout > 0 {
		step = step.RequestTimeout(opts.RequestTimeout)
	}
	if opts.PollInterval > 0 {
		step = step.PollInterval(opts.PollInterval)
	}
	if len(opts.FetchVariables) > 0 {
		step = step.FetchVariables(opts.FetchVariables...)
	}

	return step.Open()
}
