// internal/common/camunda/camundatest/jobclient.go

// Package camundatest provides an in-memory worker.JobClient that records
// the commands a job handler sends.
package camundatest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

// gateway implements the three job commands of pb.GatewayClient. Any other
// call panics on the nil embedded interface.
type gateway struct {
	pb.GatewayClient

	mu        sync.Mutex
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
	sendErr   error
}

func (g *gateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *gateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (g *gateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

func neverRetry(context.Context, error) bool { return false }

// JobClient records CompleteJob, FailJob and ThrowError requests.
type JobClient struct {
	gw *gateway
}

func NewJobClient() *JobClient {
	return &JobClient{gw: &gateway{}}
}

// FailCompletions makes every CompleteJob call return err.
func (c *JobClient) FailCompletions(err error) {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	c.gw.sendErr = err
}

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gw, neverRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gw, neverRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gw, neverRetry)
}

func (c *JobClient) Completed() []*pb.CompleteJobRequest {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	return append([]*pb.CompleteJobRequest(nil), c.gw.completed...)
}

func (c *JobClient) Failed() []*pb.FailJobRequest {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	return append([]*pb.FailJobRequest(nil), c.gw.failed...)
}

func (c *JobClient) Thrown() []*pb.ThrowErrorRequest {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	return append([]*pb.ThrowErrorRequest(nil), c.gw.thrown...)
}

// Variables decodes the JSON variables of a request.
func Variables(raw string) map[string]interface{} {
	vars := map[string]interface{}{}
	_ = json.Unmarshal([]byte(raw), &vars)
	return vars
}

// NewJob builds an activated job carrying variables.
func NewJob(key int64, taskType string, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                      key,
		Type:                     taskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "loan-approval",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_PredictLoanApproval",
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Deadline:                 0,
		Variables:                string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}
