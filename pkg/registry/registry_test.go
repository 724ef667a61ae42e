// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validActivity() Activity {
	return Activity{
		ID:          "loan.approval.predict",
		DisplayName: "Predict Loan Approval",
		Category:    "decisioning",
		TaskType:    "predict-loan-approval",
		Process:     "loan-approval",
		Timeout:     "10s",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"gender"},
		},
		ErrorCodes: []string{"UNKNOWN_CATEGORY", "INVALID_INPUT"},
	}
}

func TestLoadRegistry_ProjectFile(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	activity, ok := reg.FindByTaskType("predict-loan-approval")
	require.True(t, ok)
	assert.Equal(t, "loan.approval.predict", activity.ID)
	assert.Equal(t, "loan-approval", activity.Process)
	timeout, err := activity.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
	assert.NoError(t, activity.RequireErrorCodes([]string{"UNKNOWN_CATEGORY", "INVALID_INPUT", "MODEL_CONFIGURATION_ERROR"}))
}

func TestActivityRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(r *ActivityRegistry)
		wantErr string
	}{
		{"valid", func(*ActivityRegistry) {}, ""},
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"bad id", func(r *ActivityRegistry) { r.Activities[0].ID = "PredictLoan" }, "PredictLoan"},
		{"bad timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "ten seconds" }, "invalid timeout"},
		{"negative timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "-5s" }, "negative timeout"},
		{"missing task type", func(r *ActivityRegistry) { r.Activities[0].TaskType = "" }, "taskType"},
		{"missing process", func(r *ActivityRegistry) { r.Activities[0].Process = "" }, "process"},
		{
			name: "duplicate id",
			modify: func(r *ActivityRegistry) {
				dup := validActivity()
				dup.TaskType = "other"
				r.Activities = append(r.Activities, dup)
			},
			wantErr: "duplicate activity ID",
		},
		{
			name: "invalid schema",
			modify: func(r *ActivityRegistry) {
				r.Activities[0].InputSchema = map[string]interface{}{"type": 12}
			},
			wantErr: "invalid inputSchema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: []Activity{validActivity()}}
			tt.modify(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireErrorCodes(t *testing.T) {
	err := validActivity().RequireErrorCodes([]string{"INVALID_INPUT", "PREDICTION_FAILED"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREDICTION_FAILED")
	assert.NotContains(t, err.Error(), "INVALID_INPUT ")
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	reg := &ActivityRegistry{Version: "1.0.0", Activities: []Activity{validActivity()}}
	require.NoError(t, Save(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.LastUpdated)
	assert.Equal(t, reg.Activities[0].ID, loaded.Activities[0].ID)

	_, ok := loaded.FindByTaskType("missing")
	assert.False(t, ok)
}
