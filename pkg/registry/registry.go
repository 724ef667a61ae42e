// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"loan-approval-workers/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON and stamps LastUpdated.
func Save(reg *ActivityRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks every activity and returns all problems joined.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	var errs []error
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range r.Activities {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("activity missing required field: id"))
			continue
		}
		if ids[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate activity ID: %s", a.ID))
		}
		ids[a.ID] = true

		if a.TaskType != "" && taskTypes[a.TaskType] {
			errs = append(errs, fmt.Errorf("duplicate task type: %s", a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if err := a.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate checks a single activity definition.
func (a Activity) Validate() error {
	var errs []error
	if err := validation.ValidateActivityNaming(a.ID); err != nil {
		errs = append(errs, err)
	}
	if a.DisplayName == "" {
		errs = append(errs, fmt.Errorf("activity %s missing required field: displayName", a.ID))
	}
	if a.TaskType == "" {
		errs = append(errs, fmt.Errorf("activity %s missing required field: taskType", a.ID))
	}
	if a.Category == "" {
		errs = append(errs, fmt.Errorf("activity %s missing required field: category", a.ID))
	}
	if a.Process == "" {
		errs = append(errs, fmt.Errorf("activity %s missing required field: process", a.ID))
	}
	if d, err := a.TimeoutDuration(); err != nil {
		errs = append(errs, fmt.Errorf("activity %s has invalid timeout %q: %w", a.ID, a.Timeout, err))
	} else if d < 0 {
		errs = append(errs, fmt.Errorf("activity %s has negative timeout %q", a.ID, a.Timeout))
	}
	if a.Retries < 0 {
		errs = append(errs, fmt.Errorf("activity %s has negative retries", a.ID))
	}
	for name, schema := range map[string]map[string]interface{}{"inputSchema": a.InputSchema, "outputSchema": a.OutputSchema} {
		if len(schema) == 0 {
			continue
		}
		if _, err := validation.Compile(schema); err != nil {
			errs = append(errs, fmt.Errorf("activity %s has invalid %s: %w", a.ID, name, err))
		}
	}
	return errors.Join(errs...)
}

// FindByTaskType returns the activity bound to a Zeebe task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// RequireErrorCodes reports codes a worker can raise that the activity does
// not declare.
func (a Activity) RequireErrorCodes(codes []string) error {
	declared := make(map[string]bool, len(a.ErrorCodes))
	for _, c := range a.ErrorCodes {
		declared[c] = true
	}
	var missing []string
	for _, c := range codes {
		if !declared[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("activity %s does not declare error codes %v", a.ID, missing)
	}
	return nil
}
