package actions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a scripted run loaded from disk. YAML is the native format;
// JSON documents parse as well since YAML accepts them.
type Plan struct {
	Name    string        `yaml:"name" json:"name"`
	Actions []BatchAction `yaml:"actions" json:"actions"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (Plan, error) {
	var plan Plan
	raw, err := os.ReadFile(path)
	if err != nil {
		return plan, fmt.Errorf("read plan: %w", err)
	}
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return plan, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if len(plan.Actions) == 0 {
		return plan, fmt.Errorf("plan %s has no actions", path)
	}
	for i, a := range plan.Actions {
		if a.Action == "" {
			return plan, fmt.Errorf("plan %s: action %d missing the action field", path, i)
		}
	}
	return plan, nil
}
