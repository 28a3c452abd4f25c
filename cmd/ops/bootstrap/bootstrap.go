package main

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// Step is one parameter the services read through a *_SSM_PARAM pointer.
type Step struct {
	// Label is shown to the operator.
	Label string

	// Key is the category/key under /{env}/outfitpicker/.
	Key string

	// EnvVar holds the value locally. Services resolve <EnvVar>_SSM_PARAM.
	EnvVar string

	// Secret steps are stored as SecureString and never echoed.
	Secret bool

	// Optional steps are skipped when EnvVar is unset.
	Optional bool

	// Validate, if set, rejects bad values before anything is written.
	Validate func(ctx context.Context, value string) error
}

// BuildInventory lists the parameters in write order.
func BuildInventory(v *Validator) []Step {
	return []Step{
		{
			Label:    "OpenWeatherMap API Key",
			Key:      "weather/owm_api_key",
			EnvVar:   "OWM_API_KEY",
			Secret:   true,
			Validate: v.ValidateOWMKey,
		},
		{
			Label:    "Alexa Skill ID",
			Key:      "skill/application_id",
			EnvVar:   "ALEXA_SKILL_ID",
			Optional: true,
			Validate: v.ValidateSkillID,
		},
	}
}

// Runner walks the inventory. It is separate from main for testing.
type Runner struct {
	SSM    *SSMManager
	Lookup func(key string) (string, bool)
	Stderr io.Writer

	// Overwrite replaces parameters that already exist instead of keeping them.
	Overwrite bool
	// SkipValidation writes values without probing them.
	SkipValidation bool
}

// Action is what happened to one parameter.
type Action string

const (
	ActionWritten     Action = "written"
	ActionOverwritten Action = "overwritten"
	ActionKept        Action = "kept"
	ActionSkipped     Action = "skipped"
)

// StepResult records one step's outcome.
type StepResult struct {
	Label  string
	EnvVar string
	Path   string
	Action Action
}

// Run processes every step in order and stops at the first failure.
func (r *Runner) Run(ctx context.Context, steps []Step) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	for i, step := range steps {
		fmt.Fprintf(r.Stderr, "\n[%d/%d] %s\n", i+1, len(steps), step.Label)

		res, err := r.processStep(ctx, step)
		if err != nil {
			return results, fmt.Errorf("step %q failed: %w", step.Label, err)
		}
		results = append(results, res)
	}
	r.printSummary(results)
	return results, nil
}

func (r *Runner) processStep(ctx context.Context, step Step) (StepResult, error) {
	path := r.SSM.SSMPath(step.Key)
	res := StepResult{Label: step.Label, EnvVar: step.EnvVar, Path: path}

	value, _ := r.Lookup(step.EnvVar)
	if value == "" {
		if step.Optional {
			fmt.Fprintf(r.Stderr, "  %s not set, skipped\n", step.EnvVar)
			res.Action = ActionSkipped
			return res, nil
		}
		return res, fmt.Errorf("%s is not set", step.EnvVar)
	}

	exists, err := r.SSM.ParameterExists(ctx, path)
	if err != nil {
		return res, err
	}
	if exists && !r.Overwrite {
		fmt.Fprintf(r.Stderr, "  Parameter already exists: %s (use -overwrite to replace)\n", path)
		res.Action = ActionKept
		return res, nil
	}

	if step.Validate != nil && !r.SkipValidation {
		if err := step.Validate(ctx, value); err != nil {
			return res, fmt.Errorf("invalid %s: %w", step.EnvVar, err)
		}
		fmt.Fprintf(r.Stderr, "  Validated\n")
	}

	if step.Secret {
		err = r.SSM.PutSecret(ctx, path, value, exists)
	} else {
		err = r.SSM.PutString(ctx, path, value, exists)
	}
	if err != nil {
		return res, err
	}

	res.Action = ActionWritten
	if exists {
		res.Action = ActionOverwritten
	}
	fmt.Fprintf(r.Stderr, "  Stored: %s\n", path)
	return res, nil
}

func (r *Runner) printSummary(results []StepResult) {
	counts := make(map[Action]int)
	fmt.Fprintf(r.Stderr, "\n============================================================\n")
	fmt.Fprintf(r.Stderr, "  Bootstrap Summary\n")
	fmt.Fprintf(r.Stderr, "============================================================\n")
	for _, res := range results {
		counts[res.Action]++
		fmt.Fprintf(r.Stderr, "  %-14s %s\n", "["+string(res.Action)+"]", res.Label)
	}
	fmt.Fprintf(r.Stderr, "------------------------------------------------------------\n")
	fmt.Fprintf(r.Stderr, "  Written: %d | Overwritten: %d | Kept: %d | Skipped: %d\n",
		counts[ActionWritten], counts[ActionOverwritten], counts[ActionKept], counts[ActionSkipped])
	fmt.Fprintf(r.Stderr, "============================================================\n")
}

// WritePointers prints one KEY_SSM_PARAM=path line per stored parameter, in
// the form the service config loader resolves at startup.
func WritePointers(w io.Writer, results []StepResult) error {
	lines := make([]string, 0, len(results))
	for _, res := range results {
		if res.Action == ActionSkipped {
			continue
		}
		lines = append(lines, res.EnvVar+"_SSM_PARAM="+res.Path)
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
