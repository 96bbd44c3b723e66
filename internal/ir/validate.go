package ir

import (
	"fmt"
	"strings"
)

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Code    string   // e.g., "NO_ACTIONS", "MISSING_HANDLER"
	Message string   // Human-readable description
	Path    []string // e.g., ["actions", "increment", "handlers", "0"]
}

// String returns a human-readable representation of the issue
func (v ValidationIssue) String() string {
	if len(v.Path) > 0 {
		return fmt.Sprintf("[%s] %s (at %s)", v.Code, v.Message, strings.Join(v.Path, "."))
	}
	return fmt.Sprintf("[%s] %s", v.Code, v.Message)
}

// ValidationError contains all validation issues found during validation
type ValidationError struct {
	Issues []ValidationIssue
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("validation failed with %d issues:\n", len(e.Issues)))
	for i, issue := range e.Issues {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, issue.String()))
	}
	return b.String()
}

// AddIssue adds a validation issue to the error
func (e *ValidationError) AddIssue(code, message string, path ...string) {
	e.Issues = append(e.Issues, ValidationIssue{
		Code:    code,
		Message: message,
		Path:    path,
	})
}

// HasIssues returns true if there are any validation issues
func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// HasCode reports whether any issue carries the given code
func (e *ValidationError) HasCode(code string) bool {
	for _, issue := range e.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// Validation error codes
const (
	ErrCodeNoActions       = "NO_ACTIONS"
	ErrCodeEmptyActionType = "EMPTY_ACTION_TYPE"
	ErrCodeDuplicateAction = "DUPLICATE_ACTION"
	ErrCodeNoHandlers      = "NO_HANDLERS"
	ErrCodeMissingHandler  = "MISSING_HANDLER"
	ErrCodeInvalidPolicy   = "INVALID_POLICY"
)

// Validate checks the reducer configuration for errors
func Validate[S any](r *ReducerConfig[S]) *ValidationError {
	errs := &ValidationError{}

	if !r.Policy.Valid() {
		errs.AddIssue(ErrCodeInvalidPolicy,
			fmt.Sprintf("policy %d is not a known policy", int(r.Policy)))
	}

	if len(r.Actions) == 0 {
		errs.AddIssue(ErrCodeNoActions, "at least one action is required")
	}

	seen := make(map[ActionType]bool, len(r.Actions))
	for i, action := range r.Actions {
		actionPath := []string{"actions", fmt.Sprintf("%d", i)}

		if action.Type == "" {
			errs.AddIssue(ErrCodeEmptyActionType, "action type must not be empty", actionPath...)
		} else {
			actionPath = []string{"actions", string(action.Type)}
			if seen[action.Type] {
				errs.AddIssue(ErrCodeDuplicateAction,
					fmt.Sprintf("action '%s' is declared more than once", action.Type),
					actionPath...)
			}
			seen[action.Type] = true
		}

		if len(action.Handlers) == 0 {
			errs.AddIssue(ErrCodeNoHandlers,
				fmt.Sprintf("action '%s' has no handlers", action.Type),
				actionPath...)
		}

		for j, name := range action.Handlers {
			if _, ok := r.Handlers[name]; !ok {
				errs.AddIssue(ErrCodeMissingHandler,
					fmt.Sprintf("handler '%s' is not defined", name),
					append(actionPath, "handlers", fmt.Sprintf("%d", j))...)
			}
		}
	}

	if errs.HasIssues() {
		return errs
	}
	return nil
}
