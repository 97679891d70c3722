package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"apivengers/internal/model"
)

// Severity of an Issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is an advisory finding about a graph. Issues never block Compile.
type Issue struct {
	Severity Severity `json:"severity"`
	EntityID string   `json:"entityId,omitempty"`
	Entity   string   `json:"entity,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	where := i.Entity
	if i.Field != "" {
		where += "." + i.Field
	}
	if where == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, where, i.Message)
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Diagnose reports constructs that compile to ambiguous or invalid source.
func Diagnose(entities []model.Entity) []Issue {
	var issues []Issue
	labels := make(map[string]string, len(entities))
	seenLabel := make(map[string]bool, len(entities))

	for _, e := range entities {
		labels[e.ID] = e.Label
		if seenLabel[e.Label] {
			issues = append(issues, Issue{
				Severity: SeverityWarning, EntityID: e.ID, Entity: e.Label,
				Message: "duplicate entity label; references to it are ambiguous",
			})
		}
		seenLabel[e.Label] = true
		if !identifier.MatchString(e.Label) {
			issues = append(issues, Issue{
				Severity: SeverityWarning, EntityID: e.ID, Entity: e.Label,
				Message: "label is not a valid identifier",
			})
		}
	}

	for _, e := range entities {
		if len(e.Fields) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityInfo, EntityID: e.ID, Entity: e.Label,
				Message: "entity has no fields",
			})
		}
		seenField := make(map[string]bool, len(e.Fields))
		for _, f := range e.Fields {
			name := strings.TrimSpace(f.Name)
			if seenField[name] {
				issues = append(issues, Issue{
					Severity: SeverityWarning, EntityID: e.ID, Entity: e.Label, Field: f.Name,
					Message: "duplicate field name; the later declaration wins",
				})
			}
			seenField[name] = true

			if f.Ref == nil {
				continue
			}
			_, live := labels[f.Ref.TargetID]
			switch {
			case f.Ref.TargetID != "" && !live:
				issues = append(issues, Issue{
					Severity: SeverityWarning, EntityID: e.ID, Entity: e.Label, Field: f.Name,
					Message: fmt.Sprintf("references deleted entity %q", f.Ref.TargetLabel),
				})
			case f.Ref.TargetID == "" && !seenLabel[f.Ref.TargetLabel]:
				issues = append(issues, Issue{
					Severity: SeverityWarning, EntityID: e.ID, Entity: e.Label, Field: f.Name,
					Message: fmt.Sprintf("references unknown entity %q", f.Ref.TargetLabel),
				})
			}
		}
	}
	return issues
}
