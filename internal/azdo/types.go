package azdo

import (
	"strings"
	"time"
)

// WiqlRequest is the body of a WIQL query call.
type WiqlRequest struct {
	Query string `json:"query"`
}

// WorkItemReference identifies a work item inside a WIQL result.
type WorkItemReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// WorkItemLink is one edge of a WorkItemLinks WIQL result.
type WorkItemLink struct {
	Rel    string            `json:"rel"`
	Source WorkItemReference `json:"source"`
	Target WorkItemReference `json:"target"`
}

// WiqlResponse covers both flat (WorkItems) and link (WorkItemRelations)
// query result shapes.
type WiqlResponse struct {
	QueryType       string              `json:"queryType"`
	QueryResultType string              `json:"queryResultType"`
	WorkItems       []WorkItemReference `json:"workItems"`
	WorkItemLinks   []WorkItemLink      `json:"workItemRelations"`
}

type workItemsBatchRequest struct {
	IDs         []int    `json:"ids"`
	Fields      []string `json:"fields,omitempty"`
	ErrorPolicy string   `json:"errorPolicy,omitempty"`
}

type workItemsBatchResponse struct {
	Count int            `json:"count"`
	Value []wireWorkItem `json:"value"`
}

// wireWorkItem is the raw REST shape: every field lives in a string-keyed map
// under its reference name.
type wireWorkItem struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev"`
	Fields map[string]any `json:"fields"`
	URL    string         `json:"url"`
}

type revisionsResponse struct {
	Count int        `json:"count"`
	Value []Revision `json:"value"`
}

// Revision is a single field snapshot from a work item's revision history,
// ordered oldest first by the upstream API.
type Revision struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev"`
	Fields map[string]any `json:"fields"`
}

// PatchOp is one JSON-Patch operation for a work item update.
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// AddField builds an add operation for a field reference name.
func AddField(refName string, value any) PatchOp {
	return PatchOp{Op: "add", Path: "/fields/" + refName, Value: value}
}

// RemoveField builds a remove operation for a field reference name.
func RemoveField(refName string) PatchOp {
	return PatchOp{Op: "remove", Path: "/fields/" + refName}
}

// WorkItem is the typed view of a work item used across the service.
type WorkItem struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	State          string     `json:"state"`
	Type           string     `json:"workItemType"`
	AssignedTo     string     `json:"assignedTo,omitempty"`
	CreatedDate    time.Time  `json:"createdDate"`
	ChangedDate    time.Time  `json:"changedDate"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	TargetDate     *time.Time `json:"targetDate,omitempty"`
	QACompleteDate *time.Time `json:"qaCompleteDate,omitempty"`
	AreaPath       string     `json:"areaPath,omitempty"`
	IterationPath  string     `json:"iterationPath,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

func workItemFromWire(w wireWorkItem) WorkItem {
	item := WorkItem{
		ID:            w.ID,
		Title:         stringField(w.Fields, FieldTitle),
		State:         stringField(w.Fields, FieldState),
		Type:          stringField(w.Fields, FieldWorkItemType),
		AssignedTo:    identityField(w.Fields, FieldAssignedTo),
		AreaPath:      stringField(w.Fields, FieldAreaPath),
		IterationPath: stringField(w.Fields, FieldIterationPath),
	}
	if t, ok := timeField(w.Fields, FieldCreatedDate); ok {
		item.CreatedDate = t
	}
	if t, ok := timeField(w.Fields, FieldChangedDate); ok {
		item.ChangedDate = t
	}
	if t, ok := timeField(w.Fields, FieldDueDate); ok {
		item.DueDate = &t
	}
	if t, ok := timeField(w.Fields, FieldTargetDate); ok {
		item.TargetDate = &t
	}
	if t, ok := timeField(w.Fields, FieldQACompleteDate); ok {
		item.QACompleteDate = &t
	}
	if tags := stringField(w.Fields, FieldTags); tags != "" {
		for _, tag := range strings.Split(tags, ";") {
			if tag = strings.TrimSpace(tag); tag != "" {
				item.Tags = append(item.Tags, tag)
			}
		}
	}
	return item
}

// State returns the System.State value of this revision.
func (r Revision) State() string {
	return stringField(r.Fields, FieldState)
}

// ChangedDate returns the System.ChangedDate of this revision, or the zero
// time when the field is absent or malformed.
func (r Revision) ChangedDate() time.Time {
	t, _ := timeField(r.Fields, FieldChangedDate)
	return t
}

// ChangedBy returns the display name of whoever produced this revision.
func (r Revision) ChangedBy() string {
	return identityField(r.Fields, FieldChangedBy)
}

// AssignedTo returns the display name of the assignee at this revision.
func (r Revision) AssignedTo() string {
	return identityField(r.Fields, FieldAssignedTo)
}

// DueDate returns the due date at this revision, if set.
func (r Revision) DueDate() (time.Time, bool) {
	return timeField(r.Fields, FieldDueDate)
}

// History returns the free-text history/comment recorded on this revision.
func (r Revision) History() string {
	return stringField(r.Fields, FieldHistory)
}

// DueDateChangeReason returns the custom reason field value, if present.
func (r Revision) DueDateChangeReason() string {
	return stringField(r.Fields, FieldDueDateChangeReason)
}

func stringField(fields map[string]any, refName string) string {
	if v, ok := fields[refName].(string); ok {
		return v
	}
	return ""
}

// identityField handles both identity objects ({displayName, uniqueName})
// and plain "Name <email>" strings, which older API versions return.
func identityField(fields map[string]any, refName string) string {
	switch v := fields[refName].(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["displayName"].(string); ok {
			return name
		}
		if name, ok := v["uniqueName"].(string); ok {
			return name
		}
	}
	return ""
}

func timeField(fields map[string]any, refName string) (time.Time, bool) {
	raw, ok := fields[refName].(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999Z", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
