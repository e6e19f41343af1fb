package azdo

import "fmt"

// Field reference names used by the service. Custom.* fields are defined on
// the process template of the target organisation.
const (
	FieldTitle               = "System.Title"
	FieldState               = "System.State"
	FieldWorkItemType        = "System.WorkItemType"
	FieldAssignedTo          = "System.AssignedTo"
	FieldCreatedDate         = "System.CreatedDate"
	FieldChangedDate         = "System.ChangedDate"
	FieldChangedBy           = "System.ChangedBy"
	FieldAreaPath            = "System.AreaPath"
	FieldIterationPath       = "System.IterationPath"
	FieldTags                = "System.Tags"
	FieldHistory             = "System.History"
	FieldDueDate             = "Microsoft.VSTS.Scheduling.DueDate"
	FieldTargetDate          = "Microsoft.VSTS.Scheduling.TargetDate"
	FieldQACompleteDate      = "Custom.QACompleteDate"
	FieldDueDateChangeReason = "Custom.DueDateChangeReason"
)

// fieldRefNames is the fixed dictionary from API-facing friendly names to
// field reference names. Patch requests only accept names listed here.
var fieldRefNames = map[string]string{
	"title":               FieldTitle,
	"state":               FieldState,
	"assignedTo":          FieldAssignedTo,
	"areaPath":            FieldAreaPath,
	"iterationPath":       FieldIterationPath,
	"tags":                FieldTags,
	"dueDate":             FieldDueDate,
	"targetDate":          FieldTargetDate,
	"qaCompleteDate":      FieldQACompleteDate,
	"dueDateChangeReason": FieldDueDateChangeReason,
}

// ErrUnknownField wraps the friendly name that could not be resolved.
type ErrUnknownField struct {
	Name string
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown field name %q", e.Name)
}

// FieldRefName resolves a friendly field name to its reference name.
func FieldRefName(friendly string) (string, error) {
	ref, ok := fieldRefNames[friendly]
	if !ok {
		return "", &ErrUnknownField{Name: friendly}
	}
	return ref, nil
}
