package entities

// AssigneeType distinguishes individual from team ownership of a goal.
type AssigneeType string

const (
	AssigneePerson AssigneeType = "PERSON"
	AssigneeTeam   AssigneeType = "TEAM"
)

// Goal belongs to exactly one KeyResult and at most one parent Goal.
// Goals under a key result form a tree of arbitrary depth via
// ParentGoalID/ChildGoals; an empty ParentGoalID means the goal hangs
// directly off its key result.
type Goal struct {
	ID               string       `json:"id" dynamodbav:"id"`
	KeyResultID      string       `json:"keyResultId" dynamodbav:"keyResultId"`
	ObjectiveID      string       `json:"objectiveId" dynamodbav:"objectiveId"`
	StrategicThemeID string       `json:"strategicThemeId" dynamodbav:"strategicThemeId"`
	Description      string       `json:"description" dynamodbav:"description"`
	StartDate        string       `json:"startDate" dynamodbav:"startDate"`
	EndDate          string       `json:"endDate" dynamodbav:"endDate"`
	CurrentValue     float64      `json:"currentValue" dynamodbav:"currentValue"`
	TargetValue      float64      `json:"targetValue" dynamodbav:"targetValue"`
	UpperTarget      float64      `json:"upperTarget" dynamodbav:"upperTarget"`
	LowerTarget      float64      `json:"lowerTarget" dynamodbav:"lowerTarget"`
	IsAutomatic      bool         `json:"isAutomatic" dynamodbav:"isAutomatic"`
	AssignedTo       string       `json:"assignedTo" dynamodbav:"assignedTo"`
	AssigneeType     AssigneeType `json:"assigneeType" dynamodbav:"assigneeType"`
	ParentGoalID     string       `json:"parentGoalId,omitempty" dynamodbav:"parentGoalId,omitempty"`
	ChildGoals       []string     `json:"childGoals" dynamodbav:"childGoals"`
	CreationDateUtc  string       `json:"creationDateUtc" dynamodbav:"creationDateUtc"`
	StartDateUtc     string       `json:"startDateUtc" dynamodbav:"startDateUtc"`
	DueDateUtc       string       `json:"dueDateUtc" dynamodbav:"dueDateUtc"`
	FinishAtUtc      string       `json:"finishAtUtc,omitempty" dynamodbav:"finishAtUtc,omitempty"`
	Version          int          `json:"version" dynamodbav:"version"`
}

// IsLeaf reports whether the goal has no child goals; a leaf's current value
// is authoritative and never recomputed.
func (g *Goal) IsLeaf() bool {
	return len(g.ChildGoals) == 0
}
