package entities

// MaxKeyResultsPerObjective is the creation-time ceiling on key results under
// an objective. The 3-minimum of the 3-5 band is a modelling target, not a
// creation-time constraint: enforcing it would make the first key result
// impossible to create.
const MaxKeyResultsPerObjective = 5

// KeyResult belongs to exactly one Objective.
type KeyResult struct {
	ID               string   `json:"id" dynamodbav:"id"`
	ObjectiveID      string   `json:"objectiveId" dynamodbav:"objectiveId"`
	StrategicThemeID string   `json:"strategicThemeId" dynamodbav:"strategicThemeId"`
	Description      string   `json:"description" dynamodbav:"description"`
	StartDate        string   `json:"startDate" dynamodbav:"startDate"`
	EndDate          string   `json:"endDate" dynamodbav:"endDate"`
	CurrentValue     float64  `json:"currentValue" dynamodbav:"currentValue"`
	Goals            []string `json:"goals" dynamodbav:"goals"`
	CreationDateUtc  string   `json:"creationDateUtc" dynamodbav:"creationDateUtc"`
	StartDateUtc     string   `json:"startDateUtc" dynamodbav:"startDateUtc"`
	DueDateUtc       string   `json:"dueDateUtc" dynamodbav:"dueDateUtc"`
	FinishAtUtc      string   `json:"finishAtUtc,omitempty" dynamodbav:"finishAtUtc,omitempty"`
	Version          int      `json:"version" dynamodbav:"version"`
}
