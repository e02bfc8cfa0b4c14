package entities

// MaxObjectivesPerTheme is the creation-time ceiling on objectives under a theme.
const MaxObjectivesPerTheme = 3

// StrategicTheme is the root of the planning hierarchy.
type StrategicTheme struct {
	ID              string   `json:"id" dynamodbav:"id"`
	Name            string   `json:"name" dynamodbav:"name"`
	Description     string   `json:"description" dynamodbav:"description"`
	StartDate       string   `json:"startDate" dynamodbav:"startDate"`
	EndDate         string   `json:"endDate" dynamodbav:"endDate"`
	Quarter         string   `json:"quarter" dynamodbav:"quarter"`
	CurrentValue    float64  `json:"currentValue" dynamodbav:"currentValue"`
	Objectives      []string `json:"objectives" dynamodbav:"objectives"`
	CreationDateUtc string   `json:"creationDateUtc" dynamodbav:"creationDateUtc"`
	StartDateUtc    string   `json:"startDateUtc" dynamodbav:"startDateUtc"`
	DueDateUtc      string   `json:"dueDateUtc" dynamodbav:"dueDateUtc"`
	FinishAtUtc     string   `json:"finishAtUtc,omitempty" dynamodbav:"finishAtUtc,omitempty"`
	Version         int      `json:"version" dynamodbav:"version"`
}
