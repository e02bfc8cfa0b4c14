package entities

// Objective belongs to exactly one StrategicTheme.
type Objective struct {
	ID               string   `json:"id" dynamodbav:"id"`
	StrategicThemeID string   `json:"strategicThemeId" dynamodbav:"strategicThemeId"`
	Statement        string   `json:"statement" dynamodbav:"statement"`
	StartDate        string   `json:"startDate" dynamodbav:"startDate"`
	EndDate          string   `json:"endDate" dynamodbav:"endDate"`
	CurrentValue     float64  `json:"currentValue" dynamodbav:"currentValue"`
	KeyResults       []string `json:"keyResults" dynamodbav:"keyResults"`
	CreationDateUtc  string   `json:"creationDateUtc" dynamodbav:"creationDateUtc"`
	StartDateUtc     string   `json:"startDateUtc" dynamodbav:"startDateUtc"`
	DueDateUtc       string   `json:"dueDateUtc" dynamodbav:"dueDateUtc"`
	FinishAtUtc      string   `json:"finishAtUtc,omitempty" dynamodbav:"finishAtUtc,omitempty"`
	Version          int      `json:"version" dynamodbav:"version"`
}
