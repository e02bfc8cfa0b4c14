package schema

import (
	"fmt"

	"okr-backend/application/ports"
)

// Entity-type tags. Tags appear in primary keys as "<Tag>#<id>" and alone as
// secondary-index partition keys. The layout is a compatibility contract;
// changing it breaks existing tables.
const (
	TagTheme     = "Theme"
	TagObjective = "Objective"
	TagKeyResult = "KeyResult"
	TagGoal      = "Goal"
)

// Reserved attribute names for the primary key and the two secondary indexes.
const (
	AttrPK     = "PK"
	AttrSK     = "SK"
	AttrGSI1PK = "GSI1PK"
	AttrGSI1SK = "GSI1SK"
	AttrGSI2PK = "GSI2PK"
	AttrGSI2SK = "GSI2SK"
)

func tagged(tag, id string) string {
	return fmt.Sprintf("%s#%s", tag, id)
}

// SortPrefix returns the sort-key prefix matching every record of a type
// within a partition.
func SortPrefix(tag string) string {
	return tag + "#"
}

// ThemeKey builds the primary key of a strategic theme. Themes are their own
// partition: PK and SK are identical.
func ThemeKey(themeID string) ports.Key {
	return ports.Key{PK: tagged(TagTheme, themeID), SK: tagged(TagTheme, themeID)}
}

// ObjectivePartition returns the partition holding a theme's objectives.
func ObjectivePartition(themeID string) string {
	return tagged(TagTheme, themeID)
}

// ObjectiveKey builds the primary key of an objective.
func ObjectiveKey(themeID, objectiveID string) ports.Key {
	return ports.Key{PK: ObjectivePartition(themeID), SK: tagged(TagObjective, objectiveID)}
}

// KeyResultPartition returns the partition holding an objective's key results.
func KeyResultPartition(themeID, objectiveID string) string {
	return fmt.Sprintf("%s#%s", tagged(TagTheme, themeID), tagged(TagObjective, objectiveID))
}

// KeyResultKey builds the primary key of a key result.
func KeyResultKey(themeID, objectiveID, keyResultID string) ports.Key {
	return ports.Key{PK: KeyResultPartition(themeID, objectiveID), SK: tagged(TagKeyResult, keyResultID)}
}

// GoalPartition returns the partition holding a key result's goals. Every
// goal of the subtree lives here regardless of its depth.
func GoalPartition(themeID, objectiveID, keyResultID string) string {
	return fmt.Sprintf("%s#%s", KeyResultPartition(themeID, objectiveID), tagged(TagKeyResult, keyResultID))
}

// GoalKey builds the primary key of a goal.
func GoalKey(themeID, objectiveID, keyResultID, goalID string) ports.Key {
	return ports.Key{PK: GoalPartition(themeID, objectiveID, keyResultID), SK: tagged(TagGoal, goalID)}
}
