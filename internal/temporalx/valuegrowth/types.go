package valuegrowth

const (
	WorkflowName = "player_value_growth"
	ActivityGrow = "player_value_growth_apply"
)

type Input struct {
	TransferUUID string `json:"transfer_uuid"`
	PlayerID     string `json:"player_id"`
}

type Result struct {
	PlayerID string `json:"player_id"`
	Value    string `json:"value"`
}

// WorkflowID keys one growth run per transfer.
func WorkflowID(transferUUID string) string {
	return "value-growth-" + transferUUID
}
