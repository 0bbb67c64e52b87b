package hermes

const (
	SubjectMatrixAll = "verdict.matrix.>"

	StreamName   = "VERDICT_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

func SubjectMatrixCreated(sessionID string) string { return "verdict.matrix." + sessionID + ".created" }
func SubjectMatrixUpdated(sessionID string) string { return "verdict.matrix." + sessionID + ".updated" }
func SubjectMatrixDeleted(sessionID string) string { return "verdict.matrix." + sessionID + ".deleted" }
func SubjectMatrixEvicted(sessionID string) string { return "verdict.matrix." + sessionID + ".evicted" }
