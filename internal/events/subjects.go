package events

const (
	SubjectCorpusReloaded    = "compass.corpus.reloaded"
	SubjectPreferenceChanged = "compass.preference.changed"
	SubjectPenaltyChanged    = "compass.penalty.changed"

	StreamName   = "COMPASS_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectSelectionComputed(runID string) string { return "compass.selection." + runID + ".computed" }
