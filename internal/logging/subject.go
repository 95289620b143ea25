package logging

import "strings"

// FormatSubject builds the recording/state subject string used in console output.
func FormatSubject(recordingID, state string) string {
	recordingID = strings.TrimSpace(recordingID)
	state = strings.TrimSpace(state)
	switch {
	case recordingID != "" && state != "":
		return "Recording " + recordingID + " (" + state + ")"
	case recordingID != "":
		return "Recording " + recordingID
	case state != "":
		return state
	default:
		return ""
	}
}
