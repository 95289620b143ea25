// Package evalapi wraps the recording platform's HTTP API.
//
// The client covers the six operations the tracker consumes: recording status,
// evaluation (with optional explanation payload), transcript, media access
// URL, human review submission, and the pending review worklist. Wire quirks
// stay here: the evaluation decoder accepts both the stage_scores array and
// the legacy category_scores map and always hands callers one ordered stage
// list, and every failure is tagged with a services error marker so the poller
// can tell retryable trouble from permanent rejection without parsing strings.
package evalapi
