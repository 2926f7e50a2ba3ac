package ctl

// LogsOptions configures the logs command. The daemon keeps no log buffer
// of its own, so Logs always streams live over the WebSocket.
type LogsOptions struct {
	JSON bool
}

// Logs streams "log" events from the hub until interrupted. Nothing in
// missiond broadcasts a "log" event, so against missiond the stream
// carries no events.
func Logs(baseURL string, opts LogsOptions) error {
	return Watch(baseURL, WatchOptions{
		Filter: []string{"log"},
		JSON:   opts.JSON,
	})
}
