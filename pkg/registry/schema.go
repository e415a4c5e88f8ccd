// pkg/registry/schema.go
package registry

// Status tracks how far an activity's worker has been built.
type Status string

const (
	StatusPlanned     Status = "planned"
	StatusInProgress  Status = "in-progress"
	StatusImplemented Status = "implemented"
)

// Known reports whether s is one of the recognized statuses. An empty
// status is accepted and read as planned.
func (s Status) Known() bool {
	switch s {
	case "", StatusPlanned, StatusInProgress, StatusImplemented:
		return true
	}
	return false
}

// ActivityRegistry is the on-disk catalog (configs/activity-registry.json)
// of every job type the assistant's BPMN process can dispatch.
type ActivityRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"` // YYYY-MM-DD, stamped by Upsert

	Activities []Activity `json:"activities"`
}

// Activity describes one job worker: the Zeebe task type it subscribes to,
// the variables it expects, and how the engine should time it out and retry.
type Activity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Category    string `json:"category"` // conversation, assistant or shopping
	Version     string `json:"version"`

	// TaskType must match the service task's zeebe:taskDefinition type.
	TaskType             string `json:"taskType"`
	ImplementationStatus Status `json:"implementationStatus"`

	// InputSchema is a JSON Schema checked against job variables before the
	// handler runs. OutputSchema is informational.
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`

	ErrorCodes []string `json:"errorCodes"`
	Timeout    string   `json:"timeout"` // time.ParseDuration syntax
	Retries    int      `json:"retries"`
	Tags       []string `json:"tags"`
}
