package interfaces

import "time"

// JobStatus describes one registered sync job
type JobStatus struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description"`
	Enabled     bool       `json:"enabled"`
	IsRunning   bool       `json:"is_running"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// SchedulerService drives the periodic sync jobs. Jobs registered here run on
// cron schedules, one at a time; overlapping triggers of the same or another
// job wait rather than racing on the store.
type SchedulerService interface {
	RegisterJob(name, schedule, description string, handler func() error) error
	Start() error
	Stop() error
	IsRunning() bool
	TriggerJob(name string) error
	GetJobStatus(name string) (*JobStatus, error)
	GetAllJobStatuses() map[string]*JobStatus
}
