package models

import "time"

// Job represents one channel-analysis request submitted to the platform
type Job struct {
	ID               string
	OwnerID          string
	Channel          string // raw channel input (handle or name), e.g. "@Example"
	RequestedModules []ModuleKind
	Status           JobStatus
	Slots            map[ModuleKind]Slot
	NotifyEmail      string // optional; empty disables email delivery
	ReportURI        string // set by the export path after delivery
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeliveredAt      *time.Time
}

// ModuleKind identifies one analysis capability selectable per job
type ModuleKind string

const (
	// ModuleMetadata is the implicit channel-metadata slot every job carries.
	// It is not requestable; the fetch is a hard prerequisite for all modules.
	ModuleMetadata ModuleKind = "channel_metadata"

	ModuleTitleEngine       ModuleKind = "title_engine"
	ModuleCTRAnalysis       ModuleKind = "ctr_analysis"
	ModuleMultiPlatform     ModuleKind = "multi_platform"
	ModuleCopyrightScan     ModuleKind = "copyright_scan"
	ModuleFairUse           ModuleKind = "fair_use"
	ModuleTrendIntelligence ModuleKind = "trend_intelligence"
)

// RequestableModules lists every module kind a caller may request
var RequestableModules = []ModuleKind{
	ModuleTitleEngine,
	ModuleCTRAnalysis,
	ModuleMultiPlatform,
	ModuleCopyrightScan,
	ModuleFairUse,
	ModuleTrendIntelligence,
}

// IsRequestable reports whether kind names a known, user-selectable module
func (k ModuleKind) IsRequestable() bool {
	for _, m := range RequestableModules {
		if m == k {
			return true
		}
	}
	return false
}

// JobStatus represents the current status of a job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusPartial   JobStatus = "partially_completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether no further status transitions may occur
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusPartial, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// SlotState is the lifecycle of a single result slot
type SlotState string

const (
	SlotPending   SlotState = "pending"
	SlotSucceeded SlotState = "succeeded"
	SlotFailed    SlotState = "failed"
)

// FailureKind classifies why a capability call failed
type FailureKind string

const (
	FailureTimeout         FailureKind = "TIMEOUT"
	FailureExternalError   FailureKind = "EXTERNAL_ERROR"
	FailureInvalidResponse FailureKind = "INVALID_RESPONSE"
)

// Slot holds the write-once outcome of one module task within a job.
// Payload is the validated module result when State is succeeded; ErrorKind
// and ErrorMessage describe the failure otherwise.
type Slot struct {
	State        SlotState   `json:"state"`
	Payload      []byte      `json:"payload,omitempty"`
	ErrorKind    FailureKind `json:"error_kind,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	FinishedAt   *time.Time  `json:"finished_at,omitempty"`
}

// NewJobSlots builds the initial slot map: one pending slot per requested
// module plus the implicit metadata slot
func NewJobSlots(requested []ModuleKind) map[ModuleKind]Slot {
	slots := make(map[ModuleKind]Slot, len(requested)+1)
	slots[ModuleMetadata] = Slot{State: SlotPending}
	for _, kind := range requested {
		slots[kind] = Slot{State: SlotPending}
	}
	return slots
}

// AllSlotsResolved reports whether every slot of the job is non-pending
func (j *Job) AllSlotsResolved() bool {
	for _, slot := range j.Slots {
		if slot.State == SlotPending {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the job so callers can hand out snapshots
// without exposing shared mutable state
func (j *Job) Clone() *Job {
	cp := *j
	cp.RequestedModules = append([]ModuleKind(nil), j.RequestedModules...)
	cp.Slots = make(map[ModuleKind]Slot, len(j.Slots))
	for kind, slot := range j.Slots {
		if slot.Payload != nil {
			slot.Payload = append([]byte(nil), slot.Payload...)
		}
		cp.Slots[kind] = slot
	}
	if j.DeliveredAt != nil {
		at := *j.DeliveredAt
		cp.DeliveredAt = &at
	}
	return &cp
}
