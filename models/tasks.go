package models

// TaskSnapshot is the persisted form of one pending timed task, enough to
// re-register the task after a restart. The action kind is resolved back
// to a handler on reload.
type TaskSnapshot struct {
	Expiry         int64  `json:"expiry"`
	ActionKind     string `json:"actionKind"`
	ActionArg      string `json:"actionArg,omitempty"`
	AutoReschedule bool   `json:"autoReschedule,omitempty"`
	RescheduleSecs int64  `json:"rescheduleSecs,omitempty"`
}
