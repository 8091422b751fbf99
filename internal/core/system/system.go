package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput   Phase = iota // 0: drain session packet queues
	PhaseUpdate               // 1: dispatch last tick's events, run hooks
	PhasePersist              // 2: journal flush + batch save
	PhaseOutput               // 3: flush session out-buffers
	PhaseCleanup              // 4: reap dead sessions
)

// System is the interface every engine system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
