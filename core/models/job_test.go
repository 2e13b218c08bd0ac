package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewJobSlots(t *testing.T) {
	slots := NewJobSlots([]ModuleKind{ModuleTitleEngine, ModuleFairUse})

	assert.Len(t, slots, 3)
	assert.Equal(t, SlotPending, slots[ModuleMetadata].State)
	assert.Equal(t, SlotPending, slots[ModuleTitleEngine].State)
	assert.Equal(t, SlotPending, slots[ModuleFairUse].State)
}

func TestAllSlotsResolved(t *testing.T) {
	job := &Job{
		RequestedModules: []ModuleKind{ModuleTitleEngine},
		Slots:            NewJobSlots([]ModuleKind{ModuleTitleEngine}),
	}
	assert.False(t, job.AllSlotsResolved())

	slot := job.Slots[ModuleMetadata]
	slot.State = SlotSucceeded
	job.Slots[ModuleMetadata] = slot
	assert.False(t, job.AllSlotsResolved())

	slot = job.Slots[ModuleTitleEngine]
	slot.State = SlotFailed
	job.Slots[ModuleTitleEngine] = slot
	assert.True(t, job.AllSlotsResolved())
}

func TestJobStatusIsTerminal(t *testing.T) {
	assert.False(t, JobStatusQueued.IsTerminal())
	assert.False(t, JobStatusRunning.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusPartial.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
	assert.True(t, JobStatusCancelled.IsTerminal())
}

func TestClone_IsDeep(t *testing.T) {
	job := &Job{
		ID:               "j1",
		RequestedModules: []ModuleKind{ModuleTitleEngine},
		Slots: map[ModuleKind]Slot{
			ModuleTitleEngine: {State: SlotSucceeded, Payload: []byte(`{"a":1}`)},
		},
	}

	clone := job.Clone()
	clone.RequestedModules[0] = ModuleFairUse
	clone.Slots[ModuleTitleEngine] = Slot{State: SlotFailed}

	assert.Equal(t, ModuleTitleEngine, job.RequestedModules[0])
	assert.Equal(t, SlotSucceeded, job.Slots[ModuleTitleEngine].State)
}

func TestIsRequestable(t *testing.T) {
	for _, kind := range RequestableModules {
		assert.True(t, kind.IsRequestable(), string(kind))
	}
	assert.False(t, ModuleMetadata.IsRequestable(), "metadata is implicit, never requested")
	assert.False(t, ModuleKind("astrology").IsRequestable())
}
