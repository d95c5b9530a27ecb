package tui

import (
	"testing"

	"github.com/DachengChen/paiChat/workflow"
	"github.com/stretchr/testify/assert"
)

func TestStageMsgRearmsOnlyWhileRunning(t *testing.T) {
	m := NewChatModel(nil, "stub")

	for _, stage := range []workflow.Stage{
		workflow.StageGenerate,
		workflow.StageExecute,
		workflow.StageInterpret,
		workflow.StageVisualize,
	} {
		_, cmd := m.Update(StageMsg{Stage: stage})
		assert.NotNil(t, cmd, "stage %s must keep listening", stage)
	}

	_, cmd := m.Update(StageMsg{Stage: workflow.StageDone})
	assert.Nil(t, cmd, "done must end the event stream")

	_, cmd = m.Update(StageMsg{Stage: workflow.StageFailed})
	assert.Nil(t, cmd, "failed must end the event stream")
}
