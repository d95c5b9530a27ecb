// messages.go defines Bubble Tea messages used for async communication.
//
// The pipeline runs in a goroutine and sends progress and results back
// to the TUI via these message types, so the UI never blocks.
package tui

import (
	"github.com/DachengChen/paiChat/session"
	"github.com/DachengChen/paiChat/workflow"
)

// StageMsg reports that the pipeline entered a stage.
type StageMsg struct {
	Stage workflow.Stage
}

// ReplyMsg is sent when a chat turn completes.
type ReplyMsg struct {
	Reply *session.Reply
}
