// Package agent drives the bounded LLM tool-calling loop: it puts a
// question and the tool registry in front of a provider, dispatches
// whatever tools the model calls, and keeps turning the crank until the
// model emits a DONE answer that the verifier accepts or the step budget
// runs out.
//
// Information Hiding:
// - Transcript construction and the DONE/repair prompt templates are
//   private to this package; callers only see RunResult/StepLog.
// - The state machine driving AWAIT_MODEL/RUN_TOOLS/VERIFY/REPAIR is not
//   exposed as a type; it is encoded directly in Run's control flow.
package agent

import (
	"github.com/richinex/repowiki/internal/verifier"
)

// StepLog records one step of a run: either a dispatched tool call or a
// classified model turn that produced no tool call (DONE, repair, or
// unexpected content).
type StepLog struct {
	StepNo              int      `json:"stepNo"`
	ToolName            string   `json:"toolName,omitempty"`
	ToolInputJSON       string   `json:"toolInput,omitempty"`
	OutputSummaryHead   string   `json:"toolOutputSummary,omitempty"`
	ElapsedMillis       int64    `json:"elapsedMs"`
	ModelMessageSummary string   `json:"modelMessageSummary,omitempty"`
	IsDone              bool     `json:"isDone"`
	VerifierPassed      *bool    `json:"verifierPassed,omitempty"`
	VerifierErrors      []string `json:"verifierErrors,omitempty"`
}

// RunResult is the outcome of one agent Run. RunID correlates its Steps
// with the leveled log lines emitted alongside them (repair iterations,
// forced termination) for a caller piping both into the same log stream.
type RunResult struct {
	RunID             string              `json:"runId"`
	AnswerMarkdown    string              `json:"answerMarkdown"`
	Steps             []StepLog           `json:"steps"`
	VerifiedCitations []verifier.Citation `json:"verifiedCitations"`
	Verified          bool                `json:"verified"`
	TotalMillis       int64               `json:"totalMillis"`
	Error             string              `json:"error,omitempty"`
}

// Budgets bounds one Run: how many model turns it may take and how much of
// a tool's output survives truncation before reaching the transcript.
// MaxExcerptLines is stated to the model in the system prompt; the
// get_excerpt tool enforces its own limit from tools.ToolContext.
type Budgets struct {
	MaxSteps           int
	MaxExcerptLines    int
	MaxToolOutputChars int
}
