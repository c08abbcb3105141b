package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/repowiki/internal/llm"
	"github.com/richinex/repowiki/internal/logging"
	"github.com/richinex/repowiki/internal/tools"
	"github.com/richinex/repowiki/internal/verifier"
)

// Agent drives one bounded question-answering run: repeatedly calling a
// provider, dispatching whatever tools it asks for, and stopping either on
// a verified DONE answer or on step exhaustion.
type Agent struct {
	provider    llm.Provider
	registry    *tools.Registry
	budgets     Budgets
	temperature float32
	maxTokens   uint32
}

// New creates an agent bound to one provider, one tool registry, and one
// set of budgets. Provider and registry are shared read-only across the
// run; nothing here is safe for concurrent Run calls against the same
// registry's underlying index unless the index itself tolerates concurrent
// readers (it does, per the index package).
func New(provider llm.Provider, registry *tools.Registry, budgets Budgets) *Agent {
	return &Agent{
		provider:    provider,
		registry:    registry,
		budgets:     budgets,
		temperature: 0.2,
		maxTokens:   4096,
	}
}

// WithTemperature overrides the sampling temperature used for every Chat call.
func (a *Agent) WithTemperature(t float32) *Agent {
	a.temperature = t
	return a
}

// WithMaxTokens overrides the max-tokens budget used for every Chat call.
func (a *Agent) WithMaxTokens(n uint32) *Agent {
	a.maxTokens = n
	return a
}

// Run drives the loop for one question against repoRoot, whose citations
// are checked against the filesystem by the verifier. repoRoot must be the
// same root the agent's tool registry was constructed against.
func (a *Agent) Run(ctx context.Context, repoRoot, question string) RunResult {
	start := time.Now()
	runID := uuid.New().String()
	logging.Info("agent run started", map[string]any{"runId": runID, "maxSteps": a.budgets.MaxSteps})

	transcript := []llm.ChatMessage{
		llm.SystemMessage(a.systemPrompt()),
		llm.UserMessage(question),
	}
	toolDefs := a.toolDefinitions()

	var steps []StepLog
	var evidence []string
	stepNo := 0

	for stepNo < a.budgets.MaxSteps {
		stepNo++
		turnStart := time.Now()

		resp, err := a.provider.Chat(ctx, llm.ChatRequest{
			Messages:    transcript,
			Tools:       toolDefs,
			ToolChoice:  "auto",
			Temperature: a.temperature,
			MaxTokens:   a.maxTokens,
		})
		elapsed := time.Since(turnStart).Milliseconds()

		if err != nil {
			logging.Error("agent run failed", map[string]any{"runId": runID, "stepNo": stepNo, "error": err.Error()})
			steps = append(steps, StepLog{
				StepNo:              stepNo,
				ElapsedMillis:       elapsed,
				ModelMessageSummary: fmt.Sprintf("provider error: %v", err),
			})
			return RunResult{
				RunID:       runID,
				Steps:       steps,
				Verified:    false,
				Error:       err.Error(),
				TotalMillis: time.Since(start).Milliseconds(),
			}
		}

		if len(resp.ToolInvocations) > 0 {
			transcript = append(transcript, llm.ChatMessage{
				Role:      "assistant",
				Content:   resp.AssistantText,
				ToolCalls: resp.ToolInvocations,
			})

			for _, call := range resp.ToolInvocations {
				if ctx.Err() != nil {
					steps = append(steps, StepLog{
						StepNo:              stepNo,
						ToolName:            call.Name,
						ElapsedMillis:       time.Since(turnStart).Milliseconds(),
						ModelMessageSummary: fmt.Sprintf("cancelled: %v", ctx.Err()),
					})
					return RunResult{
						RunID:       runID,
						Steps:       steps,
						Verified:    false,
						Error:       ctx.Err().Error(),
						TotalMillis: time.Since(start).Milliseconds(),
					}
				}

				toolStart := time.Now()
				result := a.registry.ExecuteCall(ctx, call.Name, string(call.Arguments))
				toolElapsed := time.Since(toolStart).Milliseconds()

				summary := truncate(result.OutputSummary, a.budgets.MaxToolOutputChars)
				transcript = append(transcript, llm.ToolMessage(call.ID, summary))

				if result.Success {
					evidence = append(evidence, fmt.Sprintf("%s: %s", call.Name, headSnippet(summary, 200)))
				}

				steps = append(steps, StepLog{
					StepNo:            stepNo,
					ToolName:          call.Name,
					ToolInputJSON:     string(call.Arguments),
					OutputSummaryHead: summary,
					ElapsedMillis:     toolElapsed,
				})
			}
			continue
		}

		if answer, ok := detectDone(resp.AssistantText); ok {
			transcript = append(transcript, llm.AssistantMessage(resp.AssistantText))

			v := verifier.Verify(repoRoot, answer)
			passed := v.Valid
			steps = append(steps, StepLog{
				StepNo:              stepNo,
				ElapsedMillis:       elapsed,
				IsDone:              true,
				VerifierPassed:      &passed,
				VerifierErrors:      v.Errors,
				ModelMessageSummary: headSnippet(answer, 200),
			})

			if v.Valid {
				logging.Info("agent run verified", map[string]any{"runId": runID, "stepNo": stepNo, "citations": len(v.Citations)})
				return RunResult{
					RunID:             runID,
					AnswerMarkdown:    answer,
					Steps:             steps,
					VerifiedCitations: v.Citations,
					Verified:          true,
					TotalMillis:       time.Since(start).Milliseconds(),
				}
			}

			logging.Warn("repair iteration", map[string]any{"runId": runID, "stepNo": stepNo, "errors": v.Errors})
			transcript = append(transcript, llm.UserMessage(repairPrompt(v.Errors)))
			continue
		}

		transcript = append(transcript, llm.AssistantMessage(resp.AssistantText))
		steps = append(steps, StepLog{
			StepNo:              stepNo,
			ElapsedMillis:       elapsed,
			ModelMessageSummary: headSnippet(resp.AssistantText, 200),
		})
	}

	logging.Warn("step budget exhausted, forcing termination", map[string]any{"runId": runID, "maxSteps": a.budgets.MaxSteps})
	return a.forcedTermination(ctx, repoRoot, runID, transcript, steps, evidence, start)
}

// forcedTermination runs one final best-effort call after step exhaustion.
// If the model still manages a DONE answer it is verified like any other;
// otherwise a fallback answer is synthesized from gathered evidence.
func (a *Agent) forcedTermination(ctx context.Context, repoRoot, runID string, transcript []llm.ChatMessage, steps []StepLog, evidence []string, start time.Time) RunResult {
	finalStepNo := a.budgets.MaxSteps + 1
	transcript = append(transcript, llm.UserMessage(terminationPrompt(evidence, a.budgets.MaxSteps)))

	turnStart := time.Now()
	resp, err := a.provider.Chat(ctx, llm.ChatRequest{
		Messages:    transcript,
		ToolChoice:  "none",
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	elapsed := time.Since(turnStart).Milliseconds()

	if err == nil {
		if answer, ok := detectDone(resp.AssistantText); ok {
			v := verifier.Verify(repoRoot, answer)
			passed := v.Valid
			steps = append(steps, StepLog{
				StepNo:              finalStepNo,
				ElapsedMillis:       elapsed,
				IsDone:              true,
				VerifierPassed:      &passed,
				VerifierErrors:      v.Errors,
				ModelMessageSummary: headSnippet(answer, 200),
			})

			result := RunResult{
				RunID:             runID,
				AnswerMarkdown:    answer,
				Steps:             steps,
				VerifiedCitations: v.Citations,
				Verified:          v.Valid,
				TotalMillis:       time.Since(start).Milliseconds(),
			}
			if !v.Valid {
				result.Error = "Max steps exceeded"
			}
			return result
		}
	}

	fallback := synthesizeFallback(evidence)
	steps = append(steps, StepLog{
		StepNo:              finalStepNo,
		ElapsedMillis:       elapsed,
		IsDone:              true,
		ModelMessageSummary: "forced termination: no verifiable answer produced",
	})

	return RunResult{
		RunID:          runID,
		AnswerMarkdown: fallback,
		Steps:          steps,
		Verified:       false,
		Error:          "Max steps exceeded",
		TotalMillis:    time.Since(start).Milliseconds(),
	}
}

func (a *Agent) toolDefinitions() []llm.ToolDefinition {
	schemas := a.registry.ToolSchemas()
	defs := make([]llm.ToolDefinition, len(schemas))
	for i, s := range schemas {
		defs[i] = llm.ToolDefinition{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  s.Parameters,
		}
	}
	return defs
}

const systemPromptTemplate = `You are a repository question-answering agent. Every claim in your final answer must be backed by a citation into the actual source tree; never answer from memory alone.

Available tools:
%s
Budgets: at most %d turns total; get_excerpt returns at most %d lines per call.

Rules:
- Call tools to search and read the repository before answering. Do not guess at file contents.
- Your final answer must end with a "## Sources" section containing at least one citation.
- Each citation line has the exact shape: - `+"`"+`<repo-relative path>`+"`"+`:<startLine>-<endLine>
- When, and only when, you are ready to give your final answer, begin your reply with the literal word DONE on its own line, followed by the markdown answer.

Worked example of a final reply:

DONE
The retry loop is bounded by maxAttempts and stops once the request succeeds.

## Sources
- `+"`"+`internal/retry/retry.go`+"`"+`:12-30
`

func (a *Agent) systemPrompt() string {
	return fmt.Sprintf(systemPromptTemplate, a.registry.Description(), a.budgets.MaxSteps, a.budgets.MaxExcerptLines)
}

func repairPrompt(errs []string) string {
	var b strings.Builder
	b.WriteString("Your last answer's citations failed verification:\n")
	for _, e := range errs {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	b.WriteString("\nUse the tools to find correct evidence, then re-emit your final answer beginning with DONE.")
	return b.String()
}

func terminationPrompt(evidence []string, maxSteps int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have used all %d turns. Based only on evidence you have actually gathered:\n", maxSteps)
	if len(evidence) == 0 {
		b.WriteString("(no evidence was gathered)\n")
	}
	for _, e := range evidence {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	b.WriteString("\nGive your best final answer now, beginning with DONE, with a ## Sources section citing only that evidence.")
	return b.String()
}

func synthesizeFallback(evidence []string) string {
	var b strings.Builder
	b.WriteString("Unable to produce a verified answer within the step budget.\n")
	if len(evidence) > 0 {
		b.WriteString("\nGathered evidence:\n")
		for _, e := range evidence {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	b.WriteString("\n## Sources\n(No verified sources available)\n")
	return b.String()
}

// detectDone reports whether content is a final answer: trimmed content
// beginning with the literal, case-sensitive marker "DONE". The candidate
// answer markdown is the remainder with the marker and its surrounding
// whitespace stripped.
func detectDone(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "DONE") {
		return "", false
	}
	rest := strings.TrimPrefix(trimmed, "DONE")
	rest = strings.TrimLeft(rest, "\n\r\t ")
	return rest, true
}

// truncate bounds s to roughly max characters via head/tail elision,
// preserving the first and last halves and noting how much was cut.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	half := max / 2
	head := s[:half]
	tail := s[len(s)-half:]
	n := len(s) - 2*half
	return fmt.Sprintf("%s… %d chars truncated …%s", head, n, tail)
}

// headSnippet bounds s to at most n characters for step-log summaries.
func headSnippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
