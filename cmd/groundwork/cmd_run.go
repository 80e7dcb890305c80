package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"groundwork/internal/exec"
	"groundwork/internal/llm"
	"groundwork/internal/plan"
	"groundwork/internal/skill"
	"groundwork/internal/skill/builtin"
)

var (
	runTask      string
	runTopic     string
	runArtifacts []string
	runPlain     bool
)

var runCmd = &cobra.Command{
	Use:   "run [company]",
	Short: "Run a skill pipeline for a company",
	Long: `Plans and executes a deterministic skill pipeline. The task type picks
the stage sequence:

  pipeline      research -> targets -> outreach -> meeting-prep -> followup
  research      research only
  meeting_prep  research -> meeting-prep

Each stage grounds its generation in the workspace's ingested sources and
persists its artifacts and claims only if the stage succeeds. A failed
stage skips its dependents; earlier output is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	company := args[0]

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.cfg.LLM.APIKey == "" {
		return fmt.Errorf("no API key configured; set GEMINI_API_KEY or llm.api_key in %s", sess.root)
	}
	client, err := llm.NewGenAIClient(cmd.Context(), sess.cfg.LLM.APIKey, sess.cfg.LLM.Model)
	if err != nil {
		return err
	}

	// Companies are first-writer-wins; re-running for a known company is a
	// no-op here.
	if _, err := sess.store.InsertCompany(company, "", ""); err != nil {
		return err
	}

	registry := skill.NewRegistry()
	builtin.RegisterAll(registry)

	topic := runTopic
	if topic == "" {
		topic = company
	}
	spec := plan.TaskSpec{
		Type:        plan.TaskType(runTask),
		WorkspaceID: sess.ws.ID,
		Inputs: map[string]interface{}{
			"company": company,
			"topic":   topic,
		},
		RequestedArtifacts: runArtifacts,
	}

	p, err := plan.NewPlanner(registry).CreatePlan(spec)
	if err != nil {
		return err
	}

	executor := exec.New(registry, sess.store, sess.ws, sess.memory, client)

	var result *exec.ExecutionResult
	if runPlain {
		result, err = runPlainLoop(cmd, executor, p)
	} else {
		result, err = runWithUI(cmd, executor, p)
	}
	if err != nil {
		return err
	}

	return printRunSummary(sess, result)
}

func runPlainLoop(cmd *cobra.Command, executor *exec.Executor, p *plan.Plan) (*exec.ExecutionResult, error) {
	executor.Observer = func(o exec.StepOutcome) {
		line := fmt.Sprintf("%s %s (%s)", statusIcon(o.Status), o.StepID, o.Status)
		if o.Error != "" {
			line += ": " + o.Error
		}
		fmt.Println(line)
	}
	return executor.Execute(cmd.Context(), p)
}

func printRunSummary(sess *session, result *exec.ExecutionResult) error {
	artifacts, err := sess.store.GetArtifactsByRun(result.RunID)
	if err != nil {
		return err
	}

	fmt.Println()
	if result.Success {
		fmt.Println(okStyle.Render("Run " + result.RunID + " succeeded"))
	} else {
		fmt.Println(failStyle.Render("Run " + result.RunID + " finished with failures"))
	}
	for _, a := range artifacts {
		fmt.Printf("  %s  %s (%s)\n", a.ID, a.Name, a.Type)
	}
	if len(artifacts) > 0 {
		fmt.Println(dimStyle.Render("  view with: groundwork show <artifact-id>"))
	}
	if !result.Success {
		return fmt.Errorf("run %s failed", result.RunID)
	}
	return nil
}

// --- progress UI ---

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func statusIcon(s plan.StepStatus) string {
	switch s {
	case plan.StatusSucceeded:
		return okStyle.Render("✓")
	case plan.StatusFailed:
		return failStyle.Render("✗")
	case plan.StatusSkipped:
		return skipStyle.Render("-")
	default:
		return " "
	}
}

type stepOutcomeMsg exec.StepOutcome

type runFinishedMsg struct {
	result *exec.ExecutionResult
	err    error
}

type runModel struct {
	spin     spinner.Model
	plan     *plan.Plan
	outcomes map[string]exec.StepOutcome
	finished bool
	result   *exec.ExecutionResult
	err      error
}

func newRunModel(p *plan.Plan) runModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return runModel{
		spin:     sp,
		plan:     p,
		outcomes: make(map[string]exec.StepOutcome, len(p.Steps)),
	}
}

func (m runModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepOutcomeMsg:
		m.outcomes[msg.StepID] = exec.StepOutcome(msg)
		return m, nil
	case runFinishedMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
}

func (m runModel) View() string {
	out := titleStyle.Render("Running plan "+m.plan.ID) + "\n"
	for _, step := range m.plan.Steps {
		if o, ok := m.outcomes[step.ID]; ok {
			out += fmt.Sprintf("  %s %s", statusIcon(o.Status), step.ID)
			if o.Error != "" {
				out += dimStyle.Render(" " + o.Error)
			}
			out += "\n"
			continue
		}
		// Step status fields belong to the executing goroutine; the view
		// works only from the outcomes it has been sent.
		marker := dimStyle.Render("·")
		if nextPending(m.plan, m.outcomes) == step.ID {
			marker = m.spin.View()
		}
		out += fmt.Sprintf("  %s %s\n", marker, dimStyle.Render(step.ID))
	}
	return out
}

// nextPending names the first step without a recorded outcome, which for
// the linear plans the planner emits is the one currently running.
func nextPending(p *plan.Plan, outcomes map[string]exec.StepOutcome) string {
	for _, s := range p.Steps {
		if _, ok := outcomes[s.ID]; !ok {
			return s.ID
		}
	}
	return ""
}

func runWithUI(cmd *cobra.Command, executor *exec.Executor, p *plan.Plan) (*exec.ExecutionResult, error) {
	prog := tea.NewProgram(newRunModel(p), tea.WithContext(cmd.Context()))

	executor.Observer = func(o exec.StepOutcome) {
		prog.Send(stepOutcomeMsg(o))
	}
	go func() {
		result, err := executor.Execute(cmd.Context(), p)
		prog.Send(runFinishedMsg{result: result, err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	m := final.(runModel)
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return nil, fmt.Errorf("run canceled")
	}
	return m.result, nil
}

func init() {
	runCmd.Flags().StringVar(&runTask, "task", string(plan.TaskPipeline), "Task type: pipeline, research, meeting_prep")
	runCmd.Flags().StringVar(&runTopic, "topic", "", "Memory search topic (defaults to the company name)")
	runCmd.Flags().StringSliceVar(&runArtifacts, "artifacts", nil, "Only run stages producing these artifacts")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Disable the progress UI")
	rootCmd.AddCommand(runCmd)
}
