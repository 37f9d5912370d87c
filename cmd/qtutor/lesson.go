package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/strikereaper/qiskit-tutorial/cmd/qtutor/ui"
	"github.com/strikereaper/qiskit-tutorial/internal/lesson"
)

var lessonPlain bool

// lessonCmd opens the step-by-step tutorial
var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Start the interactive Deutsch-Jozsa lesson",
	Long: `Opens the step-by-step lesson in a full-screen terminal UI.

Each step pairs a short read with a demo you can execute in place:
counting classical queries, building the circuit, simulating it, and
a hardware run once a cloud device is configured.

--plain prints the whole lesson text to stdout instead, for reading
outside the TUI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if lessonPlain {
			return runLessonPlain()
		}
		return runLesson()
	},
}

func init() {
	lessonCmd.Flags().BoolVar(&lessonPlain, "plain", false, "Print the lesson text instead of opening the TUI")
	rootCmd.AddCommand(lessonCmd)
}

// lessonModel is the bubbletea model for the lesson walkthrough
type lessonModel struct {
	// UI components
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer

	// Lesson state
	steps   []lesson.Step
	env     *lesson.Env
	idx     int
	outputs []string // rendered demo output, per step
	running bool
	err     error

	width  int
	height int
	ready  bool
}

// demoDoneMsg carries a finished demo back into the update loop
type demoDoneMsg struct {
	idx int
	res *lesson.StepResult
	err error
}

func initLesson(steps []lesson.Step, env *lesson.Env, styles ui.Styles) lessonModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	return lessonModel{
		viewport: vp,
		spinner:  sp,
		styles:   styles,
		renderer: renderer,
		steps:    steps,
		env:      env,
		outputs:  make([]string, len(steps)),
	}
}

func (m lessonModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m lessonModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "right", "enter", "n":
			if m.idx < len(m.steps)-1 && !m.running {
				m.idx++
				m.err = nil
				m.refreshContent()
				m.viewport.GotoTop()
			}
		case "left", "b":
			if m.idx > 0 && !m.running {
				m.idx--
				m.err = nil
				m.refreshContent()
				m.viewport.GotoTop()
			}
		case " ", "r":
			if step := m.steps[m.idx]; step.Action != nil && !m.running {
				m.running = true
				m.err = nil
				return m, tea.Batch(m.spinner.Tick, m.runDemo(m.idx))
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		if msg.Width > 8 {
			wrap := msg.Width - 8
			if wrap > 100 {
				wrap = 100
			}
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(wrap),
			)
		}
		m.refreshContent()

	case spinner.TickMsg:
		if m.running {
			m.spinner, spCmd = m.spinner.Update(msg)
		}

	case demoDoneMsg:
		m.running = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.outputs[msg.idx] = renderDemo(msg.res, m.styles)
		}
		m.refreshContent()
		m.viewport.GotoBottom()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(vpCmd, spCmd)
}

// runDemo executes the step's action off the update loop.
func (m lessonModel) runDemo(idx int) tea.Cmd {
	step := m.steps[idx]
	env := m.env
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		res, err := step.Action(ctx, env)
		return demoDoneMsg{idx: idx, res: res, err: err}
	}
}

func renderDemo(res *lesson.StepResult, styles ui.Styles) string {
	var sb strings.Builder
	sb.WriteString(res.Text)
	if res.Result != nil && len(res.Result.Counts) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(ui.Histogram{Title: res.Result.Summary(), Counts: res.Result.Counts}.View(styles))
	}
	return sb.String()
}

// refreshContent re-renders the current step into the viewport.
func (m *lessonModel) refreshContent() {
	step := m.steps[m.idx]
	rendered := step.Markdown
	if m.renderer != nil {
		if out, err := m.renderer.Render(step.Markdown); err == nil {
			rendered = out
		}
	}

	var sb strings.Builder
	sb.WriteString(rendered)
	if out := m.outputs[m.idx]; out != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.RenderDivider(m.viewport.Width))
		sb.WriteString("\n")
		sb.WriteString(out)
	}
	m.viewport.SetContent(sb.String())
}

func (m lessonModel) View() string {
	if !m.ready {
		return "Loading lesson..."
	}

	step := m.steps[m.idx]
	title := m.styles.Header.Render(" ⚛ Deutsch-Jozsa ")
	badge := m.styles.Badge.Render(fmt.Sprintf("Step %d/%d", m.idx+1, len(m.steps)))
	heading := m.styles.Subtitle.Render(step.Title)
	header := lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, title, " ", badge, "  ", heading),
		m.styles.RenderDivider(m.width),
	)

	body := m.styles.Content.Render(m.viewport.View())
	if m.running {
		body += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " Running on the backend..."
	}
	if m.err != nil {
		body += "\n" + m.styles.Error.Render("Error: "+m.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter())
}

func (m lessonModel) renderFooter() string {
	parts := []string{"←/→: navigate"}
	if step := m.steps[m.idx]; step.Action != nil {
		label := step.ActionLabel
		if label == "" {
			label = "run demo"
		}
		parts = append(parts, "space: "+label)
	}
	parts = append(parts, "q: quit")
	help := m.styles.Muted.Render(strings.Join(parts, " • "))
	return lipgloss.NewStyle().MarginTop(1).Render(help)
}

func runLesson() error {
	steps, err := lesson.Steps()
	if err != nil {
		return fmt.Errorf("failed to load lesson: %w", err)
	}
	env, err := lessonEnv()
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		initLesson(steps, env, styles),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

// lessonEnv wires the demos to real backends.
func lessonEnv() (*lesson.Env, error) {
	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}
	local, err := reg.Get("statevector")
	if err != nil {
		return nil, err
	}

	env := &lesson.Env{
		Local:  local,
		Inputs: cfg.Inputs,
		Shots:  cfg.Shots,
		Rng:    newRng(),
	}
	for _, b := range reg.All() {
		if b.Provider() == "cloud" {
			env.Remote = b
		}
	}
	return env, nil
}

func runLessonPlain() error {
	steps, err := lesson.Steps()
	if err != nil {
		return fmt.Errorf("failed to load lesson: %w", err)
	}
	for i, step := range steps {
		if i > 0 {
			fmt.Println(strings.Repeat("─", 60))
		}
		fmt.Println(strings.TrimSpace(step.Markdown))
		fmt.Println()
	}
	return nil
}
