package cli

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/hydrolabs/olicloud-go/internal/oli"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// progressMsg reports completed request counts from the orchestrator.
type progressMsg struct {
	done  int
	total int
}

// batchDoneMsg carries the finished run.
type batchDoneMsg struct {
	results []oli.FlashResult
	err     error
}

// batchModel is the bubbletea model for a running batch.
type batchModel struct {
	total    int
	done     int
	progress progress.Model
	theme    Theme
	finished bool
	quitting bool
	err      error
}

func newBatchModel(total int) batchModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return batchModel{
		total:    total,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command.
func (m batchModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case progressMsg:
		m.done = msg.done
		return m, nil

	case batchDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m batchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m batchModel) renderContent() string {
	if m.finished || m.quitting {
		return m.finalView()
	}

	var pct float64
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}

	status := m.theme.statusStyle().Render("[RUNNING]")
	bar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d samples", m.done, m.total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to abandon waiting")

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, counts, hint)
}

// finalView renders the completion message.
func (m batchModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nAbandoned waiting; submitted jobs continue remotely.\n")
	}
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Run failed: %s\n", m.err))
	}
	return m.theme.completedStyle().Render(fmt.Sprintf("✓ Processed %d samples\n", m.total))
}

// RunBatchProgress runs ProcessRequestList with an interactive progress bar.
// Ctrl+C cancels the context; already-submitted remote jobs are not aborted.
func RunBatchProgress(ctx context.Context, client *oli.Client, reqs []oli.FlashRequest, opts oli.BatchOptions) ([]oli.FlashResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newBatchModel(len(reqs)))

	// Progress updates arrive from the orchestrator's worker goroutines;
	// Program.Send is safe for concurrent use.
	opts.OnProgress = func(done, total int) {
		p.Send(progressMsg{done: done, total: total})
	}

	var results []oli.FlashResult
	runErr := make(chan error, 1)
	go func() {
		var err error
		results, err = client.ProcessRequestList(ctx, reqs, opts)
		runErr <- err
		p.Send(batchDoneMsg{results: results, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	abandoned := false
	if m, ok := finalModel.(batchModel); ok && m.quitting {
		abandoned = true
		cancel()
	}

	if err := <-runErr; err != nil {
		if abandoned && errors.Is(err, context.Canceled) {
			return nil, nil
		}
		return nil, err
	}
	return results, nil
}
