package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const promptQuestion = "Enter the full path to the directory you wish to sort:"

// ErrPromptCancelled is returned when the user aborts the directory prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

var (
	promptTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	promptHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// promptForPath asks for the directory to organize. A terminal gets an
// interactive text input; anything else is read as a single line.
func promptForPath(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return runPathPrompt(in, out)
	}
	return readPathLine(in, out)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func readPathLine(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, promptQuestion+" ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading path: %w", err)
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", ErrPromptCancelled
	}
	return path, nil
}

func runPathPrompt(in io.Reader, out io.Writer) (string, error) {
	final, err := tea.NewProgram(newPromptModel(), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", fmt.Errorf("running prompt: %w", err)
	}
	m, ok := final.(promptModel)
	if !ok || m.cancelled || m.value == "" {
		return "", ErrPromptCancelled
	}
	return m.value, nil
}

// promptModel is a single-field bubbletea form for the source directory.
// An empty answer accepts the placeholder, which is the working directory.
type promptModel struct {
	input     textinput.Model
	value     string
	cancelled bool
}

func newPromptModel() promptModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Width = 60
	if wd, err := os.Getwd(); err == nil {
		ti.Placeholder = wd
	}
	ti.Focus()
	return promptModel{input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.value = strings.TrimSpace(m.input.Value())
			if m.value == "" {
				m.value = m.input.Placeholder
			}
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.value != "" || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n",
		promptTitleStyle.Render(promptQuestion),
		m.input.View(),
		promptHintStyle.Render("enter to confirm, esc to cancel"))
}
