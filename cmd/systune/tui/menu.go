package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/systune/pkg/systune/hostinfo"
)

// Action is what the operator picked from the menu.
type Action int

// Menu actions in display order. ActionNone means the menu was dismissed
// without choosing anything (declined confirmation, ctrl+c).
const (
	ActionNone Action = iota
	ActionCPU
	ActionMemory
	ActionDisk
	ActionNetwork
	ActionKernel
	ActionSuper
	ActionBackup
	ActionRestore
	ActionDeps
	ActionExit
)

// menuItem is one numbered menu entry.
type menuItem struct {
	action Action
	label  string
}

// menuItems are the ten menu options in their fixed numbering.
var menuItems = []menuItem{
	{ActionCPU, "Optimize CPU (governor, NUMA report)"},
	{ActionMemory, "Optimize memory (swappiness, hugepages)"},
	{ActionDisk, "Optimize disk I/O (read-ahead, mount options)"},
	{ActionNetwork, "Optimize network (somaxconn, tw_reuse)"},
	{ActionKernel, "Optimize kernel limits (file-max)"},
	{ActionSuper, "Super optimization (all of the above)"},
	{ActionBackup, "Back up configuration files"},
	{ActionRestore, "Restore latest backup"},
	{ActionDeps, "Install required dependencies"},
	{ActionExit, "Exit"},
}

// menuState is the orchestrator state: the numbered menu, or the
// confirmation sub-state guarding super optimization.
type menuState int

const (
	stateMenu menuState = iota
	stateConfirm
)

// Model is the Bubble Tea model for the systune menu. After the program
// finishes, Choice() reports what the operator selected; the caller runs the
// selected action and re-launches the menu.
type Model struct {
	state   menuState
	cursor  int
	choice  Action
	host    hostinfo.Info
	confirm textinput.Model
}

// NewModel creates a menu model showing the detected host resources.
func NewModel(host hostinfo.Info) Model {
	ti := textinput.New()
	ti.Placeholder = "yes/no"
	ti.CharLimit = 8
	ti.Width = 12

	return Model{
		state:   stateMenu,
		host:    host,
		confirm: ti,
	}
}

// Choice returns the selected action once the program has finished.
func (m Model) Choice() Action {
	return m.choice
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateConfirm {
		return m.updateConfirm(keyMsg)
	}
	return m.updateMenu(keyMsg)
}

// updateMenu handles keys in the numbered menu state.
func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.choice = ActionExit
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		return m.selectItem(m.cursor)

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		m.cursor = idx
		return m.selectItem(idx)

	case "0":
		// Option 10: exit.
		m.cursor = len(menuItems) - 1
		return m.selectItem(m.cursor)
	}

	return m, nil
}

// selectItem dispatches a menu entry. Super optimization detours through the
// confirmation sub-state; everything else quits the menu with the choice set.
func (m Model) selectItem(idx int) (tea.Model, tea.Cmd) {
	item := menuItems[idx]
	if item.action == ActionSuper {
		m.state = stateConfirm
		m.confirm.SetValue("")
		m.confirm.Focus()
		return m, textinput.Blink
	}

	m.choice = item.action
	return m, tea.Quit
}

// updateConfirm handles keys in the super-optimization confirmation state.
// Anything other than an affirmative answer returns to the menu with no side
// effects.
func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.state = stateMenu
		m.confirm.Blur()
		return m, nil

	case "enter":
		answer := strings.ToLower(strings.TrimSpace(m.confirm.Value()))
		m.confirm.Blur()
		if answer == "yes" || answer == "y" {
			m.choice = ActionSuper
			return m, tea.Quit
		}
		m.state = stateMenu
		return m, nil
	}

	var cmd tea.Cmd
	m.confirm, cmd = m.confirm.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("systune — host tuning"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("kernel %s · %d cores · %s RAM",
		m.host.KernelRelease, m.host.CPUCores, humanize.IBytes(uint64(m.host.TotalRAM)))))
	b.WriteString("\n\n")

	if m.state == stateConfirm {
		b.WriteString(m.viewConfirm())
		return b.String()
	}

	var items strings.Builder
	for i, item := range menuItems {
		line := fmt.Sprintf("%s %s", numberStyle.Render(fmt.Sprintf("%2d.", i+1)), item.label)
		if i == m.cursor {
			line = selectedItemStyle.Render(line)
		} else {
			line = normalItemStyle.Render(line)
		}
		items.WriteString(line)
		if i < len(menuItems)-1 {
			items.WriteString("\n")
		}
	}
	b.WriteString(menuBoxStyle.Render(items.String()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("1-9/0 select · ↑/↓ move · enter confirm · q quit"))

	return b.String()
}

// viewConfirm renders the super-optimization confirmation prompt.
func (m Model) viewConfirm() string {
	var b strings.Builder
	b.WriteString(warnStyle.Render("Super optimization runs ALL five tuning operations."))
	b.WriteString("\n")
	b.WriteString("Type " + warnStyle.Render("yes") + " to continue:\n\n")
	b.WriteString(m.confirm.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter confirm · esc back to menu"))
	return confirmStyle.Render(b.String())
}

// Run launches the menu and returns the operator's choice.
func Run(host hostinfo.Info) (Action, error) {
	program := tea.NewProgram(NewModel(host))
	final, err := program.Run()
	if err != nil {
		return ActionNone, err
	}
	model, ok := final.(Model)
	if !ok {
		return ActionNone, fmt.Errorf("unexpected model type %T", final)
	}
	return model.Choice(), nil
}
