package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/dmcewing/zem80/pkg/clock"
	"github.com/dmcewing/zem80/pkg/cpu"
	"github.com/dmcewing/zem80/pkg/memory"
)

var (
	paneStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	pcStyle    = lipgloss.NewStyle().Reverse(true)
	labelStyle = lipgloss.NewStyle().Faint(true)
)

type monitorModel struct {
	proc *cpu.Processor
	bank *memory.Bank
	err  error
}

func (m monitorModel) Init() tea.Cmd { return nil }

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			if err := m.proc.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// memoryRow renders sixteen bytes from start, highlighting the PC cell.
func (m monitorModel) memoryRow(start uint16) string {
	pc := m.proc.Reg().PC
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04X  ", start)
	for i := uint16(0); i < 16; i++ {
		cell := fmt.Sprintf("%02X", m.bank.ReadByte(start+i))
		if start+i == pc {
			cell = pcStyle.Render(cell)
		}
		sb.WriteString(cell)
		sb.WriteByte(' ')
	}
	return sb.String()
}

func (m monitorModel) memoryPane() string {
	pc := m.proc.Reg().PC
	base := pc &^ 0x000F
	rows := []string{labelStyle.Render("addr  " + strings.Repeat("-- ", 16))}
	for i := -2; i <= 5; i++ {
		rows = append(rows, m.memoryRow(base+uint16(i*16)))
	}
	return paneStyle.Render(strings.Join(rows, "\n"))
}

func (m monitorModel) registerPane() string {
	r := m.proc.Reg()
	f := r.F
	flagRow := ""
	for _, bit := range []struct {
		name string
		mask uint8
	}{
		{"S", cpu.FlagS}, {"Z", cpu.FlagZ}, {"Y", cpu.Flag5}, {"H", cpu.FlagH},
		{"X", cpu.Flag3}, {"P", cpu.FlagP}, {"N", cpu.FlagN}, {"C", cpu.FlagC},
	} {
		if f&bit.mask != 0 {
			flagRow += bit.name + " "
		} else {
			flagRow += labelStyle.Render(bit.name) + " "
		}
	}
	body := fmt.Sprintf(
		"PC %04X  SP %04X\nAF %04X  AF' %02X%02X\nBC %04X  DE %04X\nHL %04X  WZ %04X\nIX %04X  IY %04X\nI  %02X    R  %02X\n%s\nIFF1=%v IFF2=%v %s\nT=%d %s",
		r.PC, r.SP, r.AF(), r.A1, r.F1, r.BC(), r.DE(), r.HL(), r.WZ,
		r.IX(), r.IY(), r.I, r.R, flagRow,
		m.proc.IFF1(), m.proc.IFF2(), m.proc.InterruptMode(),
		m.proc.TStates(), m.proc.State(),
	)
	return paneStyle.Render(body)
}

func (m monitorModel) instructionPane() string {
	k, ok := cpu.DecodeAt(m.bank, m.proc.Reg().PC)
	if !ok {
		return paneStyle.Render("end of memory")
	}
	return paneStyle.Render("next: " + k.Inst.Disassemble(&k) + "\n" + spew.Sdump(*k.Inst))
}

func (m monitorModel) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.memoryPane(), m.registerPane()),
		m.instructionPane(),
		labelStyle.Render("space/j: step    q: quit"),
	)
}

func monitorCmd() *cobra.Command {
	var loadAddr, startAddr uint16

	cmd := &cobra.Command{
		Use:   "monitor <image>",
		Short: "Single-step an image in an interactive TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := readImage(args[0])
			if err != nil {
				return err
			}
			p, bank, err := buildMachine(image, loadAddr, startAddr, clock.NewFast(4.0))
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(monitorModel{proc: p, bank: bank}).Run()
			if err != nil {
				return err
			}
			if m := final.(monitorModel); m.err != nil {
				return m.err
			}
			return nil
		},
	}

	cmd.Flags().Uint16Var(&loadAddr, "load-addr", 0, "Address to load the image at")
	cmd.Flags().Uint16Var(&startAddr, "start-addr", 0, "Initial program counter")
	return cmd
}
