package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmcewing/zem80/pkg/clock"
	"github.com/dmcewing/zem80/pkg/cpu"
	"github.com/dmcewing/zem80/pkg/memory"
	"github.com/dmcewing/zem80/pkg/ports"
	"github.com/dmcewing/zem80/pkg/state"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zem80",
		Short: "Zem80 — cycle-accurate Zilog Z80 emulator",
	}
	rootCmd.AddCommand(runCmd(), monitorCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readImage loads a raw binary image, refusing anything that cannot fit the
// address space.
func readImage(path string) ([]uint8, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > memory.AddressSpace {
		return nil, fmt.Errorf("image %s is %d bytes, larger than the 64 KiB address space", path, len(data))
	}
	return data, nil
}

// buildMachine wires a flat 64 KiB RAM bank, an empty port bank and the
// requested clock into a processor, with the image loaded at loadAddr.
func buildMachine(image []uint8, loadAddr, startAddr uint16, clk cpu.Clock) (*cpu.Processor, *memory.Bank, error) {
	bank, err := memory.NewBank(memory.NewSegment(0, memory.AddressSpace, false))
	if err != nil {
		return nil, nil, err
	}
	p := cpu.New(bank, ports.NewBank(), clk)
	p.Reset()
	bank.WriteBytes(loadAddr, image)
	p.Reg().PC = startAddr
	return p, bank, nil
}

func runCmd() *cobra.Command {
	var loadAddr, startAddr uint16
	var mhz float64
	var realtime, endOnHalt bool
	var maxTStates uint64
	var dumpState string

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Load a raw binary image and execute it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := readImage(args[0])
			if err != nil {
				return err
			}

			var clk cpu.Clock
			if realtime {
				clk = clock.NewRealTime(mhz)
			} else {
				clk = clock.NewFast(mhz)
			}

			p, _, err := buildMachine(image, loadAddr, startAddr, clk)
			if err != nil {
				return err
			}
			p.SetEndOnHalt(endOnHalt)
			if maxTStates > 0 {
				p.Hooks.BeforeExecute = func(k *cpu.Package) {
					if p.TStates() >= maxTStates {
						p.Stop()
					}
				}
			}

			if err := p.RunUntilStopped(); err != nil {
				return fmt.Errorf("execution failed: %w", err)
			}

			m := state.Capture(p)
			if dumpState != "" {
				f, err := os.Create(dumpState)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := state.WriteJSON(f, m); err != nil {
					return err
				}
			}
			fmt.Printf("stopped after %d T-states at PC=%04Xh\n", m.TStates, m.PC)
			fmt.Printf("  AF=%04X BC=%04X DE=%04X HL=%04X IX=%04X IY=%04X SP=%04X\n",
				m.AF, m.BC, m.DE, m.HL, m.IX, m.IY, m.SP)
			return nil
		},
	}

	cmd.Flags().Uint16Var(&loadAddr, "load-addr", 0, "Address to load the image at")
	cmd.Flags().Uint16Var(&startAddr, "start-addr", 0, "Initial program counter")
	cmd.Flags().Float64Var(&mhz, "mhz", 4.0, "Clock frequency in MHz")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "Pace execution against wall time")
	cmd.Flags().BoolVar(&endOnHalt, "end-on-halt", true, "Stop when the CPU halts")
	cmd.Flags().Uint64Var(&maxTStates, "max-tstates", 0, "Stop after this many T-states (0 = unlimited)")
	cmd.Flags().StringVar(&dumpState, "dump-state", "", "Write the final machine state as JSON to this file")
	return cmd
}
