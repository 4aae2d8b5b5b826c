// Package state captures a value snapshot of the whole machine — register
// file, decoded flags, interrupt state and the T-state counter — and encodes
// it as JSON for the CLI's --dump-state output and for golden-state tests.
package state

import (
	"encoding/json"
	"io"

	"github.com/dmcewing/zem80/pkg/cpu"
)

// Flags is the F register spelled out bit by bit.
type Flags struct {
	S  bool `json:"s"`
	Z  bool `json:"z"`
	Y  bool `json:"y"`
	H  bool `json:"h"`
	X  bool `json:"x"`
	PV bool `json:"pv"`
	N  bool `json:"n"`
	C  bool `json:"c"`
}

// Machine is one frozen machine state.
type Machine struct {
	AF uint16 `json:"af"`
	BC uint16 `json:"bc"`
	DE uint16 `json:"de"`
	HL uint16 `json:"hl"`
	IX uint16 `json:"ix"`
	IY uint16 `json:"iy"`
	SP uint16 `json:"sp"`
	PC uint16 `json:"pc"`
	WZ uint16 `json:"wz"`

	ShadowAF uint16 `json:"af_"`
	ShadowBC uint16 `json:"bc_"`
	ShadowDE uint16 `json:"de_"`
	ShadowHL uint16 `json:"hl_"`

	I uint8 `json:"i"`
	R uint8 `json:"r"`

	Flags Flags `json:"flags"`

	IFF1 bool   `json:"iff1"`
	IFF2 bool   `json:"iff2"`
	IM   string `json:"im"`

	TStates uint64 `json:"tstates"`
	State   string `json:"state"`
}

// Capture freezes the processor's current state. The engine must be stopped
// or suspended.
func Capture(p *cpu.Processor) Machine {
	r := p.Reg().Snapshot()
	f := r.F
	return Machine{
		AF: r.AF(), BC: r.BC(), DE: r.DE(), HL: r.HL(),
		IX: r.IX(), IY: r.IY(), SP: r.SP, PC: r.PC, WZ: r.WZ,
		ShadowAF: uint16(r.A1)<<8 | uint16(r.F1),
		ShadowBC: uint16(r.B1)<<8 | uint16(r.C1),
		ShadowDE: uint16(r.D1)<<8 | uint16(r.E1),
		ShadowHL: uint16(r.H1)<<8 | uint16(r.L1),
		I:        r.I, R: r.R,
		Flags: Flags{
			S: f&cpu.FlagS != 0, Z: f&cpu.FlagZ != 0,
			Y: f&cpu.Flag5 != 0, H: f&cpu.FlagH != 0,
			X: f&cpu.Flag3 != 0, PV: f&cpu.FlagP != 0,
			N: f&cpu.FlagN != 0, C: f&cpu.FlagC != 0,
		},
		IFF1: p.IFF1(), IFF2: p.IFF2(), IM: p.InterruptMode().String(),
		TStates: p.TStates(),
		State:   p.State().String(),
	}
}

// WriteJSON encodes a snapshot as indented JSON.
func WriteJSON(w io.Writer, m Machine) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
