// Package ports models the 256 I/O addresses of the Z80 port space. Each
// port is a record of host callbacks; reads from a port nobody connected see
// the open bus (0xFF) and writes to one are discarded.
package ports

// Port holds the callbacks for one I/O address. Any field may be nil.
type Port struct {
	Read        func() uint8
	Write       func(v uint8)
	SignalRead  func()
	SignalWrite func()
}

// Bank is the 256-entry port table.
type Bank struct {
	ports [256]Port
}

// NewBank returns a bank with every port disconnected.
func NewBank() *Bank {
	return &Bank{}
}

// Install binds callbacks to a port, replacing whatever was there.
func (b *Bank) Install(port uint8, p Port) {
	b.ports[port] = p
}

// Disconnect removes all callbacks from a port.
func (b *Bank) Disconnect(port uint8) {
	b.ports[port] = Port{}
}

// In reads a port, 0xFF when disconnected.
func (b *Bank) In(port uint8) uint8 {
	if f := b.ports[port].Read; f != nil {
		return f()
	}
	return 0xFF
}

// Out writes a port; disconnected ports swallow the byte.
func (b *Bank) Out(port uint8, v uint8) {
	if f := b.ports[port].Write; f != nil {
		f(v)
	}
}

// SignalRead fires the read strobe callback, if any.
func (b *Bank) SignalRead(port uint8) {
	if f := b.ports[port].SignalRead; f != nil {
		f()
	}
}

// SignalWrite fires the write strobe callback, if any.
func (b *Bank) SignalWrite(port uint8) {
	if f := b.ports[port].SignalWrite; f != nil {
		f()
	}
}
