// Package sorcerer assembles the orchestrator's free functions behind a
// single capability-shaped interface (Instancius) so the HTTP adapter
// depends on an interface, not a package of functions directly.
package sorcerer

// Sorcerer marks a type as a facade over vault/quest state plus a fixed
// set of capabilities. It carries no methods; it exists so the adapter
// layer can depend on "a sorcerer" generically the way Jobs, Instancius
// and any future facade all are one.
type Sorcerer interface {
	sorcerer()
}
