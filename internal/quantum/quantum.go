// Package quantum models the external quantum state processor the
// checker and evaluator never look inside: registering a bit/qubit
// literal returns the half-open index range it occupies on the
// processor's tape, and nothing else about its internal representation
// is observable from the core.
package quantum

import (
	"fmt"

	"github.com/funvibe/funbit/pkg/funbit"
)

// Processor is the external collaborator the evaluator routes quantum
// variable declarations through. It is intentionally opaque: the only
// thing the core ever does with a registered ket is remember the index
// range it was handed back.
type Processor interface {
	RegisterKet(label string, bits []bool) (start, end int, err error)
}

// TapeProcessor backs Processor with a single growable funbit.BitString
// tape: each registered ket is appended and its occupied bit range is
// returned, mirroring how a real state vector would reserve qubit
// indices for a fresh register.
type TapeProcessor struct {
	tape   *funbit.BitString
	labels map[string]int // label -> start index, first registration wins
}

// NewTapeProcessor builds an empty tape-backed processor.
func NewTapeProcessor() *TapeProcessor {
	return &TapeProcessor{
		tape:   funbit.NewBitString(),
		labels: make(map[string]int),
	}
}

// RegisterKet appends bits to the tape and returns the bit-index range
// it now occupies. Re-registering the same label is rejected: kets are
// append-only, mirroring the processor's real hardware semantics where
// a register name is claimed once.
func (p *TapeProcessor) RegisterKet(label string, bits []bool) (int, int, error) {
	if _, exists := p.labels[label]; exists {
		return 0, 0, fmt.Errorf("quantum: ket %q already registered", label)
	}

	start := int(p.tape.Length())
	packed := packBits(bits)
	appended := funbit.NewBitStringFromBits(packed, uint(len(bits)))

	builder := funbit.NewBuilder()
	funbit.AddBitstring(builder, p.tape)
	funbit.AddBitstring(builder, appended)
	tape, err := funbit.Build(builder)
	if err != nil {
		return 0, 0, fmt.Errorf("quantum: registering ket %q: %w", label, err)
	}

	p.tape = tape
	end := start + len(bits)
	p.labels[label] = start
	return start, end, nil
}

// packBits packs a bool slice into the byte-per-8-bits form funbit's
// fixed-width constructor expects, most significant bit first.
func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if !b {
			continue
		}
		out[i/8] |= 1 << (7 - uint(i%8))
	}
	return out
}
