// Package nnue implements the 768-input, dual-perspective-accumulator
// NNUE position evaluator (spec §4.6), grounded on the teacher's
// internal/nnue package layout (network.go / accumulator.go /
// features.go split) and reworked from its HalfKP feature set down to
// the plain 768 = 64 squares * 6 piece types * 2 colours feature set
// the spec calls for.
package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
)

// Network architecture constants (spec §4.6).
const (
	InputSize = 768
	L1Size    = 256

	// QA/QB are the input/output quantization scales; Scale rescales the
	// quantized dot product back to centipawns. SCReLU activation squares
	// the clipped accumulator value, so the output division includes an
	// extra factor of QA to compensate.
	QA    = 255
	QB    = 64
	Scale = 400
)

// Network holds the quantized weights of a trained net. FeatureWeights
// is laid out [feature][L1Size] so that activating one feature is a
// contiguous-row add into the accumulator (the same layout the
// teacher's L1Weights uses for its HalfKP table).
type Network struct {
	FeatureWeights [InputSize][L1Size]int16
	FeatureBias    [L1Size]int16
	// OutputWeights[0] multiplies the side-to-move accumulator,
	// OutputWeights[1] the opponent's — the standard "stm-then-nstm"
	// concatenation of a dual-perspective output layer.
	OutputWeights [2][L1Size]int16
	OutputBias    int32
}

// NewNetwork returns a Network with all-zero weights; callers must
// either LoadWeights or InitRandom before using it for evaluation.
func NewNetwork() *Network { return &Network{} }

// InitRandom fills the network with small deterministic pseudo-random
// weights, for tests and for running without a trained weight file
// (mirrors the teacher's net.InitRandom used when no EvalFile is set).
func (n *Network) InitRandom(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for f := 0; f < InputSize; f++ {
		for i := 0; i < L1Size; i++ {
			n.FeatureWeights[f][i] = int16(rng.Intn(201) - 100)
		}
	}
	for i := 0; i < L1Size; i++ {
		n.FeatureBias[i] = int16(rng.Intn(41) - 20)
		n.OutputWeights[0][i] = int16(rng.Intn(41) - 20)
		n.OutputWeights[1][i] = int16(rng.Intn(41) - 20)
	}
	n.OutputBias = 0
}

// LoadWeights reads a flat little-endian weight blob: FeatureWeights,
// FeatureBias, OutputWeights[0], OutputWeights[1], then a trailing
// int32 OutputBias. This is the simplest possible serialization for a
// net this small; it deliberately does not attempt to read Stockfish's
// .nnue container format, which encodes a different architecture.
func (n *Network) LoadWeights(r io.Reader) error {
	for f := 0; f < InputSize; f++ {
		if err := binary.Read(r, binary.LittleEndian, &n.FeatureWeights[f]); err != nil {
			return fmt.Errorf("nnue: reading feature weights row %d: %w", f, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.FeatureBias); err != nil {
		return fmt.Errorf("nnue: reading feature bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputWeights[0]); err != nil {
		return fmt.Errorf("nnue: reading output weights (stm): %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputWeights[1]); err != nil {
		return fmt.Errorf("nnue: reading output weights (nstm): %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: reading output bias: %w", err)
	}
	return nil
}

// screlu is the squared clipped ReLU activation: clamp(x, 0, QA)^2.
// Squaring a clipped value (rather than a plain ReLU) is what modern
// small NNUE trainers use to get more expressiveness out of a single
// hidden layer; it is still cheap integer arithmetic at inference time.
func screlu(x int16) int32 {
	c := int32(x)
	if c < 0 {
		c = 0
	}
	if c > QA {
		c = QA
	}
	return c * c
}

// Forward evaluates the network from stm's perspective, given an
// accumulator already populated for both perspectives.
func (n *Network) Forward(acc *Accumulator, stm int) int {
	own := &acc.Values[stm]
	other := &acc.Values[1-stm]

	var sum int64
	for i := 0; i < L1Size; i++ {
		sum += int64(screlu(own[i])) * int64(n.OutputWeights[0][i])
		sum += int64(screlu(other[i])) * int64(n.OutputWeights[1][i])
	}
	sum /= int64(QA)
	sum += int64(n.OutputBias)
	return int(sum * Scale / int64(QA*QB))
}
