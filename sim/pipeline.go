package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/apat9/KVC-PIM/sim/conflict"
	"github.com/apat9/KVC-PIM/sim/dram"
	"github.com/apat9/KVC-PIM/sim/kernels"
	"github.com/apat9/KVC-PIM/sim/placement"
	"github.com/apat9/KVC-PIM/sim/trace"
)

// DefaultMaxExpandedOps is the safety ceiling on total expanded kernel
// operations. Reaching it halts further expansion with a warning; the
// pipeline proceeds on partial data.
const DefaultMaxExpandedOps = 10_000_000

// PipelineConfig carries the assembly parameters.
type PipelineConfig struct {
	// EnableKV turns on KV trace generation. When false the assembled
	// stream is just the kernel-expanded raw trace.
	EnableKV bool

	// TokenCount is the number of autoregressive token steps to model.
	TokenCount int

	// KernelOpsPerToken is the length of the expanded-kernel window
	// appended after each token step. Zero yields pure KV traffic.
	KernelOpsPerToken int

	// KVBlockSize and RowChunk set the cache-block geometry in bytes.
	// Zero values take the generator defaults.
	KVBlockSize int64
	RowChunk    int64

	// MaxExpandedOps caps Phase-1 expansion. Zero means
	// DefaultMaxExpandedOps.
	MaxExpandedOps int

	// WeightTracePath, when set, supplies weight residency from an
	// external trace instead of scanning the expanded operations.
	WeightTracePath string

	// SyntheticSignatureCount overrides the weight-map builder's fallback
	// count. Zero keeps the builder default.
	SyntheticSignatureCount int
}

// Pipeline turns a raw instruction trace plus policy decisions into the
// final operation stream. Assembly is fully synchronous: all three phases
// complete before any operation is offered downstream.
type Pipeline struct {
	cfg       PipelineConfig
	hierarchy *dram.Hierarchy
	policy    placement.Policy
	expander  kernels.Expander
	tracker   *conflict.Tracker

	weights placement.WeightMap
}

// NewPipeline wires the pipeline. The policy is initialized here with an
// empty weight map; Phase 2 installs the real one.
func NewPipeline(h *dram.Hierarchy, policy placement.Policy, expander kernels.Expander, cfg PipelineConfig) *Pipeline {
	if cfg.MaxExpandedOps <= 0 {
		cfg.MaxExpandedOps = DefaultMaxExpandedOps
	}
	policy.Init(h, h.TotalBanks(), make(placement.WeightMap))
	return &Pipeline{
		cfg:       cfg,
		hierarchy: h,
		policy:    policy,
		expander:  expander,
		tracker:   conflict.NewTracker(h.TotalBanks()),
	}
}

// Tracker exposes the conflict tracker for run-end reporting.
func (p *Pipeline) Tracker() *conflict.Tracker {
	return p.tracker
}

// WeightMap exposes the installed weight residency map.
func (p *Pipeline) WeightMap() placement.WeightMap {
	return p.weights
}

// Assemble runs the three phases and returns the final operation stream.
func (p *Pipeline) Assemble(raw []trace.Operation, defs []trace.KernelDefinition) ([]trace.Operation, error) {
	expanded, evidence, err := p.expandKernels(raw, defs)
	if err != nil {
		return nil, err
	}

	if err := p.buildWeightMap(evidence); err != nil {
		return nil, err
	}

	if !p.cfg.EnableKV {
		return expanded, nil
	}
	return p.generate(expanded), nil
}

// expandKernels is Phase 1: replace every kernel reference with its
// expansion, capped at the safety ceiling. It returns the expanded stream
// and the weight-evidence subset: direct operations plus the first kernel
// reference's expansion, since repeated kernel bodies share a weight
// footprint.
func (p *Pipeline) expandKernels(raw []trace.Operation, defs []trace.KernelDefinition) ([]trace.Operation, []trace.Operation, error) {
	var (
		expanded    []trace.Operation
		evidence    []trace.Operation
		firstKernel = true
		capped      bool
	)

	for _, op := range raw {
		if op.Kind != trace.KernelRef {
			expanded = append(expanded, op)
			evidence = append(evidence, op)
			continue
		}

		if capped {
			continue
		}
		if op.Kernel < 0 || op.Kernel >= len(defs) {
			return nil, nil, fmt.Errorf("kernel reference %d out of range (%d kernels)", op.Kernel, len(defs))
		}

		body, err := p.expander.Expand(defs[op.Kernel])
		if err != nil {
			return nil, nil, fmt.Errorf("expand kernel %q: %w", defs[op.Kernel].Name, err)
		}

		// Weight evidence is exempt from the ceiling: residency scanning
		// needs the full first-kernel footprint even on a capped run.
		if firstKernel {
			evidence = append(evidence, body...)
			firstKernel = false
		}

		room := p.cfg.MaxExpandedOps - len(expanded)
		if room <= 0 {
			logrus.Warnf("Expanded operation ceiling %d reached at kernel %q; proceeding on partial data",
				p.cfg.MaxExpandedOps, defs[op.Kernel].Name)
			capped = true
			continue
		}
		if len(body) > room {
			logrus.Warnf("Expanded operation ceiling %d reached at kernel %q; proceeding on partial data",
				p.cfg.MaxExpandedOps, defs[op.Kernel].Name)
			body = body[:room]
			capped = true
		}
		expanded = append(expanded, body...)
	}

	logrus.Infof("Kernel expansion produced %d operations", len(expanded))
	return expanded, evidence, nil
}

// buildWeightMap is Phase 2: derive weight residency and install it into
// the policy. An external weight trace, when configured, wins over
// scanning.
func (p *Pipeline) buildWeightMap(evidence []trace.Operation) error {
	if p.cfg.WeightTracePath != "" {
		raw, err := trace.ReadWeightTrace(p.cfg.WeightTracePath, p.hierarchy.TotalBanks())
		if err != nil {
			return err
		}
		p.weights = placement.WeightMap(raw)
	} else {
		builder := placement.NewMapBuilder(p.hierarchy)
		if p.cfg.SyntheticSignatureCount > 0 {
			builder.SyntheticSignatureCount = p.cfg.SyntheticSignatureCount
		}
		p.weights = builder.Scan(evidence)
	}

	logrus.Infof("Weight residency map covers %d banks", len(p.weights))
	p.policy.SetWeightMap(p.weights)
	return nil
}

// generate is Phase 3: interleave per-token KV operations with a wrapping
// window into the expanded-kernel buffer. Conflict registration happens
// here, where provenance is exact: generator output is KV traffic,
// kernel-window writes and computes are weight traffic. The cycle stamp is
// the operation's index in the assembled stream.
func (p *Pipeline) generate(expanded []trace.Operation) []trace.Operation {
	gen := NewKVTraceGenerator(p.hierarchy, p.policy, p.cfg.KVBlockSize, p.cfg.RowChunk)
	rowLevel := p.hierarchy.LevelIndex(dram.LevelRow)
	colLevel := p.hierarchy.LevelIndex(dram.LevelColumn)

	var stream []trace.Operation
	windowStart := 0

	appendKV := func(ops []trace.Operation) {
		for _, op := range ops {
			bank := p.hierarchy.EncodeBank(op.Addr)
			sig := placement.Signature(op.Addr, rowLevel, colLevel)
			p.tracker.RegisterKVOp(bank, sig, uint64(len(stream)))
			stream = append(stream, op)
		}
	}

	for tokenID := 0; tokenID < p.cfg.TokenCount; tokenID++ {
		appendKV(gen.InferenceStep(tokenID))

		if p.cfg.KernelOpsPerToken <= 0 || len(expanded) == 0 {
			continue
		}
		for i := 0; i < p.cfg.KernelOpsPerToken; i++ {
			op := expanded[(windowStart+i)%len(expanded)]
			if op.Kind == trace.Write || op.Kind == trace.Compute {
				bank := p.hierarchy.EncodeBank(op.Addr)
				sig := placement.Signature(op.Addr, rowLevel, colLevel)
				p.tracker.RegisterWeightOp(bank, sig, uint64(len(stream)))
				if op.Kind == trace.Write {
					// Window writes are fresh weight evidence; feed them
					// back so the installed residency map keeps learning.
					p.weights.Update(bank, sig)
				}
			}
			stream = append(stream, op)
		}
		windowStart = (windowStart + p.cfg.KernelOpsPerToken) % len(expanded)
	}

	logrus.Infof("Generated %d operations for %d tokens", len(stream), p.cfg.TokenCount)
	return stream
}
