package topology

import (
	"fmt"
	"log"
)

// Strategy selects the node-placement policy applied level by level.
type Strategy string

const (
	// StrategyRoundRobin places level i on nodes[i mod len(nodes)].
	StrategyRoundRobin Strategy = "rr"
	// StrategyHalfHalf places the first half of the levels on the first
	// node and the rest on the last node.
	StrategyHalfHalf Strategy = "hh"
	// StrategySame places every level on the first node. Any unrecognized
	// strategy value falls back to this; that fallback is intentional and
	// never an error.
	StrategySame Strategy = "same"
)

const (
	// FrontendName is the fixed name of the single level-0 entry service.
	FrontendName = "frontend"

	DefaultPort            = 50051
	DefaultProcessingDelay = "0ms"
)

// Params describes one topology to build. Port and ProcessingDelay default
// to DefaultPort and DefaultProcessingDelay when left zero, so callers that
// only care about the graph shape can omit them.
type Params struct {
	Depth            int
	ServicesPerLevel []int
	Replicas         int
	Nodes            []string
	Strategy         Strategy
	Port             int
	ProcessingDelay  string
}

// Build produces a layered topology: ServicesPerLevel[i] services at level
// i, every service at level i calling every service at level i+1. The
// level-0 service is always the frontend sentinel, so ServicesPerLevel[0]
// must be 1; other counts collapsing onto one name would silently drop
// services, which Build refuses to do.
//
// When Depth and len(ServicesPerLevel) disagree, the shorter of the two
// wins: levels past the end of either are simply not generated.
func Build(p Params) (*Topology, error) {
	if p.Depth < 1 {
		return nil, fmt.Errorf("topology: depth must be >= 1, got %d", p.Depth)
	}
	if len(p.Nodes) == 0 {
		return nil, fmt.Errorf("topology: node pool must not be empty")
	}
	if len(p.ServicesPerLevel) > 0 && p.ServicesPerLevel[0] != 1 {
		return nil, fmt.Errorf("topology: level 0 must declare exactly 1 service (the %s entry), got %d",
			FrontendName, p.ServicesPerLevel[0])
	}
	if p.Port == 0 {
		p.Port = DefaultPort
	}
	if p.ProcessingDelay == "" {
		p.ProcessingDelay = DefaultProcessingDelay
	}

	levels := p.Depth
	if len(p.ServicesPerLevel) < levels {
		levels = len(p.ServicesPerLevel)
	}

	t := New()
	for level := 0; level < levels; level++ {
		node := p.nodeForLevel(level)
		for ordinal := 1; ordinal <= p.ServicesPerLevel[level]; ordinal++ {
			out := []string{}
			if level < levels-1 {
				for next := 1; next <= p.ServicesPerLevel[level+1]; next++ {
					out = append(out, serviceName(level+1, next))
				}
			}
			t.Add(&Service{
				Name:            serviceName(level, ordinal),
				Node:            node,
				Port:            p.Port,
				ProcessingDelay: p.ProcessingDelay,
				Replicas:        p.Replicas,
				OutServices:     out,
			})
		}
	}
	return t, nil
}

// nodeForLevel applies the placement policy. The half-half midpoint is
// "strictly less than depth/2" without integer truncation, so for odd
// depths the middle level still lands on the first node.
func (p Params) nodeForLevel(level int) string {
	switch p.Strategy {
	case StrategyHalfHalf:
		if 2*level < p.Depth {
			return p.Nodes[0]
		}
		return p.Nodes[len(p.Nodes)-1]
	case StrategyRoundRobin:
		return p.Nodes[level%len(p.Nodes)]
	case StrategySame:
		return p.Nodes[0]
	default:
		log.Printf("[topology] unknown scheduling strategy %q; falling back to %q", p.Strategy, StrategySame)
		return p.Nodes[0]
	}
}

func serviceName(level, ordinal int) string {
	if level == 0 {
		return FrontendName
	}
	return fmt.Sprintf("service-d%d-%d", level, ordinal)
}
