package recommend

import (
	"time"

	"github.com/poiesic/pathway/core"
)

// Monitor provides hooks to observe a recommendation request.
// Start is called for every request before validation, so the profile
// may be nil; every Start is followed by exactly one Finish or Failed.
// Implementations must be safe for concurrent requests.
type Monitor interface {
	Start(profile *core.UserProfile)
	AfterQueryExpansion(queries []WeightedQuery)
	AfterFusion(result *FusionResult)
	AfterNumeric(scores []NumericScore)
	Finish(results []core.ScoredCandidate, elapsed time.Duration)
	Failed(err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.UserProfile)                        {}
func (n *noopMonitor) AfterQueryExpansion(_ []WeightedQuery)            {}
func (n *noopMonitor) AfterFusion(_ *FusionResult)                      {}
func (n *noopMonitor) AfterNumeric(_ []NumericScore)                    {}
func (n *noopMonitor) Finish(_ []core.ScoredCandidate, _ time.Duration) {}
func (n *noopMonitor) Failed(_ error)                                   {}
