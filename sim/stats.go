package sim

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/apat9/KVC-PIM/sim/conflict"
	"github.com/apat9/KVC-PIM/sim/placement"
	"github.com/apat9/KVC-PIM/sim/recording"
)

// EmitStats reports the run-end counters: the placement policy's stats and
// the conflict tracker's aggregates, logged in sorted name order and, when
// a recorder is present, persisted under the given run id.
func EmitStats(runID string, policy placement.Policy, tracker *conflict.Tracker, rec recording.Recorder) {
	emit := func(component string, counters map[string]int64) {
		names := make([]string, 0, len(counters))
		for name := range counters {
			names = append(names, name)
		}
		sort.Strings(names)

		logrus.Infof("%s statistics:", component)
		for _, name := range names {
			logrus.Infof("  %s: %d", name, counters[name])
			if rec != nil {
				rec.InsertStat(recording.StatRow{
					Run:       runID,
					Component: component,
					Name:      name,
					Value:     counters[name],
				})
			}
		}
	}

	emit("placement", map[string]int64(policy.Stats()))
	emit("conflict", tracker.Stats())

	if rec != nil {
		rec.Flush()
	}
}
