package report

import (
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/platform-dse/internal/search"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/utils"
)

// MarshalSummary encodes a search result as indented JSON: the round
// summaries, every winner with its comparison against the root, the best
// configuration and the analysis errors.
func MarshalSummary(res *search.Result, objective search.ObjectiveFunction) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("result is nil")
	}

	rounds := make([]any, 0, len(res.Rounds))
	for _, r := range res.Rounds {
		round := map[string]any{
			"round":        r.Round,
			"frontier":     r.Frontier,
			"ran":          r.Ran,
			"already_done": r.AlreadyDone,
			"errors":       r.Errors,
			"successes":    r.Successes,
			"winners":      r.Winners,
		}
		if utils.IsFinite(r.BestScore) {
			round["best_score"] = r.BestScore
		}
		rounds = append(rounds, round)
	}

	root := res.RootNode()
	winners := make([]any, 0, len(res.Winners))
	for _, n := range res.WinnerNodes() {
		entry := map[string]any{"config": n.Config.Name(), "round": n.Round, "depth": n.Depth}
		if rec, err := NewRecord(n); err == nil {
			entry["record"] = recordFields(rec)
		}
		if cmp, err := search.Compare(root, n, objective); err == nil {
			entry["comparison"] = map[string]any{
				"score_diff":      cmp.ScoreDiff,
				"improvement":     cmp.Improvement,
				"energy_diff":     cmp.EnergyDiff,
				"latency_diff":    cmp.LatencyDiff,
				"throughput_diff": cmp.ThroughputDiff,
			}
		}
		winners = append(winners, entry)
	}

	errs := make([]any, 0, len(res.Errors))
	for _, err := range res.Errors {
		errs = append(errs, err.Error())
	}

	fields := map[string]any{
		"run_id":           res.RunID,
		"mode":             res.Mode,
		"nodes":            res.Nodes,
		"objective":        objective.Name(),
		"tested":           len(res.Tested),
		"duration_seconds": res.Duration.Seconds(),
		"converged":        res.Converged,
		"rounds":           rounds,
		"winners":          winners,
		"errors":           errs,
	}
	if res.ConvergenceReason != "" {
		fields["convergence_reason"] = res.ConvergenceReason
	}
	if root != nil {
		if rec, err := NewRecord(root); err == nil {
			fields["root"] = recordFields(rec)
		}
	}
	if best, err := res.Best(objective); err == nil {
		if rec, err := NewRecord(best.Node); err == nil {
			fields["best"] = recordFields(rec)
		}
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
}

// WriteSummary marshals the summary into path
func WriteSummary(path string, res *search.Result, objective search.ObjectiveFunction) error {
	data, err := MarshalSummary(res, objective)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}

func recordFields(r Record) map[string]any {
	fields := map[string]any{
		"config":      r.Config,
		"nodes":       r.Nodes,
		"energy":      r.Energy,
		"avg_latency": r.AverageLatency,
		"throughput":  r.Throughput,
		"iteration":   r.Iteration,
		"processors":  anySlice(r.Processors),
		"schedules":   anySlice(r.Schedules),
	}
	if r.Score != nil {
		fields["score"] = *r.Score
	}
	voltages := make([]any, len(r.Voltages))
	for i, v := range r.Voltages {
		voltages[i] = v
	}
	fields["voltages"] = voltages
	if len(r.Mapping) > 0 {
		fields["mapping"] = anySlice(r.Mapping)
		fields["priorities"] = anySlice(r.Priorities)
	}
	return fields
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
