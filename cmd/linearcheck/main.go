// Command linearcheck checks a recorded history of concurrent operations
// for linearizability against a known sequential model.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/KimMachineGun/automemlimit"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/ashgrove/linearcheck/analyzer"
	"github.com/ashgrove/linearcheck/config"
	"github.com/ashgrove/linearcheck/history"
	"github.com/ashgrove/linearcheck/internal/obs"
	"github.com/ashgrove/linearcheck/model"
)

func main() {
	if err := run(); err != nil {
		obs.Log.Error().Err(err).Msg("linearcheck: fatal")
		os.Exit(1)
	}
}

func run() error {
	var (
		historyPath = flag.String("history", "", "path to a JSON-encoded history (required)")
		modelName   = flag.String("model", "register", "sequential model to check against (register)")
		initial     = flag.Float64("initial", 0, "register model: initial value")
		configPath  = flag.String("config", "", "path to a TOML config file (optional)")
	)
	flag.Parse()

	// automemlimit is wired entirely through its side-effecting blank
	// import (driven by the AUTOMEMLIMIT* environment variables); see
	// DESIGN.md.
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		obs.Log.Debug().Msgf(format, args...)
	})); err != nil {
		obs.Log.Warn().Err(err).Msg("linearcheck: could not set GOMAXPROCS")
	}

	if *historyPath == "" {
		return fmt.Errorf("linearcheck: -history is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	h, err := loadHistory(*historyPath)
	if err != nil {
		return err
	}

	m, err := selectModel(*modelName, *initial)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := analyzer.Analyze(ctx, m, history.Complete(h), analyzer.Options{
		Workers:        cfg.Workers,
		SeenCacheBits:  cfg.SeenCacheBits,
		ReporterPeriod: cfg.ReporterPeriod,
	})
	if err != nil {
		return fmt.Errorf("linearcheck: %w", err)
	}

	return printReport(report)
}

// selectModel builds the Model named by name. register is the only model
// this command wires up (§1 Non-goals: additional models are pluggable
// but out of scope for the core).
//
// initial is a float64, not an int: encoding/json decodes every number in
// a history file into a float64, so every value RegisterState.Value is
// ever compared against over this CLI path is a float64. Handing Register
// an int here would make Step's == comparisons fail even for numerically
// equal values (float64(0) != int(0) as interface values), silently
// rejecting otherwise-valid histories.
func selectModel(name string, initial float64) (model.Model, error) {
	switch name {
	case "register":
		return model.Register{Initial: initial}, nil
	default:
		return nil, fmt.Errorf("linearcheck: unknown model %q", name)
	}
}

// jsonOp is the on-disk shape of a history.Op: history.Type is an int
// internally, but a file should spell out "invoke"/"ok"/"fail"/"info".
type jsonOp struct {
	Type     string `json:"type"`
	Process  any    `json:"process"`
	Function string `json:"function"`
	Value    any    `json:"value"`
}

func loadHistory(path string) (history.History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("linearcheck: reading history: %w", err)
	}

	var raw []jsonOp
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("linearcheck: parsing history: %w", err)
	}

	h := make(history.History, len(raw))
	for i, op := range raw {
		t, err := parseType(op.Type)
		if err != nil {
			return nil, fmt.Errorf("linearcheck: history[%d]: %w", i, err)
		}
		h[i] = history.Op{Type: t, Process: op.Process, Function: op.Function, Value: op.Value}
	}
	return h, nil
}

func parseType(s string) (history.Type, error) {
	switch s {
	case "invoke":
		return history.Invoke, nil
	case "ok":
		return history.Ok, nil
	case "fail":
		return history.Fail, nil
	case "info":
		return history.Info, nil
	default:
		return 0, fmt.Errorf("unknown event type %q", s)
	}
}

func printReport(r analyzer.Report) error {
	if r.Valid {
		fmt.Printf("valid: history of %d operations is linearizable\n", len(r.LinearizablePrefix))
		return nil
	}

	fmt.Printf("invalid: longest linearizable prefix has %d operations\n", len(r.LinearizablePrefix))
	fmt.Printf("culprit: %s\n", r.InconsistentOp)
	for _, t := range r.InconsistentTransitions {
		fmt.Printf("  from %s: %s\n", t.Model, t.Msg)
	}
	return fmt.Errorf("linearcheck: history is not linearizable")
}
