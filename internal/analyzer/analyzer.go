// Package analyzer wires the pieces together for one extension: manifest
// metadata, per-script PDG construction and repair, flow enumeration from
// the configured sources, sanitizer and exploitability verdicts, and the
// resulting finding file.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/crxflow-cli/internal/config"
	"github.com/xkilldash9x/crxflow-cli/internal/exploit"
	"github.com/xkilldash9x/crxflow-cli/internal/graph"
	"github.com/xkilldash9x/crxflow-cli/internal/manifest"
	"github.com/xkilldash9x/crxflow-cli/internal/pdg"
	"github.com/xkilldash9x/crxflow-cli/internal/report"
	"github.com/xkilldash9x/crxflow-cli/internal/taint"
)

// sinkDirection maps an unqualified sink name to the direction of the leak.
// Network-shaped sinks exfiltrate data out of the privileged context;
// execution-shaped sinks let attacker data into it.
var sinkDirections = map[string]string{
	"fetch":         "exfiltration",
	"sendBeacon":    "exfiltration",
	"send":          "exfiltration",
	"open":          "exfiltration",
	"postMessage":   "exfiltration",
	"sendMessage":   "exfiltration",
	"eval":          "infiltration",
	"Function":      "infiltration",
	"setTimeout":    "infiltration",
	"setInterval":   "infiltration",
	"executeScript": "infiltration",
	"write":         "infiltration",
	"writeln":       "infiltration",
}

// Property-assignment sinks, matched by member-expression suffix.
var propertySinks = map[string]string{
	".innerHTML": "infiltration",
	".outerHTML": "infiltration",
	".srcdoc":    "infiltration",
	".src":       "exfiltration",
	".href":      "exfiltration",
}

// Analyzer runs the taint engine over one extension at a time. Each
// extension's graph is exclusively owned by the analysis working on it;
// parallelism lives at the batch level only.
type Analyzer struct {
	cfg     config.AnalysisConfig
	logger  *zap.Logger
	builder *pdg.Builder
}

// New returns an Analyzer with the given analysis settings.
func New(cfg config.AnalysisConfig, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		cfg:     cfg,
		logger:  logger.Named("analyzer"),
		builder: pdg.NewBuilder(logger),
	}
}

// Result is the outcome of analyzing one extension.
type Result struct {
	Findings    report.Findings
	Patterns    []string
	Exploitable bool
	Duration    time.Duration
}

// AnalyzeExtension analyzes one unpacked extension directory.
func (a *Analyzer) AnalyzeExtension(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()

	m, err := manifest.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("extension %s: %w", dir, err)
	}

	name := m.DisplayName()
	if name == "" {
		name = filepath.Base(dir)
	}

	patterns := m.InjectionPatterns()
	exploitable := exploit.AnyEverywhere(patterns)

	res := &Result{
		Findings:    report.Findings{Extension: name},
		Patterns:    patterns,
		Exploitable: exploitable,
	}

	scripts := append(m.ContentScriptFiles(), m.BackgroundScriptFiles()...)
	for _, script := range scripts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dangers, err := a.analyzeScript(ctx, dir, script, exploitable)
		if err != nil {
			// A broken script aborts that script's analysis only; the
			// remaining scripts still get their turn.
			a.logger.Warn("Script analysis failed",
				zap.String("extension", name),
				zap.String("script", script),
				zap.Error(err))
			continue
		}
		for _, d := range dangers {
			switch sinkDirection(d.Sink) {
			case "exfiltration":
				res.Findings.ExfiltrationDangers = append(res.Findings.ExfiltrationDangers, d)
			default:
				res.Findings.InfiltrationDangers = append(res.Findings.InfiltrationDangers, d)
			}
		}
	}

	res.Findings.ChainPairs = chainPairs(res.Findings.ExfiltrationDangers, res.Findings.InfiltrationDangers)

	res.Duration = time.Since(start)
	a.logger.Info("Extension analyzed",
		zap.String("extension", name),
		zap.Int("exfiltration", len(res.Findings.ExfiltrationDangers)),
		zap.Int("infiltration", len(res.Findings.InfiltrationDangers)),
		zap.Bool("exploitable", exploitable),
		zap.Duration("took", res.Duration))
	return res, nil
}

// analyzeScript builds and repairs one script's PDG, then enumerates flows
// from every configured source.
func (a *Analyzer) analyzeScript(ctx context.Context, dir, script string, exploitable bool) ([]report.Danger, error) {
	source, err := os.ReadFile(filepath.Join(dir, script))
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	g, root, err := a.builder.Build(ctx, script, source)
	if err != nil {
		return nil, err
	}

	removed, err := g.RemoveIncorrectFlowEdges(root)
	if err != nil {
		return nil, fmt.Errorf("edge correction: %w", err)
	}
	if removed > 0 {
		a.logger.Debug("Removed structurally invalid flow edges",
			zap.String("script", script), zap.Int("removed", removed))
	}

	strategy := graph.ParseStrategy(a.cfg.Strategy)
	var dangers []report.Danger

	for _, sourceName := range a.cfg.Sources {
		for _, seed := range g.SeedByName(sourceName) {
			flows := g.Continue(seed, strategy)
			if limit := a.cfg.MaxFlowsPerSource; limit > 0 && len(flows) > limit {
				flows = flows[:limit]
			}
			for _, flow := range flows {
				sink, hit := sinkOf(g, flow)
				if !hit {
					continue
				}
				if taint.FlowIsSanitized(g, flow) {
					continue
				}
				loc := g.Loc(flow.Terminal())
				dangers = append(dangers, report.Danger{
					ID:          uuid.NewString(),
					Source:      sourceName,
					Sink:        sink,
					File:        loc.File,
					Line:        loc.Line,
					Exploitable: exploitable,
					Flow:        describeFlow(g, flow),
				})
			}
		}
	}
	return dangers, nil
}

// chainPairs cross-references the two danger directions per source. The pair
// enumeration is lazy, so an extension with many dangers per source never
// materializes the full product up front.
func chainPairs(exfil, infil []report.Danger) []report.ChainPair {
	var out []report.ChainPair
	done := make(map[string]bool)
	for _, d := range exfil {
		if done[d.Source] {
			continue
		}
		done[d.Source] = true
		for ex, in := range graph.Pairs(idsBySource(exfil, d.Source), idsBySource(infil, d.Source)) {
			out = append(out, report.ChainPair{ExfiltrationID: ex, InfiltrationID: in})
		}
	}
	return out
}

func idsBySource(dangers []report.Danger, source string) []string {
	var ids []string
	for _, d := range dangers {
		if d.Source == source {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// sinkOf scans a flow past its seed for the first node that writes into a
// dangerous sink: a call to a known sink function, or an assignment landing
// in a dangerous member property.
func sinkOf(g *graph.Graph, flow graph.DataFlow) (string, bool) {
	for _, n := range flow[1:] {
		switch g.Kind(n) {
		case graph.KindCallExpression:
			callee := g.Name(n)
			base := callee
			if i := strings.LastIndexByte(callee, '.'); i >= 0 {
				base = callee[i+1:]
			}
			if _, ok := sinkDirections[base]; ok {
				return callee, true
			}
		case graph.KindMemberExpression:
			name := g.Name(n)
			for suffix := range propertySinks {
				if strings.HasSuffix(name, suffix) {
					return name, true
				}
			}
		}
	}
	return "", false
}

// sinkDirection classifies a matched sink name into a leak direction.
func sinkDirection(sink string) string {
	base := sink
	if i := strings.LastIndexByte(sink, '.'); i >= 0 {
		base = sink[i+1:]
	}
	if dir, ok := sinkDirections[base]; ok {
		return dir
	}
	for suffix, dir := range propertySinks {
		if strings.HasSuffix(sink, suffix) {
			return dir
		}
	}
	return "infiltration"
}

// describeFlow renders a flow as human-readable node descriptions for the
// finding file.
func describeFlow(g *graph.Graph, flow graph.DataFlow) []string {
	out := make([]string, 0, len(flow))
	for _, n := range flow {
		desc := g.Kind(n).String()
		if name := g.Name(n); name != "" {
			desc += " " + name
		}
		loc := g.Loc(n)
		out = append(out, fmt.Sprintf("%s (%s:%d)", desc, loc.File, loc.Line))
	}
	return out
}
