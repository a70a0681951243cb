package config

import (
	"os"

	"github.com/tidwall/gjson"

	"github.com/mosif16/VidKit/internal/agent"
)

// LoadScoringWeights reads the viral scoring weight document and
// returns a sanitized scoring config. The document is JSON shaped as:
//
//	{
//	  "pqs_weight": 0.55,
//	  "eps_weight": 0.45,
//	  "pqs": {"hook": 0.22, ...},
//	  "eps": {"watch_ratio": 0.35, ...}
//	}
//
// A missing file, unparseable content, or weights that do not sum to
// 1.0 never fail the run: the built-in defaults are substituted and
// the substitution is recorded in FallbackNotes so the execution
// report can surface it. Unknown signal keys are ignored.
func LoadScoringWeights(path string) agent.ScoringConfig {
	cfg := agent.DefaultScoringConfig()

	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		cfg.FallbackNotes = append(cfg.FallbackNotes,
			"weights file "+path+" unreadable, using built-in defaults: "+err.Error())
		return cfg
	}

	if !gjson.ValidBytes(data) {
		cfg.FallbackNotes = append(cfg.FallbackNotes,
			"weights file "+path+" is not valid json, using built-in defaults")
		return cfg
	}

	doc := gjson.ParseBytes(data)

	if pw, ew := doc.Get("pqs_weight"), doc.Get("eps_weight"); pw.Exists() && ew.Exists() {
		cfg.PQSWeight = pw.Float()
		cfg.EPSWeight = ew.Float()
	}

	if pqs := doc.Get("pqs"); pqs.IsObject() {
		cfg.PQSSignalWeights = signalWeights(pqs, agent.PQSSignals())
	}
	if eps := doc.Get("eps"); eps.IsObject() {
		cfg.EPSSignalWeights = signalWeights(eps, agent.EPSSignals())
	}

	if gate := doc.Get("pqs_gate"); gate.Exists() {
		cfg.PQSGate = gate.Float()
	}
	if th := doc.Get("confidence_threshold"); th.Exists() {
		cfg.ConfidenceThreshold = th.Float()
	}

	// Sanitize substitutes defaults for any unbalanced group and notes
	// the fallback.
	cfg.Sanitize()
	return cfg
}

// signalWeights keeps only keys from the fixed signal set; anything
// else in the document is ignored rather than invented at runtime.
func signalWeights(obj gjson.Result, signals []agent.Signal) map[agent.Signal]float64 {
	out := make(map[agent.Signal]float64, len(signals))
	for _, sig := range signals {
		if v := obj.Get(string(sig)); v.Exists() {
			out[sig] = v.Float()
		}
	}
	return out
}

// ScoringFromConfig overlays app-config thresholds onto a scoring
// config loaded from the weights document.
func ScoringFromConfig(appCfg *Config) agent.ScoringConfig {
	cfg := LoadScoringWeights(appCfg.Agent.WeightsPath)
	if appCfg.Agent.ConfidenceThreshold > 0 {
		cfg.ConfidenceThreshold = appCfg.Agent.ConfidenceThreshold
	}
	if appCfg.Agent.PQSGate > 0 {
		cfg.PQSGate = appCfg.Agent.PQSGate
	}
	if appCfg.Agent.DurationTolerance > 0 {
		cfg.DurationTolerance = appCfg.Agent.DurationTolerance
	}
	cfg.Sanitize()
	return cfg
}
