// Package prediction holds the wire types shared by the HTTP API, the CLI
// client and the worker.
package prediction

import (
	"fmt"
	"strings"
)

// Request asks for one LogS prediction.
type Request struct {
	// SoluteSMILES is the structure whose solubility is predicted.
	SoluteSMILES string `json:"solute_smiles"`
	// SolventSMILES is the solvent structure.
	SolventSMILES string `json:"solvent_smiles"`
	// TemperatureK is the absolute temperature in Kelvin.
	TemperatureK float64 `json:"temperature_k"`
}

// Validate checks the request is well-formed before any chemistry runs.
func (r Request) Validate() error {
	if strings.TrimSpace(r.SoluteSMILES) == "" {
		return fmt.Errorf("solute_smiles is required")
	}
	if strings.TrimSpace(r.SolventSMILES) == "" {
		return fmt.Errorf("solvent_smiles is required")
	}
	if r.TemperatureK <= 0 {
		return fmt.Errorf("temperature_k must be positive, got %v", r.TemperatureK)
	}
	return nil
}

// Response carries one prediction in de-normalized LogS units (log10 mol/L).
type Response struct {
	PredictedLogS float64 `json:"predicted_logs"`
	TemperatureK  float64 `json:"temperature_k"`
	// Warning flags predictions outside the training temperature domain.
	Warning string `json:"warning,omitempty"`
}

// AnalysisRequest asks for a solvent ranking and temperature grid for one
// solute.
type AnalysisRequest struct {
	SoluteSMILES string `json:"solute_smiles"`
	// SoluteName is an optional display name used in responses.
	SoluteName string `json:"solute_name,omitempty"`
}

// Validate checks the analysis request.
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.SoluteSMILES) == "" {
		return fmt.Errorf("solute_smiles is required")
	}
	return nil
}

// SolventRanking is one row of the room-temperature ranking.
type SolventRanking struct {
	Rank          int     `json:"rank"`
	SolventName   string  `json:"solvent_name"`
	SolventSMILES string  `json:"solvent_smiles"`
	PredictedLogS float64 `json:"predicted_logs"`
}

// HeatmapRow holds one solvent's predictions across the temperature grid,
// aligned with AnalysisResponse.Temperatures.
type HeatmapRow struct {
	SolventName   string    `json:"solvent_name"`
	SolventSMILES string    `json:"solvent_smiles"`
	PredictedLogS []float64 `json:"predicted_logs"`
}

// AnalysisResponse is the full solvent analysis: ranking at room
// temperature plus the solvent-by-temperature grid.
type AnalysisResponse struct {
	SoluteSMILES        string           `json:"solute_smiles"`
	SoluteName          string           `json:"solute_name,omitempty"`
	RankingTemperatureK float64          `json:"ranking_temperature_k"`
	Rankings            []SolventRanking `json:"rankings"`
	Temperatures        []float64        `json:"temperatures"`
	HeatmapRows         []HeatmapRow     `json:"heatmap_rows"`
}

// Solvent is the registry listing entry.
type Solvent struct {
	Name        string  `json:"name"`
	SMILES      string  `json:"smiles"`
	Dielectric  float64 `json:"dielectric"`
	DisplayName string  `json:"display_name"`
}

// HealthResponse reports process liveness and model readiness.
type HealthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version,omitempty"`
}

// ErrorResponse is the structured error body every endpoint returns on
// failure.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Event is the message published to Kafka after a completed batch.
type Event struct {
	ID            string  `json:"id"`
	SoluteSMILES  string  `json:"solute_smiles"`
	SolventSMILES string  `json:"solvent_smiles"`
	TemperatureK  float64 `json:"temperature_k"`
	PredictedLogS float64 `json:"predicted_logs"`
	ModelVersion  string  `json:"model_version"`
	// UnixMillis is the completion time.
	UnixMillis int64 `json:"unix_millis"`
}
