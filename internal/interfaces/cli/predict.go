package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

// predictResult pairs the request with its response for output purposes.
type predictResult struct {
	SoluteSMILES  string  `json:"solute_smiles"`
	SolventSMILES string  `json:"solvent_smiles"`
	TemperatureK  float64 `json:"temperature_k"`
	PredictedLogS float64 `json:"predicted_logs"`
	Warning       string  `json:"warning,omitempty"`
}

func (r predictResult) String() string {
	s := fmt.Sprintf("LogS = %.4f  (solute %s, solvent %s, %.2f K)",
		r.PredictedLogS, r.SoluteSMILES, r.SolventSMILES, r.TemperatureK)
	if r.Warning != "" {
		s += "\nwarning: " + r.Warning
	}
	return s
}

type predictResultList []predictResult

func (l predictResultList) TableHeaders() []string {
	return []string{"SOLUTE", "SOLVENT", "TEMP (K)", "LOGS", "WARNING"}
}

func (l predictResultList) String() string {
	return FormatTable(l.TableHeaders(), l.TableRows())
}

func (l predictResultList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			r.SoluteSMILES,
			r.SolventSMILES,
			strconv.FormatFloat(r.TemperatureK, 'f', 2, 64),
			strconv.FormatFloat(r.PredictedLogS, 'f', 4, 64),
			r.Warning,
		})
	}
	return rows
}

// NewPredictCmd creates the predict command.
func NewPredictCmd() *cobra.Command {
	var (
		solute  string
		solvent string
		temp    float64
		file    string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict LogS for a solute in a solvent at a temperature",
		Example: `  sol predict --solute "CC(=O)Oc1ccccc1C(=O)O" --solvent O --temp 298.15
  sol predict --file requests.json -o table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if file != "" {
				return runPredictBatch(cmd, cliCtx, file)
			}

			if strings.TrimSpace(solute) == "" {
				return fmt.Errorf("--solute is required (or use --file for batch input)")
			}

			req := ptypes.Request{
				SoluteSMILES:  solute,
				SolventSMILES: solvent,
				TemperatureK:  temp,
			}
			resp, err := cliCtx.Client.Predict(cmd.Context(), req)
			if err != nil {
				return err
			}

			return PrintResult(cmd, predictResult{
				SoluteSMILES:  req.SoluteSMILES,
				SolventSMILES: req.SolventSMILES,
				TemperatureK:  resp.TemperatureK,
				PredictedLogS: resp.PredictedLogS,
				Warning:       resp.Warning,
			})
		},
	}

	cmd.Flags().StringVar(&solute, "solute", "", "solute SMILES (required)")
	cmd.Flags().StringVar(&solvent, "solvent", "O", "solvent SMILES (default: water)")
	cmd.Flags().Float64Var(&temp, "temp", 298.15, "temperature in Kelvin")
	cmd.Flags().StringVar(&file, "file", "", "JSON file with an array of prediction requests")

	return cmd
}

// runPredictBatch reads a JSON array of requests from a file and sends it as
// one batch call.
func runPredictBatch(cmd *cobra.Command, cliCtx *CLIContext, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var reqs []ptypes.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(reqs) == 0 {
		return fmt.Errorf("%s contains no requests", path)
	}

	resps, err := cliCtx.Client.PredictBatch(cmd.Context(), reqs)
	if err != nil {
		return err
	}

	results := make(predictResultList, 0, len(resps))
	for i, resp := range resps {
		r := predictResult{
			TemperatureK:  resp.TemperatureK,
			PredictedLogS: resp.PredictedLogS,
			Warning:       resp.Warning,
		}
		if i < len(reqs) {
			r.SoluteSMILES = reqs[i].SoluteSMILES
			r.SolventSMILES = reqs[i].SolventSMILES
		}
		results = append(results, r)
	}

	return PrintResult(cmd, results)
}
