package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

type eventList []ptypes.Event

func (l eventList) TableHeaders() []string {
	return []string{"WHEN", "SOLUTE", "SOLVENT", "TEMP (K)", "LOGS", "MODEL"}
}

func (l eventList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, ev := range l {
		rows = append(rows, []string{
			time.UnixMilli(ev.UnixMillis).UTC().Format(time.RFC3339),
			ev.SoluteSMILES,
			ev.SolventSMILES,
			strconv.FormatFloat(ev.TemperatureK, 'f', 2, 64),
			strconv.FormatFloat(ev.PredictedLogS, 'f', 4, 64),
			ev.ModelVersion,
		})
	}
	return rows
}

func (l eventList) String() string {
	return FormatTable(l.TableHeaders(), l.TableRows())
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	var (
		solute string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored predictions for a solute, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if strings.TrimSpace(solute) == "" {
				return fmt.Errorf("--solute is required")
			}

			events, err := cliCtx.Client.History(cmd.Context(), solute, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				return PrintResult(cmd, "no stored predictions for this solute")
			}

			return PrintResult(cmd, eventList(events))
		},
	}

	cmd.Flags().StringVar(&solute, "solute", "", "solute SMILES (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of rows")

	return cmd
}

// NewHealthCmd creates the health command.
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the prediction service is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			h, err := cliCtx.Client.Health(cmd.Context())
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("status=%s model_loaded=%t", h.Status, h.ModelLoaded)
			if h.ModelVersion != "" {
				msg += " model_version=" + h.ModelVersion
			}
			return PrintResult(cmd, msg)
		},
	}
}
