package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

type solventList []ptypes.Solvent

func (l solventList) TableHeaders() []string {
	return []string{"NAME", "SMILES", "DIELECTRIC"}
}

func (l solventList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{
			s.Name,
			s.SMILES,
			strconv.FormatFloat(s.Dielectric, 'f', 1, 64),
		})
	}
	return rows
}

func (l solventList) String() string {
	return FormatTable(l.TableHeaders(), l.TableRows())
}

type rankingList []ptypes.SolventRanking

func (l rankingList) TableHeaders() []string {
	return []string{"RANK", "SOLVENT", "SMILES", "LOGS"}
}

func (l rankingList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			strconv.Itoa(r.Rank),
			r.SolventName,
			r.SolventSMILES,
			strconv.FormatFloat(r.PredictedLogS, 'f', 4, 64),
		})
	}
	return rows
}

func (l rankingList) String() string {
	return FormatTable(l.TableHeaders(), l.TableRows())
}

// NewSolventsCmd creates the solvents command group.
func NewSolventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solvents",
		Short: "Inspect the solvent catalogue and rank solvents for a solute",
	}

	cmd.AddCommand(newSolventsListCmd(), newSolventsAnalyzeCmd())

	return cmd
}

func newSolventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalogue solvents with their dielectric constants",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			solvents, err := cliCtx.Client.Solvents(cmd.Context())
			if err != nil {
				return err
			}

			return PrintResult(cmd, solventList(solvents))
		},
	}
}

func newSolventsAnalyzeCmd() *cobra.Command {
	var (
		solute string
		name   string
		grid   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank catalogue solvents for a solute at room temperature",
		Example: `  sol solvents analyze --solute "CC(=O)Oc1ccccc1C(=O)O"
  sol solvents analyze --solute "c1ccccc1O" --grid -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if strings.TrimSpace(solute) == "" {
				return fmt.Errorf("--solute is required")
			}

			resp, err := cliCtx.Client.AnalyzeSolvents(cmd.Context(), ptypes.AnalysisRequest{
				SoluteSMILES: solute,
				SoluteName:   name,
			})
			if err != nil {
				return err
			}

			if grid {
				return PrintResult(cmd, resp)
			}
			return PrintResult(cmd, rankingList(resp.Rankings))
		},
	}

	cmd.Flags().StringVar(&solute, "solute", "", "solute SMILES (required)")
	cmd.Flags().StringVar(&name, "name", "", "optional display name for the solute")
	cmd.Flags().BoolVar(&grid, "grid", false, "include the full temperature heatmap grid in the output")

	return cmd
}
