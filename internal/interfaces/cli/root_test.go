package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("NewRootCommand should return a command")
	}
	if cmd.Use != "sol" {
		t.Errorf("expected Use='sol', got %q", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short should not be empty")
	}
	if cmd.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestNewRootCommand_SubcommandRegistration(t *testing.T) {
	cmd := NewRootCommand()

	expected := []string{"predict", "solvents", "history", "health"}
	subNames := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subNames[strings.Fields(sub.Use)[0]] = true
	}

	for _, name := range expected {
		if !subNames[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"config", "log-level", "output", "verbose", "timeout", "server"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("%s flag should exist", name)
		}
	}

	if got := cmd.PersistentFlags().Lookup("output").DefValue; got != "text" {
		t.Errorf("expected output default 'text', got %q", got)
	}
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"NAME", "SMILES"},
		[][]string{
			{"water", "O"},
			{"ethanol", "CCO"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("header row malformed: %q", lines[0])
	}
	if !strings.Contains(lines[1], "---") {
		t.Errorf("separator row malformed: %q", lines[1])
	}
	if !strings.Contains(lines[3], "ethanol") {
		t.Errorf("data row malformed: %q", lines[3])
	}
}

func TestFormatTable_Empty(t *testing.T) {
	if out := FormatTable(nil, nil); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

// runCommand executes the root command against a test server and captures
// stdout.
func runCommand(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--server", srv.URL))
	cmd.SetContext(context.Background())

	err := cmd.Execute()
	return out.String(), err
}

func TestSolventsListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/solvents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"solvents": []ptypes.Solvent{
				{Name: "water", SMILES: "O", Dielectric: 78.4},
			},
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "solvents", "list", "-o", "table")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "water") || !strings.Contains(out, "78.4") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPredictCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ptypes.Request
		json.NewDecoder(r.Body).Decode(&req)
		if req.SoluteSMILES != "CCO" {
			t.Errorf("unexpected solute %q", req.SoluteSMILES)
		}
		json.NewEncoder(w).Encode(ptypes.Response{
			PredictedLogS: -0.42,
			TemperatureK:  req.TemperatureK,
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "predict", "--solute", "CCO")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "-0.42") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPredictCommand_MissingSolute(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := runCommand(t, srv, "predict")
	if err == nil {
		t.Fatal("expected an error for a missing --solute flag")
	}
}

func TestSolventsAnalyzeCommand_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/solvents/analyze" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ptypes.AnalysisResponse{
			SoluteSMILES:        "CCO",
			RankingTemperatureK: 298.15,
			Rankings: []ptypes.SolventRanking{
				{Rank: 1, SolventName: "water", SolventSMILES: "O", PredictedLogS: -0.1},
			},
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "solvents", "analyze", "--solute", "CCO", "-o", "json")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, `"rank": 1`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHistoryCommand_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"predictions": []ptypes.Event{}})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "history", "--solute", "CCO")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "no stored predictions") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ptypes.HealthResponse{Status: "ok", ModelLoaded: true, ModelVersion: "v1"})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "health")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "status=ok") || !strings.Contains(out, "model_loaded=true") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
