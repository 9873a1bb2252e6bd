package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rockmass/ml"
)

const testArtifact = "../../models/tunneling_xgboost_model.json"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "TBM"},
		{[]string{"--rmr", "0", "--rqd", "0", "--gsi", "0", "--ucs", "0", "--bts", "0"}, "NATM"},
		{[]string{"--rmr", "80", "--rqd", "90", "--gsi", "85", "--ucs", "180", "--bts", "40"}, "Drill & Blast"},
	}

	for _, tt := range tests {
		args := append([]string{"classify", "--model", testArtifact}, tt.args...)
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if want := "Recommended Tunneling Method: " + tt.want + "\n"; out != want {
			t.Errorf("%v: output = %q, want %q", tt.args, out, want)
		}
	}
}

func TestClassifyMissingModel(t *testing.T) {
	_, err := run(t, "classify", "--model", filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ml.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestLabelsCommand(t *testing.T) {
	out, err := run(t, "labels", "--model", testArtifact)
	if err != nil {
		t.Fatal(err)
	}
	if out != "Drill & Blast\nNATM\nTBM\n" {
		t.Errorf("labels output = %q", out)
	}
}

func TestPlotCommand(t *testing.T) {
	out, err := run(t, "plot", "--format", "svg", "--output", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<svg") {
		t.Error("stdout does not contain an svg document")
	}

	path := filepath.Join(t.TempDir(), "chart.png")
	if _, err := run(t, "plot", "--format", "png", "--output", path, "--ucs", "150"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output file is not a png")
	}

	if _, err := run(t, "plot", "--format", "gif", "--output", "-"); err == nil {
		t.Error("expected an error for gif")
	}
}

func TestCommandsRejectOutOfRangeParameters(t *testing.T) {
	tests := [][]string{
		{"classify", "--model", testArtifact, "--ucs", "250"},
		{"classify", "--model", testArtifact, "--rmr", "-1"},
		{"plot", "--output", "-", "--bts", "51"},
	}
	for _, args := range tests {
		out, err := run(t, args...)
		if !errors.Is(err, ml.ErrInvalidInput) {
			t.Errorf("%v: expected ErrInvalidInput, got %v", args, err)
		}
		if out != "" {
			t.Errorf("%v: unexpected output %q", args, out)
		}
	}
}

func TestWriteFileRemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.svg")
	renderErr := errors.New("render failed")

	err := writeFile(path, func(w io.Writer) error {
		io.WriteString(w, "<svg")
		return renderErr
	})
	if !errors.Is(err, renderErr) {
		t.Fatalf("expected render error, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("partial file was left behind: %v", err)
	}

	if err := writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "<svg/>")
		return err
	}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("file content = %q", data)
	}
}

func TestWriteFileReportsCreateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "chart.svg")
	called := false
	err := writeFile(path, func(w io.Writer) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("expected create error before writing, got err=%v called=%v", err, called)
	}
}
