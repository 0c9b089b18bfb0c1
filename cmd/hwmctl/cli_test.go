package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/hwmstore/formats"
	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/hwm/store"
)

var processFlags = []string{"--process-name", "loader", "--process-host", "etl-host"}

// isolate keeps logs and config lookups inside temporary directories
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HWMCTL_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	err := NewCLI(&out, &errOut).Execute(append(args, processFlags...))
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("hwmctl %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func decodeEntries(t *testing.T, out string) []formats.Entry {
	t.Helper()

	var entries []formats.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("output is not valid json: %v\n%s", err, out)
	}
	return entries
}

func TestTypesCommand(t *testing.T) {
	isolate(t)

	out := mustRun(t, "types")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	want := [][]string{
		{"TYPE", "TITLE", "ALIASES"},
		{"column_date", "Column", "Date", "date"},
		{"column_datetime", "Column", "Datetime", "datetime"},
		{"column_int", "Column", "Int", "int"},
		{"file_list", "File", "List", "files_list"},
		{"key_value_int", "Key", "Value", "Int"},
	}
	got := make([][]string, len(lines))
	for i, line := range lines {
		got[i] = strings.Fields(line)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("types output mismatch (-want +got):\n%s", diff)
	}
}

func TestSetAndGet(t *testing.T) {
	isolate(t)
	storePath := filepath.Join(t.TempDir(), "hwm.yaml")
	const qn = "id#shop.orders#loader@etl-host"

	set := func(kind, value string) (string, error) {
		return runCLI(t, "--store", storePath, "--format", "json",
			"set-"+kind, "--column", "id", "--source", "shop.orders", "--value", value)
	}

	t.Run("create", func(t *testing.T) {
		out, err := set("int", "42")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entries := decodeEntries(t, out)
		if len(entries) != 1 || entries[0].QualifiedName != qn || entries[0].Record["value"] != "42" {
			t.Errorf("unexpected output: %+v", entries)
		}
	})

	t.Run("update", func(t *testing.T) {
		if _, err := set("int", "50"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entries := decodeEntries(t, mustRun(t, "--store", storePath, "--format", "json", "get", qn))
		if got := entries[0].Record["value"]; got != "50" {
			t.Errorf("got value %v, want 50", got)
		}
	})

	t.Run("reset", func(t *testing.T) {
		out, err := set("int", "null")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := decodeEntries(t, out)[0].Record["value"]; got != "null" {
			t.Errorf("got value %v, want null", got)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := set("int", "forty-two")
		if !errors.Is(err, hwm.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), `invalid value: "forty-two"`) {
			t.Errorf("unexpected message: %v", err)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := set("date", "2024-03-01")
		if !errors.Is(err, hwm.ErrTypeMismatch) {
			t.Errorf("expected ErrTypeMismatch, got %v", err)
		}
	})

	t.Run("missing hwm", func(t *testing.T) {
		_, err := runCLI(t, "--store", storePath, "get", "missing#db.table#loader@etl-host")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		var cliErr *CLIError
		if !errors.As(err, &cliErr) || cliErr.Cause != "hwm not found" {
			t.Errorf("expected CLIError with cause 'hwm not found', got %v", err)
		}
	})

	t.Run("invalid source", func(t *testing.T) {
		_, err := runCLI(t, "--store", storePath, "set-int", "--column", "id", "--source", "orders", "--value", "1")
		if err == nil || !strings.Contains(err.Error(), `invalid source: "orders"`) {
			t.Errorf("expected invalid source error, got %v", err)
		}
	})
}

func TestSetDateAndDateTime(t *testing.T) {
	isolate(t)
	storePath := filepath.Join(t.TempDir(), "hwm.json")

	tests := []struct {
		kind  string
		value string
		want  string
	}{
		{"date", "2024-03-01", "2024-03-01"},
		{"datetime", "2024-03-01T10:20:30Z", "2024-03-01T10:20:30Z"},
		{"datetime", "2024-03-01 10:20:30+02:00", "2024-03-01T10:20:30+02:00"},
	}

	for _, tt := range tests {
		t.Run(tt.kind+" "+tt.value, func(t *testing.T) {
			out := mustRun(t, "--store", storePath, "--format", "json",
				"set-"+tt.kind, "--column", tt.kind+"_col|region=eu", "--source", "logs.events@dwh", "--value", tt.value)
			entries := decodeEntries(t, out)
			if got := entries[0].Record["value"]; got != tt.want {
				t.Errorf("got value %v, want %s", got, tt.want)
			}
			if want := tt.kind + "_col|region=eu#logs.events@dwh#loader@etl-host"; entries[0].QualifiedName != want {
				t.Errorf("got qualified name %q, want %q", entries[0].QualifiedName, want)
			}
		})
	}
}

func TestFileCommands(t *testing.T) {
	isolate(t)
	storePath := filepath.Join(t.TempDir(), "hwm.yaml")
	const folder = "/landing@ftp://files.example.com"

	out := mustRun(t, "--store", storePath, "--format", "json", "add-files", "--folder", folder, "a.csv", "/landing/b.csv")
	entries := decodeEntries(t, out)
	if got := entries[0].Record["value"]; got != "a.csv\nb.csv" {
		t.Errorf("got value %q", got)
	}

	out = mustRun(t, "--store", storePath, "pending-files", "--folder", folder, "a.csv", "c.csv", "/landing/b.csv", "c.csv", "/landing/d.csv")
	if diff := cmp.Diff("c.csv\n/landing/d.csv\n", out); diff != "" {
		t.Errorf("pending files mismatch (-want +got):\n%s", diff)
	}

	_, err := runCLI(t, "--store", storePath, "add-files", "--folder", folder, "/elsewhere/x.csv")
	if !errors.Is(err, hwm.ErrPathOutsideRoot) {
		t.Errorf("expected ErrPathOutsideRoot, got %v", err)
	}

	_, err = runCLI(t, "--store", storePath, "add-files", "--folder", "/landing", "a.csv")
	if err == nil || !strings.Contains(err.Error(), "invalid folder") {
		t.Errorf("expected invalid folder error, got %v", err)
	}
}

func TestSetOffsetsCommand(t *testing.T) {
	isolate(t)
	storePath := filepath.Join(t.TempDir(), "hwm.yaml")
	const qn = "offset#kafka.orders#loader@etl-host"

	setOffsets := func(offsets ...string) (string, error) {
		args := []string{"--store", storePath, "--format", "json", "set-offsets", "--column", "offset", "--source", "kafka.orders"}
		for _, o := range offsets {
			args = append(args, "--offset", o)
		}
		return runCLI(t, args...)
	}

	if _, err := setOffsets("0=100", "1=200"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := setOffsets("0=50", "1=250", "2=7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := decodeEntries(t, out)
	if got := entries[0].Record["value"]; got != "0=100\n1=250\n2=7" {
		t.Errorf("merged value: got %q", got)
	}

	entries = decodeEntries(t, mustRun(t, "--store", storePath, "--format", "json", "get", qn))
	if entries[0].Record["type"] != "key_value_int" || entries[0].QualifiedName != qn {
		t.Errorf("stored entry: got %v", entries[0])
	}

	if _, err := setOffsets("0:1"); !errors.Is(err, hwm.ErrValidation) {
		t.Errorf("bad offset: expected ErrValidation, got %v", err)
	}

	mustRun(t, "--store", storePath, "set-int", "--column", "id", "--source", "shop.orders", "--value", "1")
	_, err = runCLI(t, "--store", storePath, "set-offsets", "--column", "id", "--source", "shop.orders", "--offset", "0=1")
	if !errors.Is(err, hwm.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestSQLCommand(t *testing.T) {
	isolate(t)
	storePath := filepath.Join(t.TempDir(), "hwm.yaml")
	const qn = "id#shop.orders#loader@etl-host"

	mustRun(t, "--store", storePath, "set-int", "--column", "id", "--source", "shop.orders", "--value", "42")
	mustRun(t, "--store", storePath, "add-files", "--folder", "/landing@ftp://files.example.com", "a.csv")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "window",
			args: []string{"sql", qn, "--placeholder", "dollar"},
			want: "SELECT * FROM shop.orders WHERE id > $1\n-- $1 = 42\n",
		},
		{
			name: "columns",
			args: []string{"sql", qn, "--columns", "id,total"},
			want: "SELECT id, total FROM shop.orders WHERE id > ?\n-- $1 = 42\n",
		},
		{
			name: "max",
			args: []string{"sql", qn, "--max"},
			want: "SELECT MAX(id) FROM shop.orders WHERE id > ?\n-- $1 = 42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, append([]string{"--store", storePath}, tt.args...)...)
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("sql mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("file list", func(t *testing.T) {
		_, err := runCLI(t, "--store", storePath, "sql", "file_list#/landing@ftp://files.example.com#loader@etl-host")
		if !errors.Is(err, hwm.ErrIncomparable) {
			t.Errorf("expected ErrIncomparable, got %v", err)
		}
	})

	t.Run("unknown placeholder", func(t *testing.T) {
		_, err := runCLI(t, "--store", storePath, "sql", qn, "--placeholder", "percent")
		if err == nil || !strings.Contains(err.Error(), "invalid placeholder") {
			t.Errorf("expected invalid placeholder error, got %v", err)
		}
	})
}

func TestLegacyCommands(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "hwm.json")
	legacyPath := filepath.Join(dir, "legacy.yaml")

	legacy := `
- hwmName: id
  processName: loader@etl-host
  datasetQualifiedName: shop.orders
  value: "42"
  type: int
  modifiedTime: 1709294400
- hwmName: downloaded_files
  processName: loader@etl-host
  datasetQualifiedName: /landing@ftp://files.example.com
  value: |
    a.csv
    b.csv
- hwmName: updated_at
  datasetQualifiedName: crm.users
  value: ""
  type: timestamp
`
	if err := os.WriteFile(legacyPath, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, "--store", storePath, "--format", "json", "import-legacy", legacyPath)
	got := make([]string, 0)
	for _, e := range decodeEntries(t, out) {
		got = append(got, e.QualifiedName)
	}
	want := []string{
		"id#shop.orders#loader@etl-host",
		"file_list#/landing@ftp://files.example.com#loader@etl-host",
		"updated_at#crm.users#loader@etl-host",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("imported names mismatch (-want +got):\n%s", diff)
	}

	out = mustRun(t, "--store", storePath, "--format", "json", "export-legacy")
	var exported []hwm.LegacyHWM
	if err := json.Unmarshal([]byte(out), &exported); err != nil {
		t.Fatalf("output is not valid json: %v\n%s", err, out)
	}
	names := make([]string, len(exported))
	for i, rec := range exported {
		names[i] = rec.HWMName + "=" + rec.Value
	}
	// export follows the store order, sorted by qualified name
	wantNames := []string{"downloaded_files=a.csv\nb.csv", "id=42", "updated_at="}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("exported records mismatch (-want +got):\n%s", diff)
	}

	if err := os.WriteFile(legacyPath, []byte("- hwmName: id\n  datasetQualifiedName: shop.orders\n  type: float\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "--store", storePath, "import-legacy", legacyPath); !errors.Is(err, hwm.ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestStoreFromConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "state", "hwm.json")
	configPath := filepath.Join(dir, "hwmctl.yaml")

	config := "hwm_store:\n  json: " + storePath + "\nformat: json\n"
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HWMCTL_CONFIG", configPath)

	out := mustRun(t, "set-int", "--column", "id", "--source", "shop.orders", "--value", "7")
	if entries := decodeEntries(t, out); entries[0].Record["value"] != "7" {
		t.Errorf("unexpected output: %+v", entries)
	}

	s, err := store.NewFileStore(storePath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = s.Close() }()
	h, err := s.Get("id#shop.orders#loader@etl-host")
	if err != nil {
		t.Fatalf("hwm was not written to the configured store: %v", err)
	}
	if h.SerializeValue() != "7" {
		t.Errorf("got %q, want 7", h.SerializeValue())
	}

	t.Run("environment overrides config", func(t *testing.T) {
		t.Setenv("HWMCTL_STORE", "memory")
		t.Setenv("HWMCTL_FORMAT", "table")
		out := mustRun(t, "list")
		if diff := cmp.Diff("NAME  TYPE  SOURCE  PROCESS  VALUE  MODIFIED\n", out); diff != "" {
			t.Errorf("expected an empty memory store (-want +got):\n%s", diff)
		}
	})
}

func TestNoStoreConfigured(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "list")
	if err == nil || !strings.Contains(err.Error(), "no hwm store configured") {
		t.Fatalf("expected configuration error, got %v", err)
	}

	_, err = runCLI(t, "--store", "redis", "list")
	if !errors.Is(err, store.ErrUnknownStoreType) {
		t.Errorf("expected ErrUnknownStoreType, got %v", err)
	}
}

func TestUnknownFormat(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "--store", "memory", "--format", "markdown", "list")
	if err == nil || !strings.Contains(err.Error(), `invalid format: "markdown"`) {
		t.Errorf("expected invalid format error, got %v", err)
	}
}

func TestParseStoreSpec(t *testing.T) {
	tests := []struct {
		spec     string
		wantName string
		wantArgs store.Args
	}{
		{"memory", "memory", store.Args{}},
		{"yaml:/var/lib/hwm.state", "yaml", store.Args{Positional: []any{"/var/lib/hwm.state"}}},
		{"/var/lib/hwm.json", "file", store.Args{Positional: []any{"/var/lib/hwm.json"}}},
		{"state/hwm.YML", "file", store.Args{Positional: []any{"state/hwm.YML"}}},
		{"redis", "redis", store.Args{}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			name, args := parseStoreSpec(tt.spec)
			if name != tt.wantName {
				t.Errorf("got type %q, want %q", name, tt.wantName)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListFilters(t *testing.T) {
	isolate(t)
	storePath := filepath.Join(t.TempDir(), "hwm.yaml")

	mustRun(t, "--store", storePath, "set-int", "--column", "id", "--source", "shop.orders", "--value", "1")
	mustRun(t, "--store", storePath, "set-int", "--column", "id", "--source", "shop.refunds", "--value", "2")
	mustRun(t, "--store", storePath, "set-date", "--column", "day", "--source", "shop.orders", "--value", "2024-03-01")
	mustRun(t, "--store", storePath, "add-files", "--folder", "/landing@ftp://files.example.com", "a.csv")

	tests := []struct {
		name    string
		filters []string
		want    []string
	}{
		{"all", nil, []string{
			"day#shop.orders#loader@etl-host",
			"file_list#/landing@ftp://files.example.com#loader@etl-host",
			"id#shop.orders#loader@etl-host",
			"id#shop.refunds#loader@etl-host",
		}},
		{"kind alias", []string{"kind=int"}, []string{
			"id#shop.orders#loader@etl-host",
			"id#shop.refunds#loader@etl-host",
		}},
		{"source and kind", []string{"source=shop.orders", "kind=column_*"}, []string{
			"day#shop.orders#loader@etl-host",
			"id#shop.orders#loader@etl-host",
		}},
		{"no match", []string{"host=other"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"--store", storePath, "--format", "json", "list"}
			for _, f := range tt.filters {
				args = append(args, "--filter", f)
			}
			got := make([]string, 0)
			for _, e := range decodeEntries(t, mustRun(t, args...)) {
				got = append(got, e.QualifiedName)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("listed names mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := runCLI(t, "--store", storePath, "list", "--filter", "color=red")
	if err == nil || !strings.Contains(err.Error(), `invalid filter: "color=red"`) {
		t.Errorf("expected invalid filter error, got %v", err)
	}
}
