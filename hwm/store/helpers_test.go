package store

import (
	"testing"
	"time"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/types"
)

var testProcess = types.Process{Name: "loader", Host: "etl-host"}

func intHWM(t *testing.T, column, table string, value any) hwm.IntHWM {
	t.Helper()
	c, err := types.NewColumn(column)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl, err := types.ParseTable(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h, err := hwm.NewIntHWM(c, tbl,
		hwm.WithValue(value),
		hwm.WithProcess(testProcess),
		hwm.WithModifiedTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return h
}

func fileList(t *testing.T, folder string, value any) hwm.FileListHWM {
	t.Helper()
	f, err := types.ParseRemoteFolder(folder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h, err := hwm.NewFileListHWM(f, hwm.WithValue(value), hwm.WithProcess(testProcess))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return h
}

// exerciseStore runs the behaviour every Store must share
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	first := intHWM(t, "id", "mydb.mytable", 5)
	if _, err := s.Get(first.QualifiedName()); !isNotFound(err) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	if err := s.Save(first); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := s.Get(first.QualifiedName())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Equal(first) {
		t.Errorf("got %s, want %s", got.SerializeValue(), first.SerializeValue())
	}

	next, err := first.Add(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Save(next); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err = s.Get(first.QualifiedName())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.SerializeValue() != "8" {
		t.Errorf("got %q, want %q", got.SerializeValue(), "8")
	}

	files := fileList(t, "/data@ftp://host", []string{"a.csv", "b/c.csv"})
	if err := s.Save(files); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	all, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d hwms, want 2", len(all))
	}
	if !all[0].Equal(files) || all[0].QualifiedName() > all[1].QualifiedName() {
		t.Errorf("list should be sorted by qualified name, got %q, %q", all[0].QualifiedName(), all[1].QualifiedName())
	}

	if err := s.Save(nil); err == nil {
		t.Errorf("expected error when saving nil")
	}
}
