package hwm

import (
	"testing"
	"time"

	"github.com/arthur-debert/hwmstore/types"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// stepClock returns a clock advancing one second per call
func stepClock() func() time.Time {
	now := baseTime
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func testProcess(t *testing.T) types.Process {
	t.Helper()
	p, err := types.NewProcess("loader", "etl-host")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func testColumn(t *testing.T, name string) types.Column {
	t.Helper()
	c, err := types.NewColumn(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func testTable(t *testing.T, name string) types.Table {
	t.Helper()
	table, err := types.ParseTable(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func testFolder(t *testing.T, s string) types.RemoteFolder {
	t.Helper()
	f, err := types.ParseRemoteFolder(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f
}
