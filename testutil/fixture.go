// Package testutil provides shared fixtures for tests: identity objects,
// fixed clocks, and a small set of HWMs saved into a store.
package testutil

import (
	"path/filepath"
	"sort"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/hwm/store"
	"github.com/arthur-debert/hwmstore/types"
)

// BaseTime is the starting point of StepClock
var BaseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// StepClock returns a clock advancing one second per call, starting after BaseTime
func StepClock() func() time.Time {
	now := BaseTime
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

// UniverseData holds one HWM of each kind
type UniverseData struct {
	Process types.Process

	// OrdersID tracks shop.orders.id at 42
	OrdersID hwm.IntHWM
	// EventsDay tracks logs.events.day at 2024-02-28, partitioned by region=eu
	EventsDay hwm.DateHWM
	// UsersUpdated is an unset datetime HWM on crm.users.updated_at@postgres://db:5432
	UsersUpdated hwm.DateTimeHWM
	// Landing holds two files of /landing@ftp://files.example.com
	Landing hwm.FileListHWM
}

// All returns the HWMs sorted by qualified name
func (u *UniverseData) All() []hwm.HWM {
	items := []hwm.HWM{u.OrdersID, u.EventsDay, u.UsersUpdated, u.Landing}
	sortByQualifiedName(items)
	return items
}

// ByQualifiedName indexes All
func (u *UniverseData) ByQualifiedName() map[string]hwm.HWM {
	out := make(map[string]hwm.HWM)
	for _, h := range u.All() {
		out[h.QualifiedName()] = h
	}
	return out
}

// NewUniverse builds the fixture HWMs without saving them
func NewUniverse(t testing.TB) *UniverseData {
	t.Helper()

	process := Must(types.NewProcess("loader", "etl-host"))
	common := []hwm.Option{hwm.WithProcess(process), hwm.WithClock(StepClock())}

	u := &UniverseData{Process: process}
	u.OrdersID = Must(hwm.NewIntHWM(
		Must(types.NewColumn("id")),
		Must(types.ParseTable("shop.orders")),
		append(common, hwm.WithValue(int64(42)))...,
	))
	u.EventsDay = Must(hwm.NewDateHWM(
		Must(types.ParseColumn("day|region=eu")),
		Must(types.ParseTable("logs.events")),
		append(common, hwm.WithValue(civil.Date{Year: 2024, Month: time.February, Day: 28}))...,
	))
	u.UsersUpdated = Must(hwm.NewDateTimeHWM(
		Must(types.NewColumn("updated_at")),
		Must(types.ParseTable("crm.users@postgres://db:5432")),
		common...,
	))
	u.Landing = Must(hwm.NewFileListHWM(
		Must(types.ParseRemoteFolder("/landing@ftp://files.example.com")),
		append(common, hwm.WithValue([]string{"2024/03/01/a.csv", "/landing/2024/03/01/b.csv"}))...,
	))
	return u
}

// LoadUniverse saves the fixture HWMs into s
func LoadUniverse(t testing.TB, s store.Store) *UniverseData {
	t.Helper()

	u := NewUniverse(t)
	for _, h := range u.All() {
		if err := s.Save(h); err != nil {
			t.Fatalf("failed to save %s: %v", h.QualifiedName(), err)
		}
	}
	return u
}

// TempFileStore opens a file store named "hwm"+ext in a temporary directory
func TempFileStore(t testing.TB, ext string) *store.FileStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hwm"+ext)
	s, err := store.NewFileStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Must panics when err is not nil. Fixtures are built from constants, so an error is a bug in the fixture.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// AssertQualifiedNames fails t when items do not have exactly the wanted qualified names, in order
func AssertQualifiedNames(t testing.TB, items []hwm.HWM, want ...string) {
	t.Helper()

	got := make([]string, len(items))
	for i, h := range items {
		got[i] = h.QualifiedName()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("qualified names mismatch (-want +got):\n%s", diff)
	}
}

// AssertSameHWM fails t when got and want differ in scope or value
func AssertSameHWM(t testing.TB, got, want hwm.HWM) {
	t.Helper()

	if got == nil || want == nil {
		if got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
		return
	}
	if !got.Equal(want) {
		t.Errorf("HWM mismatch:\n got  %s = %q\n want %s = %q",
			got.QualifiedName(), got.SerializeValue(), want.QualifiedName(), want.SerializeValue())
	}
}

func sortByQualifiedName(items []hwm.HWM) {
	sort.Slice(items, func(i, j int) bool { return items[i].QualifiedName() < items[j].QualifiedName() })
}
