package hwm

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFromLegacy(t *testing.T) {
	modified := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name      string
		legacy    LegacyHWM
		wantType  HWM
		wantValue string
		wantQN    string
	}{
		{
			name: "int",
			legacy: LegacyHWM{
				HWMName: "id", ProcessName: "loader@etl-host", DatasetQualifiedName: "mydb.mytable@rnd-dwh",
				Value: "42", ValueType: "int", ModifiedTime: float64(modified.Unix()),
			},
			wantType:  IntHWM{},
			wantValue: "42",
			wantQN:    "id#mydb.mytable@rnd-dwh#loader@etl-host",
		},
		{
			name: "timestamp",
			legacy: LegacyHWM{
				HWMName: "ts", ProcessName: "loader@etl-host", DatasetQualifiedName: "mydb.mytable",
				Value: "2021-12-01T04:20:33", ValueType: "timestamp",
			},
			wantType:  DateTimeHWM{},
			wantValue: "2021-12-01T04:20:33Z",
			wantQN:    "ts#mydb.mytable#loader@etl-host",
		},
		{
			name: "empty date",
			legacy: LegacyHWM{
				HWMName: "day", ProcessName: "loader@etl-host", DatasetQualifiedName: "mydb.mytable",
				ValueType: "date",
			},
			wantType:  DateHWM{},
			wantValue: "null",
			wantQN:    "day#mydb.mytable#loader@etl-host",
		},
		{
			name: "downloaded files",
			legacy: LegacyHWM{
				HWMName: "downloaded_files", ProcessName: "loader@etl-host", DatasetQualifiedName: "/data@ftp://host",
				Value: "b.csv\na.csv",
			},
			wantType:  FileListHWM{},
			wantValue: "a.csv\nb.csv",
			wantQN:    "file_list#/data@ftp://host#loader@etl-host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := FromLegacy(tt.legacy)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantValue, h.SerializeValue()); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
			if h.QualifiedName() != tt.wantQN {
				t.Errorf("qualified name: got %q, want %q", h.QualifiedName(), tt.wantQN)
			}
			wantKind, _ := KeyFor(tt.wantType)
			gotKind, _ := KeyFor(h)
			if gotKind != wantKind {
				t.Errorf("got %T, want %T", h, tt.wantType)
			}

			back, err := ToLegacy(h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			again, err := FromLegacy(back)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !again.Equal(h) {
				t.Errorf("legacy round trip changed the hwm")
			}
		})
	}

	t.Run("modified time", func(t *testing.T) {
		h, err := FromLegacy(tests[0].legacy)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !h.ModifiedTime().Equal(modified) {
			t.Errorf("got %v, want %v", h.ModifiedTime(), modified)
		}
	})

	t.Run("unsupported value type", func(t *testing.T) {
		for _, valueType := range []string{"float", "string", ""} {
			l := LegacyHWM{HWMName: "x", ProcessName: "p", DatasetQualifiedName: "a.b", Value: "1", ValueType: valueType}
			if _, err := FromLegacy(l); !errors.Is(err, ErrUnknownType) {
				t.Errorf("type %q: expected ErrUnknownType, got %v", valueType, err)
			}
		}
	})
}

func TestToLegacy(t *testing.T) {
	h, err := NewIntHWM(testColumn(t, "id"), testTable(t, "mydb.mytable"),
		WithValue(5), WithProcess(testProcess(t)), WithModifiedTime(time.Unix(1700000000, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ToLegacy(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := LegacyHWM{
		HWMName:              "id",
		ProcessName:          "loader@etl-host",
		DatasetQualifiedName: "mydb.mytable",
		Value:                "5",
		ValueType:            "int",
		ModifiedTime:         1700000000,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("legacy mismatch (-want +got):\n%s", diff)
	}
}
