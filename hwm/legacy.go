package hwm

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/arthur-debert/hwmstore/types"
)

// Legacy value types.
const (
	LegacyTypeInt       = "int"
	LegacyTypeDate      = "date"
	LegacyTypeDateTime  = "datetime"
	LegacyTypeTimestamp = "timestamp"
)

// LegacyHWM is the flat record written by the previous generation of HWM tooling.
type LegacyHWM struct {
	HWMName              string  `json:"hwmName" yaml:"hwmName"`
	ProcessName          string  `json:"processName" yaml:"processName"`
	DatasetQualifiedName string  `json:"datasetQualifiedName" yaml:"datasetQualifiedName"`
	Value                string  `json:"value" yaml:"value"`
	ValueType            string  `json:"type" yaml:"type"`
	Description          string  `json:"description,omitempty" yaml:"description,omitempty"`
	ModifiedTime         float64 `json:"modifiedTime" yaml:"modifiedTime"`
}

// FromLegacy converts a legacy record. Options are applied after the ones derived from l.
func FromLegacy(l LegacyHWM, opts ...Option) (HWM, error) {
	process, err := legacyProcess(l.ProcessName)
	if err != nil {
		return nil, err
	}

	base := []Option{WithProcess(process)}
	if l.ModifiedTime > 0 {
		sec, frac := math.Modf(l.ModifiedTime)
		base = append(base, WithModifiedTime(time.Unix(int64(sec), int64(frac*1e9)).UTC()))
	}
	opts = append(base, opts...)

	if l.HWMName == LegacyFileListName || l.HWMName == FileListName {
		folder, err := types.ParseRemoteFolder(l.DatasetQualifiedName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return asHWM(NewFileListHWM(folder, append(opts, WithValue(l.Value))...))
	}

	column, err := types.ParseColumn(l.HWMName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	table, err := types.ParseTable(l.DatasetQualifiedName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	value := l.Value
	if strings.TrimSpace(value) == "" {
		value = nullValue
	}
	opts = append(opts, WithValue(value))

	logger().Debug("converting legacy hwm", "name", l.HWMName, "type", l.ValueType)
	switch l.ValueType {
	case LegacyTypeInt:
		return asHWM(NewIntHWM(column, table, opts...))
	case LegacyTypeDate:
		return asHWM(NewDateHWM(column, table, opts...))
	case LegacyTypeDateTime, LegacyTypeTimestamp:
		return asHWM(NewDateTimeHWM(column, table, opts...))
	default:
		return nil, fmt.Errorf("%w: unsupported legacy value type %q", ErrUnknownType, l.ValueType)
	}
}

// ToLegacy converts h to the legacy record layout
func ToLegacy(h HWM) (LegacyHWM, error) {
	switch x := h.(type) {
	case IntHWM:
		return columnToLegacy(x, LegacyTypeInt), nil
	case DateHWM:
		return columnToLegacy(x, LegacyTypeDate), nil
	case DateTimeHWM:
		return columnToLegacy(x, LegacyTypeDateTime), nil
	case FileListHWM:
		return LegacyHWM{
			HWMName:              LegacyFileListName,
			ProcessName:          legacyProcessName(x.process),
			DatasetQualifiedName: x.source.QualifiedName(),
			Value:                x.SerializeValue(),
			ModifiedTime:         epoch(x.modified),
		}, nil
	default:
		return LegacyHWM{}, fmt.Errorf("%w: %T has no legacy layout", ErrUnregisteredType, h)
	}
}

func columnToLegacy[T ColumnValue](h ColumnHWM[T], valueType string) LegacyHWM {
	value := ""
	if h.set {
		value = h.SerializeValue()
	}
	return LegacyHWM{
		HWMName:              h.column.QualifiedName(),
		ProcessName:          legacyProcessName(h.process),
		DatasetQualifiedName: h.source.QualifiedName(),
		Value:                value,
		ValueType:            valueType,
		ModifiedTime:         epoch(h.modified),
	}
}

// legacyProcess accepts "name" or "name@host"
func legacyProcess(s string) (types.Process, error) {
	name, host, _ := strings.Cut(s, "@")
	p, err := types.NewProcess(name, host)
	if err != nil {
		return types.Process{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return p, nil
}

func legacyProcessName(p types.Process) string {
	return p.Name + "@" + p.Host
}

func epoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func asHWM[H HWM](h H, err error) (HWM, error) {
	if err != nil {
		return nil, err
	}
	return h, nil
}
