package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/hwmstore/internal/validation"
)

// Column identifies a table column, optionally narrowed to a partition.
// Partition is kept in its canonical "key=value/key=value" form so that
// Column stays comparable.
type Column struct {
	Name      string
	Partition string
}

// NewColumn builds a column, partition values keep the order they are passed in
func NewColumn(name string, partition ...PartitionValue) (Column, error) {
	name, err := validation.Name("column name", name, partitionForbidden)
	if err != nil {
		return Column{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	p := Partition(partition)
	for _, pv := range p {
		if _, err := ParsePartitionValue(pv.String()); err != nil {
			return Column{}, err
		}
	}
	if err := p.validate(); err != nil {
		return Column{}, err
	}

	return Column{Name: name, Partition: p.String()}, nil
}

// ParseColumn parses "name" or "name|key=value/key=value"
func ParseColumn(s string) (Column, error) {
	name, partition, _ := strings.Cut(s, "|")
	p, err := ParsePartition(partition)
	if err != nil {
		return Column{}, err
	}
	return NewColumn(name, p...)
}

// PartitionValues returns the parsed partition
func (c Column) PartitionValues() Partition {
	p, _ := ParsePartition(c.Partition)
	return p
}

// String returns the column name
func (c Column) String() string {
	return c.Name
}

// QualifiedName returns "name" or "name|key=value/..." for partitioned columns
func (c Column) QualifiedName() string {
	if c.Partition != "" {
		return c.Name + "|" + c.Partition
	}
	return c.Name
}

// Serialize implements Entity
func (c Column) Serialize() map[string]any {
	return map[string]any{
		"name":      c.Name,
		"partition": c.Partition,
	}
}

// DeserializeColumn is the inverse of Column.Serialize.
// Partition may also be given as a map, in which case keys are sorted.
func DeserializeColumn(rec map[string]any) (Column, error) {
	name, err := stringField(rec, "name", true)
	if err != nil {
		return Column{}, err
	}

	switch raw := rec["partition"].(type) {
	case nil:
		return NewColumn(name)
	case string:
		p, err := ParsePartition(raw)
		if err != nil {
			return Column{}, err
		}
		return NewColumn(name, p...)
	case map[string]any:
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		p := make(Partition, 0, len(keys))
		for _, k := range keys {
			p = append(p, PartitionValue{Key: k, Value: fmt.Sprint(raw[k])})
		}
		return NewColumn(name, p...)
	default:
		return Column{}, fmt.Errorf("%w: unsupported partition %T", ErrInvalidIdentity, raw)
	}
}
