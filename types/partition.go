package types

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/hwmstore/internal/validation"
)

// partitionForbidden lists characters that cannot appear in partition keys or values
const partitionForbidden = "|/=@#"

// PartitionValue represents a key=value pair of a partitioned column
type PartitionValue struct {
	Key   string
	Value string
}

// String returns the string representation of a key=value pair
func (pv PartitionValue) String() string {
	return fmt.Sprintf("%s=%s", pv.Key, pv.Value)
}

// ParsePartitionValue parses a string like "year=2021" into a PartitionValue
func ParsePartitionValue(s string) (PartitionValue, error) {
	if strings.Count(s, "=") != 1 {
		return PartitionValue{}, fmt.Errorf("%w: partition should be passed in format 'name=value', got %q", ErrInvalidIdentity, s)
	}

	parts := strings.SplitN(s, "=", 2)
	key, err := validation.Name("partition name", parts[0], partitionForbidden)
	if err != nil {
		return PartitionValue{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	value, err := validation.Name("partition value", parts[1], partitionForbidden)
	if err != nil {
		return PartitionValue{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	return PartitionValue{Key: key, Value: value}, nil
}

// Partition is an ordered list of partition values.
// Format: "key1=value1/key2=value2"
type Partition []PartitionValue

// String returns the canonical string representation of a partition
func (p Partition) String() string {
	parts := make([]string, 0, len(p))
	for _, pv := range p {
		parts = append(parts, pv.String())
	}
	return strings.Join(parts, "/")
}

// ParsePartition parses a partition string. Leading and trailing slashes are ignored,
// an empty string yields an empty partition.
func ParsePartition(s string) (Partition, error) {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return Partition{}, nil
	}

	var result Partition
	for _, item := range strings.Split(s, "/") {
		pv, err := ParsePartitionValue(item)
		if err != nil {
			return nil, err
		}
		result = append(result, pv)
	}

	return result, result.validate()
}

func (p Partition) validate() error {
	seen := make(map[string]bool, len(p))
	for _, pv := range p {
		if seen[pv.Key] {
			return fmt.Errorf("%w: passed multiple values for %s partition column", ErrInvalidIdentity, pv.Key)
		}
		seen[pv.Key] = true
	}
	return nil
}
