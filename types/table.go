package types

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/hwmstore/internal/validation"
)

const tableForbidden = ".@#"

// Table identifies a database table. Instance is optional.
type Table struct {
	Name     string
	DB       string
	Instance Location
}

// NewTable builds a table. If db is empty, name may be passed as "db.name".
func NewTable(name, db string, instance Location) (Table, error) {
	name = strings.TrimSpace(name)
	if db == "" && strings.Contains(name, ".") {
		if strings.Count(name, ".") != 1 {
			return Table{}, fmt.Errorf("%w: table name should be passed in `schema.name` format, got %q", ErrInvalidIdentity, name)
		}
		db, name, _ = strings.Cut(name, ".")
	}

	name, err := validation.Name("table name", name, tableForbidden)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	db, err = validation.Name("database name", db, tableForbidden)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	if instance != "" {
		if instance, err = ParseLocation(string(instance)); err != nil {
			return Table{}, err
		}
	}

	return Table{Name: name, DB: db, Instance: instance}, nil
}

// ParseTable parses "db.name" or "db.name@instance"
func ParseTable(s string) (Table, error) {
	name, instance, _ := strings.Cut(s, "@")
	return NewTable(name, "", Location(instance))
}

// FullName returns "db.name"
func (t Table) FullName() string {
	return t.DB + "." + t.Name
}

// String implements fmt.Stringer
func (t Table) String() string {
	return t.FullName()
}

// QualifiedName returns "db.name@instance", or "db.name" without an instance
func (t Table) QualifiedName() string {
	if t.Instance == "" {
		return t.FullName()
	}
	return t.FullName() + "@" + string(t.Instance)
}

// Serialize implements Entity
func (t Table) Serialize() map[string]any {
	return map[string]any{
		"name":     t.FullName(),
		"instance": string(t.Instance),
	}
}

// DeserializeTable is the inverse of Table.Serialize
func DeserializeTable(rec map[string]any) (Table, error) {
	name, err := stringField(rec, "name", true)
	if err != nil {
		return Table{}, err
	}
	db, err := stringField(rec, "db", false)
	if err != nil {
		return Table{}, err
	}
	instance, err := stringField(rec, "instance", false)
	if err != nil {
		return Table{}, err
	}
	return NewTable(name, db, Location(instance))
}
