package types

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arthur-debert/hwmstore/internal/validation"
)

const processForbidden = "@#"

// Process identifies the program which owns an HWM.
// Task and Dag are optional scheduler coordinates (e.g. an Airflow task and DAG).
type Process struct {
	Name string
	Host string
	Task string
	Dag  string
}

var (
	defaultProcess     Process
	defaultProcessOnce sync.Once
)

// DefaultProcess returns the "unspecified" process: current executable name on the current host.
// It is computed once.
func DefaultProcess() Process {
	defaultProcessOnce.Do(func() {
		name := "unknown"
		if len(os.Args) > 0 && os.Args[0] != "" {
			name = filepath.Base(os.Args[0])
		}

		host, err := os.Hostname()
		if err != nil {
			host = "localhost"
		}
		if host, err = validation.Host(host); err != nil {
			host = "localhost"
		}

		defaultProcess = Process{
			Name: strings.NewReplacer("@", "_", "#", "_").Replace(name),
			Host: host,
		}
	})
	return defaultProcess
}

// NewProcess builds a process, empty name or host fall back to DefaultProcess values
func NewProcess(name, host string) (Process, error) {
	return Process{Name: name, Host: host}.Validate()
}

// WithTask returns a copy of p bound to a scheduler task
func (p Process) WithTask(dag, task string) (Process, error) {
	p.Dag = dag
	p.Task = task
	return p.Validate()
}

// Validate normalizes p, filling defaults and checking every field
func (p Process) Validate() (Process, error) {
	var err error

	if strings.TrimSpace(p.Name) == "" {
		p.Name = DefaultProcess().Name
	}
	if p.Name, err = validation.Name("process name", p.Name, processForbidden); err != nil {
		return Process{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	if strings.TrimSpace(p.Host) == "" {
		p.Host = DefaultProcess().Host
	}
	if p.Host, err = validation.Host(p.Host); err != nil {
		return Process{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	p.Task = strings.TrimSpace(p.Task)
	p.Dag = strings.TrimSpace(p.Dag)
	if strings.ContainsAny(p.Task+p.Dag, processForbidden) {
		return Process{}, fmt.Errorf("%w: task and dag cannot contain symbols @ #", ErrInvalidIdentity)
	}

	return p, nil
}

// String returns the process name
func (p Process) String() string {
	return p.Name
}

// QualifiedName returns "dag.task.name@host", skipping empty scheduler coordinates
func (p Process) QualifiedName() string {
	var parts []string
	for _, part := range []string{p.Dag, p.Task, p.Name} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ".") + "@" + p.Host
}

// Serialize implements Entity
func (p Process) Serialize() map[string]any {
	return map[string]any{
		"name": p.Name,
		"host": p.Host,
		"task": p.Task,
		"dag":  p.Dag,
	}
}

// DeserializeProcess is the inverse of Process.Serialize
func DeserializeProcess(rec map[string]any) (Process, error) {
	var p Process
	fields := []struct {
		key      string
		dst      *string
		required bool
	}{
		{"name", &p.Name, true},
		{"host", &p.Host, true},
		{"task", &p.Task, false},
		{"dag", &p.Dag, false},
	}

	for _, f := range fields {
		v, err := stringField(rec, f.key, f.required)
		if err != nil {
			return Process{}, err
		}
		*f.dst = v
	}

	return p.Validate()
}
