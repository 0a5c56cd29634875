// Package job runs a search end to end: it reads a point file, selects the
// marked points, searches for the best arrangement and writes it back with
// the parameter column restored.
package job

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/torus/internal/errors"
	"github.com/copyleftdev/torus/internal/pointcloud"
)

// Job describes one search run.
type Job struct {
	// Input is the point file to read.
	Input string `yaml:"input"`
	// Output is where the best arrangement is written. Empty skips writing.
	Output string `yaml:"output,omitempty"`
	// Param selects the marked points. Nil means every row is a point and
	// there is no parameter column.
	Param *pointcloud.Column `yaml:"param,omitempty"`
	// History records one evaluation per visited configuration.
	History bool `yaml:"history,omitempty"`
}

// Validate checks that the job names an input.
func (j *Job) Validate() error {
	if j.Input == "" {
		return errors.New("input is required").WithComponent("job").WithOperation("validate").WithKind(errors.Invalid)
	}
	if j.Param != nil && j.Param.Index < 0 {
		return errors.Errorf("param index must not be negative, got %d", j.Param.Index).
			WithComponent("job").WithOperation("validate").WithKind(errors.Invalid)
	}
	return nil
}

// LoadFile reads a YAML job description. Unknown fields are rejected.
func LoadFile(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read job file").WithComponent("job").WithOperation("load").WithKind(errors.IO)
	}

	var j Job
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&j); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML").WithComponent("job").WithOperation("load").WithKind(errors.Invalid)
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return &j, nil
}

func (j *Job) String() string {
	if j.Param == nil {
		return fmt.Sprintf("%s -> %s", j.Input, j.Output)
	}
	return fmt.Sprintf("%s[%d=%d] -> %s", j.Input, j.Param.Index, j.Param.Value, j.Output)
}
