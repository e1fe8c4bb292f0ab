package option

import (
	"io"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

type (
	// File is the on-disk form of a Table.
	// Unset keys leave the table untouched.
	File struct {
		ProgName   string `yaml:"progname,omitempty"`
		Driver     string `yaml:"driver,omitempty"`
		TempPrefix string `yaml:"temp_prefix,omitempty"`

		OptimizationLevel *int `yaml:"optimization_level,omitempty"`

		DebugInfo         *bool `yaml:"debug_info,omitempty"`
		DumpInitialTree   *bool `yaml:"dump_initial_tree,omitempty"`
		DumpLoweredTree   *bool `yaml:"dump_lowered_tree,omitempty"`
		DumpGeneratedCode *bool `yaml:"dump_generated_code,omitempty"`
		DumpSummary       *bool `yaml:"dump_summary,omitempty"`
		SelfCheckGC       *bool `yaml:"selfcheck_gc,omitempty"`
		KeepIntermediates *bool `yaml:"keep_intermediates,omitempty"`
		DumpEverything    *bool `yaml:"dump_everything,omitempty"`
	}
)

func Decode(r io.Reader) (*File, error) {
	var f File

	d := yaml.NewDecoder(r)
	d.KnownFields(true)

	err := d.Decode(&f)
	if err == io.EOF {
		return &f, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode options")
	}

	return &f, nil
}

func (f *File) Apply(t *Table) {
	strs := []struct {
		o Str
		v string
	}{
		{ProgName, f.ProgName},
		{Driver, f.Driver},
		{TempPrefix, f.TempPrefix},
	}

	for _, s := range strs {
		if s.v != "" {
			t.str[s.o] = s.v
		}
	}

	if f.OptimizationLevel != nil {
		t.ints[OptimizationLevel] = *f.OptimizationLevel
	}

	bools := []struct {
		o Bool
		v *bool
	}{
		{DebugInfo, f.DebugInfo},
		{DumpInitialTree, f.DumpInitialTree},
		{DumpLoweredTree, f.DumpLoweredTree},
		{DumpGeneratedCode, f.DumpGeneratedCode},
		{DumpSummary, f.DumpSummary},
		{SelfCheckGC, f.SelfCheckGC},
		{KeepIntermediates, f.KeepIntermediates},
		{DumpEverything, f.DumpEverything},
	}

	for _, b := range bools {
		if b.v != nil {
			t.bools[b.o] = *b.v
		}
	}
}
