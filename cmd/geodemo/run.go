package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/geometry"
)

var runCmd = &cobra.Command{
	Use:   "run <scene.yaml>",
	Short: "Build a scene, apply its captures and print the captured attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := LoadScene(args[0])
		if err != nil {
			return err
		}
		return runScene(cmd.OutOrStdout(), sc)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// Report is the YAML document printed by the run command.
type Report struct {
	Captures   []CaptureResult   `yaml:"captures"`
	Components []ComponentReport `yaml:"components"`
}

// ComponentReport lists the captured attributes stored on one component.
type ComponentReport struct {
	Kind       string            `yaml:"kind"`
	Attributes []AttributeReport `yaml:"attributes,omitempty"`
}

// AttributeReport holds the values of one stored attribute.
type AttributeReport struct {
	ID     string `yaml:"id"`
	Domain string `yaml:"domain"`
	Type   string `yaml:"type"`
	Values []any  `yaml:"values"`
}

func runScene(w io.Writer, sc *Scene) error {
	s, err := sc.Build()
	if err != nil {
		return err
	}
	defer s.Release()

	results, err := sc.Apply(s)
	if err != nil {
		return err
	}
	s.RemoveAnonymousAttributes()

	report := Report{Captures: results}
	var ids []attribute.ID
	for _, c := range sc.Captures {
		id := attribute.NewName(c.ID)
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	for _, k := range s.GatherComponentKinds(false, false) {
		report.Components = append(report.Components, componentReport(s.Get(k), ids))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

func componentReport(c geometry.Component, ids []attribute.ID) ComponentReport {
	r := ComponentReport{Kind: c.Kind().String()}
	attrs, ok := c.Attributes()
	if !ok {
		return r
	}
	for _, id := range ids {
		reader, ok := attrs.Lookup(id)
		if !ok {
			continue
		}
		values := make([]any, reader.VArray.Size())
		for i := range values {
			values[i] = reader.VArray.Get(i)
		}
		r.Attributes = append(r.Attributes, AttributeReport{
			ID:     id.String(),
			Domain: reader.Domain.String(),
			Type:   reader.VArray.Kind().String(),
			Values: values,
		})
	}
	return r
}
