// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"fmt"
	"os"

	"github.com/dalzilio/mdd"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Model is the description of a finite system read from a YAML file. States
// are vectors of length Size; transitions are given by groups of pairs
// sharing the same read and write positions.
//
//	name: counter
//	size: 1
//	initial:
//	  - [0]
//	groups:
//	  - name: inc
//	    read: [0]
//	    write: [0]
//	    pairs:
//	      - {src: [0], dst: [1]}
//	      - {src: [1], dst: [2]}
type Model struct {
	Name    string  `yaml:"name"`
	Size    int     `yaml:"size"`
	Bits    []int   `yaml:"bits,omitempty"`
	Initial [][]int `yaml:"initial"`
	Groups  []Group `yaml:"groups"`
}

// Group is a relation of the model.
type Group struct {
	Name  string `yaml:"name"`
	Read  []int  `yaml:"read"`
	Write []int  `yaml:"write"`
	Copy  []bool `yaml:"copy,omitempty"` // write positions that keep their value
	Pairs []Pair `yaml:"pairs"`
}

// Pair is one transition of a group, with the values read and written.
type Pair struct {
	Src []int `yaml:"src"`
	Dst []int `yaml:"dst"`
}

// loadModel reads and checks the model in file path.
func loadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading model")
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing model %s", path)
	}
	if m.Name == "" {
		m.Name = path
	}
	if err := m.validate(); err != nil {
		return nil, errors.Wrapf(err, "model %s", m.Name)
	}
	return &m, nil
}

func (m *Model) validate() error {
	if m.Size < 0 {
		return errors.Errorf("bad size %d", m.Size)
	}
	if len(m.Initial) == 0 {
		return errors.Errorf("no initial state")
	}
	for k, v := range m.Initial {
		if len(v) != m.Size {
			return errors.Errorf("initial state %d has length %d, expected %d", k, len(v), m.Size)
		}
	}
	for k, g := range m.Groups {
		if g.Name == "" {
			m.Groups[k].Name = fmt.Sprintf("g%d", k)
		}
		if g.Copy != nil && len(g.Copy) != len(g.Write) {
			return errors.Errorf("group %s: %d copy flags for %d write positions", m.Groups[k].Name, len(g.Copy), len(g.Write))
		}
		for j, p := range g.Pairs {
			if len(p.Src) != len(g.Read) || len(p.Dst) != len(g.Write) {
				return errors.Errorf("group %s: pair %d does not match the read and write positions", m.Groups[k].Name, j)
			}
		}
	}
	return nil
}

// build returns the initial states and the relations of m in domain d.
// Invariant violations in the library are reported as errors.
func (m *Model) build(d *mdd.Domain) (init *mdd.Set, rels []*mdd.Relation, err error) {
	defer recoverError(&err)
	init = d.NewSet()
	for _, v := range m.Initial {
		init.Add(v)
	}
	for _, g := range m.Groups {
		rel := d.NewRelation(g.Read, g.Write)
		for _, p := range g.Pairs {
			rel.AddCopy(p.Src, p.Dst, g.Copy)
		}
		rels = append(rels, rel)
	}
	return init, rels, nil
}

// recoverError turns a panic raised by the library into an error.
func recoverError(err *error) {
	if r := recover(); r != nil {
		e, ok := r.(error)
		if !ok {
			panic(r)
		}
		*err = e
	}
}
