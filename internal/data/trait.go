package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TraitTemplate maps one two-digit gene slot of an entity's DNA to a named
// cosmetic trait. Slot 0 covers the two least significant digits.
type TraitTemplate struct {
	Slot     int      `yaml:"slot"`
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
}

// TraitValue is one decoded trait of a concrete DNA value.
type TraitValue struct {
	Name    string
	Gene    int // raw two-digit gene, 0-99
	Variant string
}

type traitListFile struct {
	Traits []TraitTemplate `yaml:"traits"`
}

// TraitTable holds all trait templates indexed by gene slot.
type TraitTable struct {
	templates map[int]*TraitTemplate
	maxSlot   int
}

// LoadTraitTable loads trait templates from a YAML file.
func LoadTraitTable(path string) (*TraitTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trait_list: %w", err)
	}
	var f traitListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse trait_list: %w", err)
	}
	t := &TraitTable{templates: make(map[int]*TraitTemplate, len(f.Traits))}
	for i := range f.Traits {
		tr := &f.Traits[i]
		if tr.Slot < 0 {
			return nil, fmt.Errorf("trait %q: negative slot %d", tr.Name, tr.Slot)
		}
		if len(tr.Variants) == 0 {
			return nil, fmt.Errorf("trait %q: no variants", tr.Name)
		}
		if _, dup := t.templates[tr.Slot]; dup {
			return nil, fmt.Errorf("trait %q: duplicate slot %d", tr.Name, tr.Slot)
		}
		t.templates[tr.Slot] = tr
		if tr.Slot > t.maxSlot {
			t.maxSlot = tr.Slot
		}
	}
	return t, nil
}

func (t *TraitTable) Count() int {
	return len(t.templates)
}

func (t *TraitTable) Get(slot int) *TraitTemplate {
	return t.templates[slot]
}

// Decode splits dna into two-digit genes and resolves each configured slot
// to a variant. Pure read surface: decoding never feeds back into the DNA.
func (t *TraitTable) Decode(dna uint64) []TraitValue {
	out := make([]TraitValue, 0, len(t.templates))
	for slot := 0; slot <= t.maxSlot; slot++ {
		tmpl, ok := t.templates[slot]
		if !ok {
			continue
		}
		gene := geneAt(dna, slot)
		out = append(out, TraitValue{
			Name:    tmpl.Name,
			Gene:    gene,
			Variant: tmpl.Variants[gene%len(tmpl.Variants)],
		})
	}
	return out
}

// geneAt extracts the two-digit gene at the given slot (slot 0 = least
// significant pair).
func geneAt(dna uint64, slot int) int {
	for i := 0; i < slot; i++ {
		dna /= 100
	}
	return int(dna % 100)
}
