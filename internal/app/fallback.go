package app

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"luxe_residences/internal/domain"
)

//go:embed fallback.yaml
var fallbackYAML []byte

var fallback = mustLoadFallback()

func mustLoadFallback() []domain.Residence {
	rs, err := DecodeResidencesYAML(bytes.NewReader(fallbackYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded fallback residences: %v", err))
	}
	return rs
}

// FallbackResidences returns a fresh copy of the sample data set.
func FallbackResidences() []domain.Residence {
	return cloneResidences(fallback)
}

// DecodeResidencesYAML reads a YAML sequence of residences and rejects
// entries that could not be listed.
func DecodeResidencesYAML(r io.Reader) ([]domain.Residence, error) {
	var out []domain.Residence
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode residences: %w", err)
	}
	seen := make(map[string]struct{}, len(out))
	for i, rs := range out {
		if !rs.Valid() {
			return nil, fmt.Errorf("residence #%d (%q) is invalid", i, rs.ID)
		}
		if _, dup := seen[rs.ID]; dup {
			return nil, fmt.Errorf("duplicate residence id %q", rs.ID)
		}
		seen[rs.ID] = struct{}{}
	}
	return out, nil
}

func cloneResidences(in []domain.Residence) []domain.Residence {
	out := make([]domain.Residence, len(in))
	for i, r := range in {
		out[i] = r
		if r.SubImages != nil {
			out[i].SubImages = append([]string(nil), r.SubImages...)
		}
	}
	return out
}
