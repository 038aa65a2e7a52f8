// Package resolver implements the schema resolution pipeline: merging a
// category's schema with its ancestor chain, and composing several
// independently resolved schemas into one deduplicated set.
package resolver

import (
	"fmt"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/schemastore"
)

// DatatypeLookup resolves a property name to its wiki-global datatype.
// The registry implements it; a nil lookup means every missing datatype
// falls back to Page directly.
type DatatypeLookup interface {
	DatatypeOf(name string) (models.Datatype, bool)
}

// Inheritance resolves one category against its full ancestor chain.
// Resolution is a pure function of the store contents; nothing is cached
// between calls.
type Inheritance struct {
	store schemastore.Provider
	types DatatypeLookup
}

// NewInheritance creates an inheritance resolver. types may be nil.
func NewInheritance(store schemastore.Provider, types DatatypeLookup) *Inheritance {
	return &Inheritance{store: store, types: types}
}

// Resolve walks the parent chain of the named category and merges the
// schemas from the root ancestor downward, so a descendant's declaration
// overrides an ancestor's declaration of the same name. A property
// declared optional at one level and required at another is silently
// promoted to required, with a warning recorded on the result.
func (r *Inheritance) Resolve(name string) (*models.EffectiveSchema, error) {
	chain, err := r.chain(name)
	if err != nil {
		return nil, err
	}

	props := newPropMerger()
	subs := newSubMerger()

	// Root ancestor first, requested category last: descendants override.
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		for _, p := range s.Properties {
			props.add(s.Category, r.normalize(p))
		}
		for _, sub := range s.Subobjects {
			subs.add(s.Category, r.normalizeSub(sub))
		}
	}

	var ancestors []string
	for i := len(chain) - 1; i >= 1; i-- {
		ancestors = append(ancestors, chain[i].Category)
	}

	mergedSubs, subWarnings := subs.result()
	return &models.EffectiveSchema{
		Category:   chain[0].Category,
		Ancestors:  ancestors,
		Properties: props.props,
		Subobjects: mergedSubs,
		Warnings:   append(props.warnings, subWarnings...),
	}, nil
}

// chain returns the schemas from the requested category up to the root
// ancestor (requested first). It fails with ErrUnknownCategory when any
// link of the chain has no schema, and with ErrCyclicInheritance when a
// category reappears in its own ancestor chain.
func (r *Inheritance) chain(name string) ([]*models.CategorySchema, error) {
	var chain []*models.CategorySchema
	seen := make(map[string]struct{})

	for cur := name; cur != ""; {
		if _, ok := seen[cur]; ok {
			return nil, fmt.Errorf("resolve %s: %s reappears in its ancestor chain: %w", name, cur, apperr.ErrCyclicInheritance)
		}
		seen[cur] = struct{}{}

		s, err := r.store.GetSchema(cur)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", cur, apperr.ErrUnknownCategory)
		}
		chain = append(chain, s)
		cur = s.Parent
	}
	return chain, nil
}

// normalize fills in a property's datatype: declared type if known,
// otherwise the global registry entry, otherwise Page.
func (r *Inheritance) normalize(p models.PropertyDefinition) models.PropertyDefinition {
	if p.Datatype == "" {
		if r.types != nil {
			if dt, ok := r.types.DatatypeOf(p.Name); ok {
				p.Datatype = dt
				return p
			}
		}
		p.Datatype = models.DatatypePage
		return p
	}
	p.Datatype = models.ParseDatatype(string(p.Datatype))
	return p
}

func (r *Inheritance) normalizeSub(s models.SubobjectDefinition) models.SubobjectDefinition {
	props := make([]models.PropertyDefinition, len(s.Properties))
	for i, p := range s.Properties {
		props[i] = r.normalize(p)
	}
	s.Properties = props
	return s
}
