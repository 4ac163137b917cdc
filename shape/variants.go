package shape

import (
	"github.com/wippyai/shape-tables/errors"
	"github.com/wippyai/shape-tables/layout"
	"github.com/wippyai/shape-tables/typedesc"
)

// variantRange is one variant's accumulated size and alignment. A range
// is unbounded when some field still depends on a type parameter; the
// accumulated values then cover only the concrete fields and must not be
// compared against other variants.
type variantRange struct {
	size         uint32
	align        uint32
	sizeBounded  bool
	alignBounded bool
}

// variantRanges computes the size/alignment range of every variant in
// declaration order. Parametric fields contribute nothing and mark the
// range unbounded.
func (c *Context) variantRanges(decl *typedesc.EnumDecl) ([]variantRange, error) {
	ranges := make([]variantRange, 0, len(decl.Variants))
	for _, v := range decl.Variants {
		r := variantRange{sizeBounded: true, alignBounded: true}
		for _, arg := range v.Args {
			if typedesc.HasParams(arg) {
				r.sizeBounded = false
				r.alignBounded = false
				continue
			}
			info, err := c.layout.Calculate(arg)
			if err != nil {
				return nil, err
			}
			r.size += info.Size
			r.align += info.Align
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// largestVariants returns the indices of the variants whose size and
// alignment upper-bound all others. Elimination only happens between two
// bounded ranges; an unbounded variant is never discarded because its
// true extent is unknown until monomorphization.
func largestVariants(ranges []variantRange) []int {
	candidates := make([]bool, len(ranges))
	for i := range candidates {
		candidates[i] = true
	}

	for i := range ranges {
		if !candidates[i] {
			continue
		}
		for j := range ranges {
			if i == j || !candidates[j] {
				continue
			}
			if !ranges[i].sizeBounded || !ranges[i].alignBounded ||
				!ranges[j].sizeBounded || !ranges[j].alignBounded {
				continue
			}
			if ranges[i].size >= ranges[j].size && ranges[i].align >= ranges[j].align {
				candidates[j] = false
			}
		}
	}

	var out []int
	for i, keep := range candidates {
		if keep {
			out = append(out, i)
		}
	}
	return out
}

// staticEnumSize computes the worst-case size and alignment of an enum
// over its dominant variant set, including the discriminant word when
// the enum has more than one variant. It is only valid for enums whose
// dominant variants are fully concrete; the caller checks for dynamic
// variants first and substitutes a zero placeholder.
func (c *Context) staticEnumSize(decl *typedesc.EnumDecl, dominant []int) (layout.Info, error) {
	var max layout.Info
	for _, idx := range dominant {
		if idx < 0 || idx >= len(decl.Variants) {
			return layout.Info{}, errors.Bug(errors.PhaseTables,
				"dominant variant index %d out of range for enum %s", idx, decl.Name)
		}
		tup := typedesc.Tuple(decl.Variants[idx].Args...)
		info, err := c.layout.Calculate(tup)
		if err != nil {
			return layout.Info{}, err
		}
		if info.Size > max.Size {
			max.Size = info.Size
		}
		if info.Align > max.Align {
			max.Align = info.Align
		}
	}
	if len(decl.Variants) > 1 {
		// The discriminant is prepended without padding; the consumer
		// expects this exact arithmetic.
		max.Size += c.spec.DiscriminantWidth()
		if c.spec.IntWidth > max.Align {
			max.Align = c.spec.IntWidth
		}
	}
	return max, nil
}

// isDynamic reports whether any variant of decl still carries a type
// parameter, in which case the enum's static extent is unknown.
func isDynamic(decl *typedesc.EnumDecl) bool {
	for _, v := range decl.Variants {
		for _, arg := range v.Args {
			if typedesc.HasParams(arg) {
				return true
			}
		}
	}
	return false
}
