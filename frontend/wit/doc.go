// Package wit converts component-model WIT type descriptions into the
// type descriptors the shape subsystem encodes.
//
// WIT enums, variants, options, and results all become enum
// declarations; owned resource handles become resource declarations with
// a u32 handle representation. Conversions are memoized per WIT type
// definition so repeated references share one declaration identity, which
// is what makes them share one tag id in the generated tables.
package wit
