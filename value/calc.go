package value

import (
	"github.com/teranos/tally/policy"
	"github.com/teranos/tally/provenance"
)

// AsCalculation stamps a calc:<name> provenance node onto v, used by the
// engine after a registered calculation function returns. The node records
// the calculation name and maps each input's record id to the dependency
// name it was bound under, preserving how to read the lineage later.
//
// When an explicit call-scope policy is supplied it overrides the value's
// own policy: the result re-quantizes and the node hash becomes sensitive
// to it.
func (v Value) AsCalculation(name string, inputs []Value, inputNames []string, pol *policy.Policy) Value {
	parents := make([]*provenance.Record, len(inputs))
	meta := map[string]string{"calculation": name}
	for i, in := range inputs {
		parents[i] = in.prov
		if in.prov != nil && i < len(inputNames) {
			meta["input_"+in.prov.ID()] = inputNames[i]
		}
	}
	if v.unit != nil {
		meta["unit"] = v.unit.String()
	}

	out := v
	if pol != nil {
		out.pol = pol
		if out.amount != nil {
			q := pol.Quantize(*out.amount)
			out.amount = &q
		}
	}
	out.prov = provenance.NewNode("calc:"+name, parents, out.pol, meta)
	return out
}
