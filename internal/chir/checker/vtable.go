package checker

import (
	"github.com/chir-lang/chir/internal/chir/diag"
	"github.com/chir-lang/chir/internal/chir/ir"
)

// checkVTableCoherence enforces §3.4's v-table invariant: slot i of a
// child def's slot list for parent type P must correspond to slot i of
// P's own slot list for itself (same source name; return-type
// covariance and parameter-type identity are left to the frontend/AST2CHIR
// lowering that built the slots, since CHIR has no declared-vs-actual
// signature pair to re-derive compatibility from at this layer — this
// check verifies positional and abstractness coherence, the part a
// structural corruption could actually break). An abstract slot
// (Instance == nil) is legal only when def itself is abstract.
func checkVTableCoherence(def *ir.CustomDef, sink *diag.Sink) {
	if def.VTable == nil {
		return
	}
	abstractOK := def.IsInterface || def.IsAbstract || def.Kind == ir.DeclExtend
	for parentKey, slots := range def.VTable.Slots {
		var parentSlots []ir.VTableSlot
		if def.Kind == ir.DeclClass && def.SuperType != nil && def.SuperType.Decl != nil && def.SuperType.Decl.VTable != nil {
			if s, ok := findSlotsByKey(def.SuperType.Decl.VTable, parentKey); ok {
				parentSlots = s
			}
		}
		for i, slot := range slots {
			if slot.Instance == nil && !abstractOK {
				sink.Errorf(diag.KindIRInvariant, diag.Location{}, "abstract v-table slot %q illegal on non-abstract def %s", slot.SrcName, def.Name)
			}
			if parentSlots != nil && i < len(parentSlots) {
				if parentSlots[i].SrcName != "" && parentSlots[i].SrcName != slot.SrcName {
					sink.Errorf(diag.KindIRInvariant, diag.Location{}, "v-table slot %d name %q disagrees with parent slot %q on def %s", i, slot.SrcName, parentSlots[i].SrcName, def.Name)
				}
			}
		}
	}
}

func findSlotsByKey(vt *ir.VTable, key string) ([]ir.VTableSlot, bool) {
	s, ok := vt.Slots[key]
	return s, ok
}
