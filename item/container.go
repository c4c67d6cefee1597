// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package item

import (
	"fmt"
	"sort"

	"github.com/panda-vm/pandasm/types"
)

// Container owns every item created during emission (spec §4.F "Item
// container"): two vectors (implemented, foreign, in creation order),
// the four dedup-by-construction maps, the string intern map, the
// index section, and the line-number-program index. Grounded on
// tools/ruse/rpkg/encode.go's encoder struct, which keeps exactly this
// shape of per-kind offset/interning maps plus ordered slices; adapted
// here from rpkg's flat section-offset maps into item-pointer maps
// since this format's items cross-reference each other directly
// rather than through a single flat symbol table.
type Container struct {
	Implemented []*Item
	Foreign     []*Item

	strings    map[string]*Item
	primitives map[types.Kind]*Item
	classes    map[string]*Item // descriptor -> KindClass/KindForeignClass
	protos     map[string]*Item // shorty+reftypes -> KindProto
	values     map[string]*Item // kind+payload -> KindScalarValue
	litArrays  map[string]*Item // id -> KindLiteralArray

	Index   *IndexSection
	LNPIdx  *LineNumberProgramIndex
	End     *Item
}

// New returns an empty Container.
func New() *Container {
	return &Container{
		strings:    map[string]*Item{},
		primitives: map[types.Kind]*Item{},
		classes:    map[string]*Item{},
		protos:     map[string]*Item{},
		values:     map[string]*Item{},
		litArrays:  map[string]*Item{},
		Index:      NewIndexSection(),
		LNPIdx:     NewLineNumberProgramIndex(),
	}
}

func (c *Container) addImplemented(it *Item) *Item {
	it.NeedsEmit = true
	it.OrderIndex = len(c.Implemented) + len(c.Foreign)
	c.Implemented = append(c.Implemented, it)
	return it
}

func (c *Container) addForeign(it *Item) *Item {
	it.NeedsEmit = true
	it.OrderIndex = len(c.Implemented) + len(c.Foreign)
	c.Foreign = append(c.Foreign, it)
	return it
}

// GetOrCreatePrimitive returns the single PrimitiveTypeItem for k,
// creating it on first use (spec §4.G phase 1 "Create one
// PrimitiveTypeItem per known kind").
func (c *Container) GetOrCreatePrimitive(k types.Kind) *Item {
	if it, ok := c.primitives[k]; ok {
		return it
	}
	it := c.addForeign(&Item{Kind: KindPrimitiveType, Align: 1, Primitive: &PrimitiveTypeData{Kind: k}})
	c.primitives[k] = it
	return it
}

// GetOrCreateString interns s, returning the existing StringItem if
// one already exists for identical text (spec §4.F "Interning...
// StringItem, a name collision with a registered class name returns
// the class's name_item").
func (c *Container) GetOrCreateString(s string) *Item {
	if it, ok := c.strings[s]; ok {
		return it
	}
	it := c.addImplemented(&Item{Kind: KindString, Align: 1, Str: &StringData{Value: s}})
	c.strings[s] = it
	return it
}

// NameItemForClass registers name as both a StringItem and the class's
// own name reference, so that later string interning of the identical
// text returns this same item (spec §4.F's class-name/string-item
// collision rule).
func (c *Container) NameItemForClass(name string) *Item {
	return c.GetOrCreateString(name)
}

// protoKey builds the Proto interning key: the shorty string (spec
// §4.F "primitive signature chars") followed by the reference-type
// descriptors in order, which is sufficient because Go map lookups
// compare the whole string and the shorty already disambiguates arity
// and primitive-vs-reference shape per slot.
func protoKey(shorty string, refTypes []*Item) string {
	k := shorty
	for _, t := range refTypes {
		k += "|" + classDescriptorOf(t)
	}
	return k
}

func classDescriptorOf(it *Item) string {
	if it == nil {
		return ""
	}
	if it.Class != nil {
		return it.Class.Descriptor
	}
	return ""
}

// GetOrCreateProto interns a ProtoItem by (returnType, paramTypes)
// (spec §4.F "Proto interning key... equality compares both fields").
func (c *Container) GetOrCreateProto(shorty string, returnType *Item, paramTypes []*Item) *Item {
	var refTypes []*Item
	if returnType != nil && returnType.Kind != KindPrimitiveType {
		refTypes = append(refTypes, returnType)
	}
	for _, p := range paramTypes {
		if p.Kind != KindPrimitiveType {
			refTypes = append(refTypes, p)
		}
	}
	key := protoKey(shorty, refTypes)
	if it, ok := c.protos[key]; ok {
		return it
	}
	it := c.addImplemented(&Item{
		Kind:      KindProto,
		Align:     4,
		IndexType: IndexProto,
		Proto:     &ProtoData{Shorty: shorty, ReturnType: returnType, ParamTypes: paramTypes},
	})
	c.protos[key] = it
	return it
}

// GetOrCreateClass returns the class or foreign-class item for
// descriptor, creating one if this is its first mention. Exactly one
// of ClassItem/ForeignClassItem exists per name (spec invariant 1).
func (c *Container) GetOrCreateClass(descriptor string, foreign bool) *Item {
	if it, ok := c.classes[descriptor]; ok {
		return it
	}
	kind := KindClass
	if foreign {
		kind = KindForeignClass
	}
	it := &Item{Kind: kind, Align: 4, IndexType: IndexClass, Class: &ClassData{Descriptor: descriptor}}
	if foreign {
		c.addForeign(it)
	} else {
		c.addImplemented(it)
	}
	c.classes[descriptor] = it
	return it
}

// scalarValueKey builds the Value interning key (spec §4.F "Value
// interning. Integer and long scalars by value; f32 and f64 by the bit
// pattern... id-valued scalars by the referenced item pointer").
func scalarValueKey(d *ScalarValueData) string {
	switch d.Kind {
	case ValF32:
		return fmt.Sprintf("f32:%08x", d.Bits32)
	case ValF64:
		return fmt.Sprintf("f64:%016x", d.Bits64)
	case ValString, ValRecord, ValMethod, ValEnum, ValAnnotation:
		return fmt.Sprintf("ref:%d:%p", d.Kind, d.Ref)
	default:
		return fmt.Sprintf("int:%d:%x", d.Kind, d.Integer)
	}
}

// GetOrCreateScalarValue interns a ScalarValueItem by the rule above.
func (c *Container) GetOrCreateScalarValue(d ScalarValueData) *Item {
	key := scalarValueKey(&d)
	if it, ok := c.values[key]; ok {
		return it
	}
	cp := d
	it := c.addImplemented(&Item{Kind: KindScalarValue, Align: 4, Scalar: &cp})
	c.values[key] = it
	return it
}

// NewArrayValue always creates a fresh ArrayValueItem: array-valued
// annotation elements are deduped later, by serialized content, in
// ItemDeduper pass 2 (spec §4.H), not interned up front like scalars.
func (c *Container) NewArrayValue(componentKind ValueKind, elements []*Item) *Item {
	return c.addImplemented(&Item{
		Kind:      KindArrayValue,
		Align:     4,
		IndexType: IndexNone,
		ArrayVal:  &ArrayValueData{ComponentKind: componentKind, Elements: elements},
	})
}

// GetOrCreateLiteralArray interns a LiteralArrayItem by id (the
// program's literal arrays are themselves already deduplicated by id
// at the Program level, see program.Program.GetOrCreateLiteralArray;
// this mirrors that at the item layer for safety against repeat
// emitter calls on the same id).
func (c *Container) GetOrCreateLiteralArray(id string) (*Item, bool) {
	if it, ok := c.litArrays[id]; ok {
		return it, true
	}
	it := c.addImplemented(&Item{Kind: KindLiteralArray, Align: 4, LitArray: &LiteralArrayData{ID: id}})
	c.litArrays[id] = it
	return it, false
}

// NewField always creates a fresh Field/ForeignField item; fields are
// not interned across records (spec §3 "Field").
func (c *Container) NewField(foreign bool, owner *Item) *Item {
	kind := KindField
	if foreign {
		kind = KindForeignField
	}
	it := &Item{Kind: kind, Align: 4, IndexType: IndexField, Field: &FieldData{Owner: owner}}
	if foreign {
		return c.addForeign(it)
	}
	return c.addImplemented(it)
}

// NewMethod always creates a fresh Method/ForeignMethod item.
func (c *Container) NewMethod(foreign bool, owner *Item) *Item {
	kind := KindMethod
	if foreign {
		kind = KindForeignMethod
	}
	it := &Item{Kind: kind, Align: 4, IndexType: IndexMethod, Method: &MethodData{Owner: owner}}
	if foreign {
		return c.addForeign(it)
	}
	return c.addImplemented(it)
}

// NewCode creates a fresh CodeItem owned by a method.
func (c *Container) NewCode() *Item {
	return c.addImplemented(&Item{Kind: KindCode, Align: 4, Code: &CodeData{}})
}

// NewDebugInfo creates a fresh DebugInfoItem.
func (c *Container) NewDebugInfo() *Item {
	return c.addImplemented(&Item{Kind: KindDebugInfo, Align: 4, DebugInfo: &DebugInfoData{}})
}

// NewLineNumberProgram creates a fresh LineNumberProgramItem; these
// are heavily dedup-shared (spec §4.H pass 1a), so callers should
// route every program through the deduper before keeping a reference.
func (c *Container) NewLineNumberProgram() *Item {
	it := &Item{Kind: KindLineNumberProgram, Align: 1, IndexType: IndexLineNumberProg, LNP: &LineNumberProgramData{}}
	return c.addImplemented(it)
}

// NewAnnotation creates a fresh AnnotationItem.
func (c *Container) NewAnnotation(class *Item) *Item {
	return c.addImplemented(&Item{Kind: KindAnnotation, Align: 4, Annot: &AnnotationData{Class: class}})
}

// NewParamAnnotations creates a fresh ParamAnnotationsItem.
func (c *Container) NewParamAnnotations(perParam [][]*Item) *Item {
	return c.addImplemented(&Item{Kind: KindParamAnnotations, Align: 4, ParamAnn: &ParamAnnotationsData{PerParam: perParam}})
}

// Classes returns every class/foreign-class item, for callers that
// need a stable pass over all records (e.g. the class-index table
// builder, spec §4.J step 1).
func (c *Container) Classes() []*Item {
	out := make([]*Item, 0, len(c.classes))
	for _, it := range c.classes {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// LiteralArrays returns every literal-array item ordered by ascending
// id length, then lexicographically within equal length (spec §6
// "Literal-array index ordering... a stable total order across
// platforms").
func (c *Container) LiteralArrays() []*Item {
	out := make([]*Item, 0, len(c.litArrays))
	for _, it := range c.litArrays {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LitArray.ID, out[j].LitArray.ID
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return out
}

// AllItems returns foreign items followed by implemented items, the
// traversal order spec §4.I step 2 and §4.J step 4-5 both specify
// ("foreign first, then implemented, in order").
func (c *Container) AllItems() []*Item {
	out := make([]*Item, 0, len(c.Foreign)+len(c.Implemented)+1)
	out = append(out, c.Foreign...)
	out = append(out, c.Implemented...)
	if c.End != nil {
		out = append(out, c.End)
	}
	return out
}

// NewEnd creates the sentinel EndItem (spec §3 "EndItem").
func (c *Container) NewEnd() *Item {
	c.End = &Item{Kind: KindEnd, Align: 1}
	return c.End
}
