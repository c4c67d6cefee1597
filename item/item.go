// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package item implements the binary-graph node model spec §3 ("Item
// (binary graph node)") and §4.F describe: every item kind the
// container can hold, the interning/dedup keys each kind is looked up
// by, and the layout/index bookkeeping fields every item carries
// regardless of kind.
//
// Rather than one Go interface with twenty implementing structs (which
// spec §9's design note explicitly steers away from — "this is a
// tagged union, not a class hierarchy"), Item is one struct tagged by
// Kind with a single non-nil payload field selected by that tag,
// mirroring the teacher's own sum-type idiom in
// tools/ruse/ast (binary.Expression-shaped tagged structs) and spec
// §9's own instruction to avoid inheritance here.
package item

import "github.com/panda-vm/pandasm/types"

// Kind is the closed set of concrete item kinds (spec §3).
type Kind int

const (
	KindPrimitiveType Kind = iota
	KindString
	KindClass
	KindForeignClass
	KindField
	KindForeignField
	KindMethod
	KindForeignMethod
	KindProto
	KindCode
	KindDebugInfo
	KindLineNumberProgram
	KindAnnotation
	KindScalarValue
	KindArrayValue
	KindLiteralArray
	KindMethodHandle
	KindParamAnnotations
	KindIndexHeader
	KindEnd
)

func (k Kind) String() string {
	names := [...]string{
		"PrimitiveType", "String", "Class", "ForeignClass", "Field",
		"ForeignField", "Method", "ForeignMethod", "Proto", "Code",
		"DebugInfo", "LineNumberProgram", "Annotation", "ScalarValue",
		"ArrayValue", "LiteralArray", "MethodHandle", "ParamAnnotations",
		"IndexHeader", "End",
	}
	if int(k) >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "Kind(?)"
}

// IndexType classifies which (if any) of the index section's
// per-scope sub-indexes an item is eligible to appear in (spec §3,
// §4.I). LineNumberProg items use a separate, file-wide 32-bit index
// instead of a scoped 16-bit one (spec §4.I "because programs are
// dedup-shared broadly"), so it is listed here for completeness but
// never drives IndexHeader sub-index assignment.
type IndexType int

const (
	IndexNone IndexType = iota
	IndexClass
	IndexMethod
	IndexField
	IndexProto
	IndexLineNumberProg
)

// Item is one node of the binary graph (spec §3 "Item"). Exactly one
// of the payload fields below is non-nil, selected by Kind.
type Item struct {
	Kind Kind

	Align     uint32
	NeedsEmit bool
	Offset    uint32
	OrderIndex int
	RefCount  int
	IndexType IndexType

	// Header/InHeaderIdx are filled in by IndexSection.Close
	// (spec §4.I step 5): which IndexHeaderItem this item's references
	// resolve against, and its 16-bit position within that header's
	// appropriate sub-index.
	Header       *Item
	InHeaderIdx  uint16

	Primitive *PrimitiveTypeData
	Str       *StringData
	Class     *ClassData
	Field     *FieldData
	Method    *MethodData
	Proto     *ProtoData
	Code      *CodeData
	DebugInfo *DebugInfoData
	LNP       *LineNumberProgramData
	Annot     *AnnotationData
	Scalar    *ScalarValueData
	ArrayVal  *ArrayValueData
	LitArray  *LiteralArrayData
	MethodHdl *MethodHandleData
	ParamAnn  *ParamAnnotationsData
	IdxHeader *IndexHeaderData
}

// PrimitiveTypeData backs a KindPrimitiveType item: one per primitive
// TypeId (spec §3).
type PrimitiveTypeData struct {
	Kind types.Kind
}

// StringData backs a KindString item (spec §3 "StringItem (interned)").
type StringData struct {
	Value string
}

// ClassData backs both KindClass and KindForeignClass items; the
// foreign variant leaves Fields/Methods/Body fields empty since a
// foreign class is a reference, not a definition (spec §3 "ClassItem
// (owned)/ForeignClassItem (reference only)").
type ClassData struct {
	Descriptor string
	Language   string
	AccessFlags uint32
	SourceFile *Item // KindString, optional

	Base       *Item // KindClass or KindForeignClass, nil for Object-rooted
	Interfaces []*Item

	Fields  []*Item // KindField or KindForeignField
	Methods []*Item // KindMethod or KindForeignMethod

	RuntimeAnnotations     []*Item
	Annotations            []*Item
	RuntimeTypeAnnotations []*Item
	TypeAnnotations        []*Item
}

// FieldData backs both KindField and KindForeignField items.
type FieldData struct {
	Owner       *Item // KindClass or KindForeignClass
	Name        *Item // KindString
	Type        *Item // KindPrimitiveType, KindClass or KindForeignClass
	AccessFlags uint32
	Value       *Item // KindScalarValue, optional constant value

	RuntimeAnnotations []*Item
	Annotations        []*Item
}

// ProtoData backs a KindProto item, interned by (return type, param
// types) via Shorty+RefTypes (spec §4.F "Proto interning key").
type ProtoData struct {
	Shorty      string
	ReturnType  *Item
	ParamTypes  []*Item
}

// MethodParam is one parameter slot of a MethodData, kept distinct
// from ProtoData's flat type list so debug-info parameter names can be
// attached without perturbing proto interning (spec §3 "MethodItem
// (owns... MethodParamItems").
type MethodParam struct {
	Type *Item
	Name string
}

// MethodData backs both KindMethod and KindForeignMethod items.
type MethodData struct {
	Owner       *Item // KindClass or KindForeignClass
	Name        *Item // KindString
	Proto       *Item // KindProto
	Params      []MethodParam
	AccessFlags uint32

	Code      *Item // KindCode, nil for foreign/abstract/native
	DebugInfo *Item // KindDebugInfo

	RuntimeAnnotations []*Item
	Annotations        []*Item
	RuntimeParamAnnotations *Item // KindParamAnnotations
	ParamAnnotations        *Item

	// IndexDeps accumulates every method/field/class referenced
	// by this method's instructions and catch blocks (spec §4.G phase
	// 8 "call method.add_index_dependency"), consumed by the index
	// section builder (§4.I step 2).
	IndexDeps []*Item
}

// CatchEntry is one resolved handler row of a CodeData's try block
// (spec §4.K "build_try_blocks").
type CatchEntry struct {
	ClassItem   *Item // nil for .catchall
	HandlerPC   uint32
	HandlerSize uint32
}

// TryBlock is one grouped (try_begin,try_end) range with its ordered
// catch handlers (spec §4.K step 3).
type TryBlock struct {
	StartPC uint32
	Length  uint32
	Catches []CatchEntry
}

// CodeData backs a KindCode item (spec §3 "CodeItem"). ByteLength is
// filled during emitter phase 8, from instruction shape alone via
// isa.Opcode.EncodedLength (see isa.go's EncodedWidth doc comment for
// why this can be known before layout); Bytecode itself — the actual
// resolved-index bytes — is filled later, in phase 12, once layout has
// assigned every dependency's offset/in-header index. The two are
// always the same length once both are set; layout sizing consults
// ByteLength so it never needs phase 12 to have already run.
type CodeData struct {
	RegsNum   uint32
	ArgsNum   uint32
	InstrNum  uint32
	ByteLength uint32
	Bytecode  []byte
	TryBlocks []TryBlock
}

// LocalRecord is one non-parameter local-variable debug record (spec
// §4.K "EmitStartLocal").
type LocalRecord struct {
	Name     string
	Type     *Item
	Register int
	StartPC  int
	EndPC    int
}

// DebugInfoData backs a KindDebugInfo item (spec §3 "DebugInfoItem").
type DebugInfoData struct {
	LineProgram *Item // KindLineNumberProgram
	ParamNames  []*Item
	Locals      []LocalRecord
	InitialLine int
	ConstantPool []byte
}

// LineProgramOp is one opcode of a line-number program's stream (spec
// §4.K); for a special opcode, Op carries the already-combined byte
// and the remaining fields stay zero.
type LineProgramOp struct {
	Op      byte
	PCDelta int
	LineDelta int
	Arg     string // EmitSetFile/EmitSetSourceCode payload
	Local   *LocalRecord
}

// LineNumberProgramData backs a KindLineNumberProgram item (spec §3
// "LineNumberProgramItem (opcode stream)").
type LineNumberProgramData struct {
	Ops []LineProgramOp
}

// AnnotationElement is one (name, value, tag) tuple of an annotation
// (spec §3 "AnnotationItem").
type AnnotationElement struct {
	Name  *Item // KindString
	Value *Item // KindScalarValue or KindArrayValue
	Tag   byte
}

// AnnotationData backs a KindAnnotation item.
type AnnotationData struct {
	Class    *Item // KindClass or KindForeignClass: the annotation's own type
	Elements []AnnotationElement
}

// ValueKind mirrors the seventeen scalar kinds of metadata.ValueKind,
// with the same ordinals; metadata's Array discriminator has no
// counterpart here (spec §3 "Value (annotation element)"). It is
// duplicated here rather than
// imported so the binary layer's serialization switch does not need to
// reach back into the metadata package's builder-state concerns.
type ValueKind int

const (
	ValU1 ValueKind = iota
	ValI8
	ValU8
	ValI16
	ValU16
	ValI32
	ValU32
	ValI64
	ValU64
	ValF32
	ValF64
	ValString
	ValStringNullptr
	ValRecord
	ValMethod
	ValEnum
	ValAnnotation
)

// ScalarValueData backs a KindScalarValue item (spec §4.F "Value
// interning... f32/f64 by the bit pattern... id-valued scalars by the
// referenced item pointer").
type ScalarValueData struct {
	Kind    ValueKind
	Integer uint64 // integral kinds share one 64-bit store, per spec §3
	Bits32  uint32 // f32 bit pattern
	Bits64  uint64 // f64 bit pattern
	Ref     *Item  // STRING/RECORD/METHOD/ENUM/ANNOTATION referent
}

// ArrayValueData backs a KindArrayValue item: an array-of-scalars
// annotation element tagged with its component kind (spec §3 "Value").
type ArrayValueData struct {
	ComponentKind ValueKind
	Elements      []*Item // each KindScalarValue
}

// LiteralArrayData backs a KindLiteralArray item.
type LiteralArrayData struct {
	ID       string
	Literals []LiteralValue
}

// LiteralValue is one bit-cast-ready literal element (spec §4.G phase
// 6 "bit-cast to u32/u64 as appropriate, or string-item pointers").
type LiteralValue struct {
	Tag    byte
	U32    uint32
	U64    uint64
	Str    *Item // KindString, for STRING/METHOD-name literals
	Nested []LiteralValue
}

// MethodHandleData backs a KindMethodHandle item. Spec.md gives this
// kind no construction phase in §4.G's emitter walk — no PANDASM
// source construct lowers to one — so it is modeled but never
// populated by the emitter.
type MethodHandleData struct {
	HandleKind uint32
	Target     *Item
}

// ParamAnnotationsData backs a KindParamAnnotations item: per-parameter
// annotation lists split into a runtime-visible and non-runtime
// presence class (spec §4.G phase 8 "one ParamAnnotationsItem per
// presence class").
type ParamAnnotationsData struct {
	PerParam [][]*Item // outer index = parameter index
}

// IndexHeaderData backs a KindIndexHeader item (spec §4.I).
type IndexHeaderData struct {
	StartOffset uint32
	EndOffset   uint32

	ClassIdx []*Item
	MethodIdx []*Item
	FieldIdx []*Item
	ProtoIdx []*Item
}
