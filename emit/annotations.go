// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package emit

import (
	"fmt"

	"github.com/panda-vm/pandasm/item"
	"github.com/panda-vm/pandasm/metadata"
)

// annotationClassify reports which of a class's four annotation lists a
// metadata.Annotation belongs in, based on the annotation record's own
// bool attributes (spec §4.G phase 7 "classified runtime/source/type/
// runtime-type based on its record's metadata").
func (e *emitter) annotationClassify(ann *metadata.Annotation) (runtime, isType bool, err error) {
	rec, ok := e.prog.Records[ann.RecordName]
	if !ok {
		return false, false, fmt.Errorf("emit: annotation %q: unknown annotation record", ann.RecordName)
	}
	runtime = rec.Metadata.Has("runtime_annotation") || rec.Metadata.Has("runtime_type_annotation")
	isType = rec.Metadata.Has("type_annotation") || rec.Metadata.Has("runtime_type_annotation")
	return runtime, isType, nil
}

func appendToList(lists *item.ClassData, runtime, isType bool, ai *item.Item) {
	switch {
	case runtime && isType:
		lists.RuntimeTypeAnnotations = append(lists.RuntimeTypeAnnotations, ai)
	case runtime:
		lists.RuntimeAnnotations = append(lists.RuntimeAnnotations, ai)
	case isType:
		lists.TypeAnnotations = append(lists.TypeAnnotations, ai)
	default:
		lists.Annotations = append(lists.Annotations, ai)
	}
}

// buildAnnotation lowers one parsed metadata.Annotation into an
// item.AnnotationItem, recursively lowering array-valued elements into
// ArrayValueItems (spec §4.G phase 7 "build an AnnotationItem per
// annotation with element tuples").
func (e *emitter) buildAnnotation(ann *metadata.Annotation) (*item.Item, error) {
	desc := ann.RecordName
	cls, ok := e.classItems[desc]
	if !ok {
		cls = e.c.GetOrCreateClass(desc, true)
	}
	ai := e.c.NewAnnotation(cls)
	for _, el := range ann.Elements {
		nameItem := e.c.GetOrCreateString(el.Name)
		valueItem, tag, err := e.lowerElement(el)
		if err != nil {
			return nil, err
		}
		ai.Annot.Elements = append(ai.Annot.Elements, item.AnnotationElement{Name: nameItem, Value: valueItem, Tag: tag})
	}
	return ai, nil
}

func (e *emitter) lowerElement(el metadata.Element) (*item.Item, byte, error) {
	if el.Type == metadata.VArray {
		// spec §4.G phase 7: "the array-type char if the element is an
		// array" — taken here as the component's own tag char, since
		// spec.md does not define a distinct array-tag alphabet and the
		// scalar tag already disambiguates the stored element kind.
		tag := el.ComponentType.Char()
		var elems []*item.Item
		for _, v := range el.Values {
			sv, err := e.lowerScalar(el.ComponentType, v)
			if err != nil {
				return nil, 0, err
			}
			elems = append(elems, sv)
		}
		av := e.c.NewArrayValue(item.ValueKind(el.ComponentType), elems)
		return av, tag, nil
	}
	if len(el.Values) == 0 {
		return nil, 0, fmt.Errorf("emit: annotation element %q has no value", el.Name)
	}
	sv, err := e.lowerScalar(el.Type, el.Values[0])
	if err != nil {
		return nil, 0, err
	}
	return sv, el.Type.Char(), nil
}

func (e *emitter) lowerScalar(kind metadata.ValueKind, v metadata.Value) (*item.Item, error) {
	d := item.ScalarValueData{Kind: item.ValueKind(kind)}
	switch kind {
	case metadata.VF32:
		d.Bits32 = float32Bits(v.Float32)
	case metadata.VF64:
		d.Bits64 = float64Bits(v.Float64)
	case metadata.VString, metadata.VStringNullptr:
		d.Ref = e.c.GetOrCreateString(v.Str)
	case metadata.VRecord, metadata.VEnum:
		cls, ok := e.classItems[v.Str]
		if !ok {
			return nil, fmt.Errorf("emit: annotation value references unknown record %q", v.Str)
		}
		if err := e.checkRecordOrEnum(kind, v.Str); err != nil {
			return nil, err
		}
		d.Ref = cls
	case metadata.VMethod:
		mi, ok := e.lookupMethodByName(v.Str)
		if !ok {
			return nil, fmt.Errorf("emit: annotation value references unknown method %q", v.Str)
		}
		d.Ref = mi
	default:
		d.Integer = v.Integral
	}
	return e.c.GetOrCreateScalarValue(d), nil
}

// checkRecordOrEnum implements the RECORD/ENUM branch of CheckValue
// (spec §4.G "Value checking": "for RECORD/ANNOTATION/ENUM, the named
// record exists and has the right metadata flag").
func (e *emitter) checkRecordOrEnum(kind metadata.ValueKind, recordName string) error {
	rec, ok := e.prog.Records[recordName]
	if !ok {
		return fmt.Errorf("emit: CheckValue: unknown record %q", recordName)
	}
	if kind == metadata.VEnum && !rec.Metadata.Has("enum") {
		return fmt.Errorf("emit: CheckValue: record %q used as ENUM value is not marked enum", recordName)
	}
	return nil
}

func (e *emitter) lookupMethodByName(name string) (*item.Item, bool) {
	for mangled, fn := range e.prog.Functions {
		if fn.Name == name {
			mi, ok := e.methodItems[mangled]
			return mi, ok
		}
	}
	return nil, false
}

// dedupAllAnnotations runs item.ItemDeduper pass 2 (spec §4.H) over
// every annotation list this emitter populated: class-level (all four
// presence classes), field-level, and method-level, plus every
// per-parameter annotation list of each method's runtime and
// non-runtime ParamAnnotations items.
func (e *emitter) dedupAllAnnotations(d *item.ItemDeduper) error {
	dedupList := func(list []*item.Item) error {
		for i, a := range list {
			survivor, err := d.DedupAnnotation(a)
			if err != nil {
				return err
			}
			list[i] = survivor
		}
		return nil
	}

	for _, it := range append(append([]*item.Item{}, e.c.Foreign...), e.c.Implemented...) {
		switch it.Kind {
		case item.KindClass:
			for _, list := range [][]*item.Item{it.Class.RuntimeAnnotations, it.Class.Annotations, it.Class.RuntimeTypeAnnotations, it.Class.TypeAnnotations} {
				if err := dedupList(list); err != nil {
					return err
				}
			}
			for _, fi := range it.Class.Fields {
				if err := dedupList(fi.Field.RuntimeAnnotations); err != nil {
					return err
				}
				if err := dedupList(fi.Field.Annotations); err != nil {
					return err
				}
			}
			for _, mi := range it.Class.Methods {
				if err := dedupList(mi.Method.RuntimeAnnotations); err != nil {
					return err
				}
				if err := dedupList(mi.Method.Annotations); err != nil {
					return err
				}
				for _, pa := range []*item.Item{mi.Method.RuntimeParamAnnotations, mi.Method.ParamAnnotations} {
					if pa == nil {
						continue
					}
					for _, perParam := range pa.ParamAnn.PerParam {
						if err := dedupList(perParam); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}

func (e *emitter) phase7RecordAnnotations() error {
	for _, name := range sortedRecordNames(e.prog) {
		rec := e.prog.Records[name]
		cls, ok := e.classItems[name]
		if !ok || cls.Class == nil {
			continue
		}
		if err := e.attachAnnotations(rec.Metadata, cls.Class); err != nil {
			return err
		}
		for i, f := range rec.Fields {
			if f.Metadata == nil {
				continue
			}
			fi := cls.Fields[i]
			if err := e.attachFieldAnnotations(f.Metadata, fi); err != nil {
				return err
			}
			if v, ok := f.Metadata.Value("value"); ok {
				sv := e.c.GetOrCreateScalarValue(item.ScalarValueData{Kind: item.ValString, Ref: e.c.GetOrCreateString(v)})
				fi.Field.Value = sv
			}
		}
	}
	return nil
}

func (e *emitter) attachAnnotations(m *metadata.Metadata, cls *item.ClassData) error {
	for i := range m.Annotations {
		ann := &m.Annotations[i]
		runtime, isType, err := e.annotationClassify(ann)
		if err != nil {
			return err
		}
		ai, err := e.buildAnnotation(ann)
		if err != nil {
			return err
		}
		appendToList(cls, runtime, isType, ai)
	}
	return nil
}

func (e *emitter) attachFieldAnnotations(m *metadata.Metadata, fi *item.Item) error {
	for i := range m.Annotations {
		ann := &m.Annotations[i]
		runtime, _, err := e.annotationClassify(ann)
		if err != nil {
			return err
		}
		ai, err := e.buildAnnotation(ann)
		if err != nil {
			return err
		}
		if runtime {
			fi.Field.RuntimeAnnotations = append(fi.Field.RuntimeAnnotations, ai)
		} else {
			fi.Field.Annotations = append(fi.Field.Annotations, ai)
		}
	}
	return nil
}
