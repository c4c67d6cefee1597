// Copyright 2024 The Panda Assembler Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package encoder

import (
	"fmt"

	"github.com/panda-vm/pandasm/item"
	"github.com/panda-vm/pandasm/program"
)

// BuildTryBlocks implements spec §4.K "build_try_blocks": groups a
// function's catch blocks by (try_begin_label, try_end_label), in
// first-encounter order, and resolves every label to its PC via
// labelPCs (already computed by LabelPCs over the same function).
// classOf resolves a CatchBlock's exception-record name to its class
// item; a .catchall block (empty ExceptionRecord) produces a nil
// class pointer (spec §4.K step 3 "A .catchall produces a null class
// pointer").
func BuildTryBlocks(fn *program.Function, labelPCs map[string]uint32, classOf func(name string) (*item.Item, error)) ([]item.TryBlock, error) {
	type key struct{ begin, end string }
	var order []key
	groups := map[key][]*program.CatchBlock{}

	for _, cb := range fn.CatchBlocks {
		k := key{cb.TryBeginLabel, cb.TryEndLabel}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], cb)
	}

	var out []item.TryBlock
	for _, k := range order {
		startPC, ok := labelPCs[k.begin]
		if !ok {
			return nil, fmt.Errorf("encoder: try block: undefined label %q", k.begin)
		}
		endPC, ok := labelPCs[k.end]
		if !ok {
			return nil, fmt.Errorf("encoder: try block: undefined label %q", k.end)
		}
		tb := item.TryBlock{StartPC: startPC, Length: endPC - startPC}
		for _, cb := range groups[k] {
			handlerPC, ok := labelPCs[cb.CatchBeginLabel]
			if !ok {
				return nil, fmt.Errorf("encoder: catch block: undefined label %q", cb.CatchBeginLabel)
			}
			catchEnd := cb.CatchEndLabel
			if catchEnd == "" {
				catchEnd = cb.CatchBeginLabel
			}
			handlerEndPC, ok := labelPCs[catchEnd]
			if !ok {
				return nil, fmt.Errorf("encoder: catch block: undefined label %q", catchEnd)
			}

			var classItem *item.Item
			if !cb.IsCatchAll() {
				var err error
				classItem, err = classOf(cb.ExceptionRecord)
				if err != nil {
					return nil, err
				}
			}
			tb.Catches = append(tb.Catches, item.CatchEntry{
				ClassItem:   classItem,
				HandlerPC:   handlerPC,
				HandlerSize: handlerEndPC - handlerPC,
			})
		}
		out = append(out, tb)
	}
	return out, nil
}
