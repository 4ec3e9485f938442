package engine

import (
	"fmt"
	"strconv"
)

// checkCellShape compares the cells a component allocated in this render
// with those of its alternate. Both the number of cells and the dynamic type
// of each seed value must match; a changed shape means UseState was called
// conditionally or in a different order.
//
// A fiber without an alternate has no previous shape and always passes.
func checkCellShape(prev, cur []*cell, hadAlternate bool) error {
	if !hadAlternate {
		return nil
	}
	if len(prev) != len(cur) {
		return &PassError{
			Code:    ErrCodeHookOrder,
			Message: fmt.Sprintf("component used %d state cells, previous render used %d", len(cur), len(prev)),
			Details: map[string]string{
				"previous": strconv.Itoa(len(prev)),
				"current":  strconv.Itoa(len(cur)),
			},
		}
	}
	for i := range cur {
		if prev[i].typ != cur[i].typ {
			return &PassError{
				Code:    ErrCodeHookOrder,
				Message: fmt.Sprintf("state cell %d changed type from %s to %s", i, prev[i].typ, cur[i].typ),
				Details: map[string]string{
					"cell":     strconv.Itoa(i),
					"previous": prev[i].typ,
					"current":  cur[i].typ,
				},
			}
		}
	}
	return nil
}
