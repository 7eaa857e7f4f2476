// Package stream implements lazy, typed operation pipelines.
//
// A Pipeline is an immutable list of Actions (skip, limit, filter, map,
// sorted, distinct, peek, flat_map). Realizing a pipeline against a source
// sequence yields a new lazy sequence; nothing runs until it is ranged over.
//
// The same generic code serves object elements and the unboxed int32,
// int64 and float64 specializations (NewInt, NewLong, NewDouble).
//
// Example:
//
//	p := stream.New[string]().Filter(func(s string) bool { return s != "" })
//	p, err := p.Limit(10)
//	if err != nil {
//	    return err
//	}
//	for s, err := range p.Realize(stream.FromSlice(names)) {
//	    ...
//	}
package stream
