// Package tuple provides the immutable, fixed-degree result values of a
// join. Every element is an Opt so an outer join can leave one side absent.
package tuple
