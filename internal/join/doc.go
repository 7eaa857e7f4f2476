// Package join compiles and executes multi-table joins.
//
// A join is declared as an anchor table plus an ordered list of stages,
// each introducing one more table. The Compiler validates the stages
// against table metadata and produces a Plan; CreateN binds the plan to
// row sources and a tuple constructor, producing a Join.
//
// Validation order (first failure wins):
//  1. Arity: one table identifier per stage plus the anchor.
//  2. References: links only reach tables joined earlier, and every table
//     and column is described.
//  3. Types: both columns of a link support its operator.
//  4. Structure: CROSS stages carry no links, a link's new side is the
//     stage's table, and no table is joined twice.
//
// Execution is lazy and single-threaded. Each range over Join.Seq is an
// independent realization with its own indexes; results stream out as
// soon as a combination matches.
//
// Example:
//
//	j, err := join.Create2(compiler,
//	    []stage.Stage{stage.InnerJoin(orders, stage.Equal(userID, orderUserID))},
//	    tuple.Of2[User, Order], users, orders)
//	if err != nil {
//	    return err
//	}
//	for t, err := range j.Seq(ctx) {
//	    ...
//	}
package join
