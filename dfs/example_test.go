package dfs_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/pathrec/core"
	"github.com/katalvlaran/pathrec/dfs"
)

// ExampleTopologicalSort demonstrates computing the recording order of a
// cell with a shared consumer D. Graph:
//
//	  A
//	 / \
//	B   C
//	 \ /
//	  D
func ExampleTopologicalSort() {
	g := core.NewGraph()
	for _, e := range [][2]string{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}} {
		_, _ = g.AddEdge(e[0], e[1])
	}

	order, err := dfs.TopologicalSort(g)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(strings.Join(order, " "))

	// Output:
	// A C B D
}
