package dsl

import "strconv"

// nodeID is the default id of a node: chain name and index.
func nodeID(chain string, index int) string {
	return chain + "#" + strconv.Itoa(index)
}
