// Command codegraph indexes a project's source tree into a vector store
// collection and serves nearest-neighbor search over it.
package main

import "github.com/indexgraph/codegraph/internal/cli"

func main() {
	cli.Execute()
}
