package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/parley/pkg/adapters/mcp"
)

// ServeMCP exposes an engine as MCP tools, on stdio when addr is empty and
// over SSE on addr otherwise.
func ServeMCP(ctx context.Context, env *Env, addr string) error {
	srv := mcp.NewServer(env.NewEngine(), mcp.WithLogger(env.Logger))
	if addr == "" {
		return srv.ServeStdio()
	}
	return srv.ServeSSE(ctx, addr, fmt.Sprintf("http://%s", hostPort(addr)))
}

// hostPort turns a listen address such as ":8081" into one a client can dial.
func hostPort(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
