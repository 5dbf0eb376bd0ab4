package mcp

import (
	"context"
	"os"
	"time"

	"deepread/internal/logging"
)

// WatchParent cancels the server when the parent process dies, so a
// disconnected editor does not leave zombie MCP processes behind.
//
// It must NOT read from stdin: the SDK's StdioTransport owns stdin
// exclusively, and stealing bytes here would corrupt the JSON-RPC
// stream. Parent death is detected by polling the parent PID instead.
func WatchParent(ctx context.Context, cancel context.CancelFunc) {
	ppid := os.Getppid()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process died, shutting down", "was_pid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
