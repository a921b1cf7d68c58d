// Command scenesync drives the Fate table widgets of a scene from the
// command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/containerd/log"

	"github.com/goliatone/go-scenesync"
)

func main() {
	ctx := context.Background()
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if scenesync.IsCancelled(err) {
			log.G(ctx).Debug("cancelled")
			return
		}
		fmt.Fprintf(os.Stderr, "scenesync: %v\n", err)
		os.Exit(1)
	}
}
