// Command allotctl runs maintenance tasks against the allotment database.
package main

import (
	"os"

	"github.com/yigit/allotment/internal/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("allotctl failed")
		os.Exit(1)
	}
}
