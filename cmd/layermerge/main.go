// Command layermerge composites image layers into one file.
//
//	layermerge base.png overlay.png,10,20,50,1 /TARGET:out/result.png
//
// Layer tokens naming missing files are ignored. Without a target, or when
// the target's directory does not exist, nothing is written.
package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/setanarut/layermerge"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()
	layermerge.SetLogger(logger)

	if err := run(os.Args[1:]); err != nil {
		logger.Error("merge failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(args []string) error {
	items, err := layermerge.Parse(args)
	if err != nil {
		return err
	}
	_, err = layermerge.Merge(items, layermerge.DefaultOptions())
	return err
}
