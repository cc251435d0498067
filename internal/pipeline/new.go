package pipeline

import (
	"github.com/nguyentantai21042004/itemflow/internal/config"
	"github.com/nguyentantai21042004/itemflow/internal/logger"
	"github.com/nguyentantai21042004/itemflow/internal/processor"
)

type implRunner struct {
	proc       processor.Processor[string]
	paths      config.PathsConfig
	extensions []string
	logger     logger.Logger
}

// New creates a new Runner instance
func New(proc processor.Processor[string], paths config.PathsConfig, extensions []string, log logger.Logger) Runner {
	return &implRunner{
		proc:       proc,
		paths:      paths,
		extensions: extensions,
		logger:     log,
	}
}
