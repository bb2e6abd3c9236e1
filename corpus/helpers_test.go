package corpus

import (
	"github.com/viant/langprobe/passage"
	"github.com/viant/langprobe/segment"
)

func passageConfig(granularity segment.Granularity) passage.Config {
	return passage.Config{Granularity: granularity}
}
