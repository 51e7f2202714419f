package parser

import (
	"strings"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"gopkg.in/yaml.v3"
)

type yamlLoader struct{}

func (yamlLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func (yamlLoader) Load(content []byte) (*analysis.Result, error) {
	var res analysis.Result
	if err := yaml.Unmarshal(content, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
