package parser

import (
	"encoding/json"
	"strings"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
)

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonLoader) Load(content []byte) (*analysis.Result, error) {
	var res analysis.Result
	if err := json.Unmarshal(content, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
