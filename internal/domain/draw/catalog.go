package draw

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Prizes []Prize `yaml:"prizes"`
}

// ParsePrizeTable decodes a yaml catalog and validates it.
func ParsePrizeTable(b []byte) (*PrizeTable, error) {
	var file catalogFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("cannot decode prize catalog: %w", err)
	}

	return NewPrizeTable(file.Prizes)
}

func LoadPrizeTable(path string) (*PrizeTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read prize catalog %s: %w", path, err)
	}

	return ParsePrizeTable(b)
}
