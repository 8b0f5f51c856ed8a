package detection

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadClassNames reads an ordered class list from a YAML file. Three
// layouts are accepted: a bare sequence, a "names:" sequence, and the
// Ultralytics dense map form ("names: {0: lesion, 1: ...}"). The map form
// must cover every index from 0 to its length minus one, because the list
// position is the class index detections refer to.
func LoadClassNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read class list %s", path)
	}

	var plain []string
	if err := yaml.Unmarshal(data, &plain); err == nil && len(plain) > 0 {
		return plain, nil
	}

	var doc struct {
		Names yaml.Node `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse class list %s", path)
	}
	switch doc.Names.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := doc.Names.Decode(&names); err != nil {
			return nil, errors.Wrapf(err, "failed to parse class list %s", path)
		}
		if len(names) == 0 {
			return nil, errors.Errorf("class list %s is empty", path)
		}
		return names, nil
	case yaml.MappingNode:
		byIndex := make(map[int]string)
		if err := doc.Names.Decode(&byIndex); err != nil {
			return nil, errors.Wrapf(err, "failed to parse class list %s", path)
		}
		if len(byIndex) == 0 {
			return nil, errors.Errorf("class list %s is empty", path)
		}
		names := make([]string, len(byIndex))
		for i := range names {
			name, ok := byIndex[i]
			if !ok {
				return nil, errors.Errorf("class list %s is missing index %d", path, i)
			}
			names[i] = name
		}
		return names, nil
	default:
		return nil, errors.Errorf("class list %s has no names", path)
	}
}
