package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Alias pins a service name to an explicit endpoint, overriding the
// nickname expansion. Useful for mirrors and test deployments whose
// names don't follow the eas<name> convention.
type Alias struct {
	URL      string `yaml:"url"`
	Nickname string `yaml:"nickname"`
}

type aliasFile struct {
	Aliases map[string]Alias `yaml:"aliases"`
}

// LoadAliases reads a YAML alias file:
//
//	aliases:
//	  otf-mirror:
//	    url: https://easotf.esac.esa.int/tap-server/tap
//	    nickname: otf
//
// An alias without a nickname gets UnknownNickname.
func LoadAliases(path string) (map[string]Alias, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse alias yaml: %w", err)
	}

	for name, alias := range file.Aliases {
		if alias.URL == "" {
			return nil, fmt.Errorf("alias %q has no url", name)
		}
		if alias.Nickname == "" {
			alias.Nickname = UnknownNickname
			file.Aliases[name] = alias
		}
	}

	return file.Aliases, nil
}
