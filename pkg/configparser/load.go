package configparser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadYamlFile reads a YAML file and loads its leaves into the environment.
//
// Nested keys are joined with "_" and upper-cased (feed.poll_interval ->
// FEED_POLL_INTERVAL). Values of the form ${VAR:-default} are substituted.
// Variables that are already set are left untouched.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}

	vars, err := Flatten(data)
	if err != nil {
		return err
	}

	for key, value := range vars {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("could not set env var %s: %w", key, err)
		}
	}

	return nil
}

// Flatten decodes YAML and returns its scalar leaves keyed by env var name.
func Flatten(data []byte) (map[string]string, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}

	out := make(map[string]string)
	flatten(nil, root, out)
	return out, nil
}

func flatten(prefix []string, node map[string]any, out map[string]string) {
	for key, value := range node {
		path := append(append([]string{}, prefix...), key)
		switch v := value.(type) {
		case map[string]any:
			flatten(path, v, out)
		case nil:
			// "key:" with no value doesn't represent a variable
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, fmt.Sprint(item))
			}
			out[envName(path)] = strings.Join(items, ",")
		default:
			out[envName(path)] = substitute(fmt.Sprint(v))
		}
	}
}

func envName(path []string) string {
	return strings.ToUpper(strings.Join(path, "_"))
}

// substitute resolves ${VAR:-default} using the current environment.
func substitute(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}

	inner := value[2 : len(value)-1]
	name, def, hasDefault := strings.Cut(inner, ":-")
	if envValue := os.Getenv(strings.TrimSpace(name)); envValue != "" {
		return envValue
	}
	if hasDefault {
		return strings.TrimSpace(def)
	}
	return ""
}

// LoadAndParseYaml loads the YAML file (if present) into the environment and
// fills cfg from `env`/`default` struct tags.
func LoadAndParseYaml(filepath string, cfg any) error {
	if err := LoadYamlFile(filepath); err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrNoFilePath) {
		return err
	}
	return ParseEnv(cfg)
}
