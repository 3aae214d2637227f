package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benleb/autoscope/internal/autoscope"
	"github.com/benleb/autoscope/internal/homeassistant"
	"github.com/benleb/autoscope/internal/scope"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// readDocument reads a draft or config from a yaml file or a json file that
// may carry comments and trailing commas. "-" reads json from stdin.
func readDocument(path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := make(map[string]any)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(jsonc.ToJSON(data), &doc)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return doc, nil
}

// printYAML writes v as yaml to stdout.
func printYAML(v any) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}

// connect creates the hub client and the pipeline from the configuration.
func connect(cmd *cobra.Command) (*homeassistant.Client, *autoscope.Service, *autoscope.Config, error) {
	cfg, err := autoscope.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := homeassistant.New(cmd.Context(), homeassistant.Options{
		URL:     viper.GetString("homeassistant.url"),
		Token:   viper.GetString("homeassistant.token"),
		Timeout: viper.GetDuration("homeassistant.timeout"),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return client, autoscope.New(client, cfg), cfg, nil
}

// callerFlag resolves the --user flag against the configured grants.
func callerFlag(cmd *cobra.Command, cfg *autoscope.Config) (scope.Caller, error) {
	user, _ := cmd.Flags().GetString("user")

	return autoscope.NewGrants(cfg.Admins, cfg.Tenants).Caller(user)
}
