package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/projhub-lab/recommender/pkg/domain/model/config"
	"github.com/projhub-lab/recommender/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Tuning holds the CLI flag for the pipeline tuning file
type Tuning struct {
	path string
}

// Flags returns CLI flags for tuning configuration
func (t *Tuning) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tuning-file",
			Usage:       "TOML file overriding the recommendation tuning constants",
			Sources:     cli.EnvVars("RECOMMENDER_TUNING_FILE"),
			Destination: &t.path,
		},
	}
}

// Configure loads the tuning constants, falling back to defaults when no
// file is given. Fields absent from the file keep their default values.
func (t *Tuning) Configure() (*domainConfig.Tuning, error) {
	tuning := domainConfig.DefaultTuning()
	if t.path == "" {
		return tuning, nil
	}

	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read tuning file", goerr.V("path", t.path))
	}
	if err := toml.Unmarshal(data, tuning); err != nil {
		return nil, goerr.Wrap(err, "failed to parse tuning file", goerr.V("path", t.path))
	}
	if err := tuning.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid tuning configuration", goerr.V("path", t.path))
	}

	logging.Default().Info("Loaded tuning configuration", "path", t.path)
	return tuning, nil
}
