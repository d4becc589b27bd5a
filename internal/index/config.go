package index

type Config struct {
	Dimensions int     `envconfig:"KDSPACE_DIMENSIONS" default:"3"`
	Tolerance  float64 `envconfig:"KDSPACE_TOLERANCE" default:"0.00001"`
	// TOML file loaded into the index at startup; empty starts empty
	Dataset string `envconfig:"KDSPACE_DATASET"`
}
