package metrics

type Config struct {
	Enabled   bool   `envconfig:"KDSPACE_METRICS_ENABLED" default:"true"`
	Namespace string `envconfig:"KDSPACE_METRICS_NAMESPACE" default:"kdspace"`
}
