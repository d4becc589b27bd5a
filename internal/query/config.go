package query

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"KDSPACE_QUERY_REQUEST_TIMEOUT" default:"30s"`
	// Maximum number of region queries accepted in one /region request
	MaxBatchLen int `envconfig:"KDSPACE_QUERY_MAX_BATCH_LEN" default:"16"`
}
