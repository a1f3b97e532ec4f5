package driver

import (
	"fmt"
	"strings"
	"time"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/typeutils"
)

// Config holds Kwanko reporting API credentials and the report selection of a run
type Config struct {
	Host  string `json:"host,omitempty" validate:"omitempty,http_url"`
	Authl string `json:"authl" validate:"required"`
	Authv string `json:"authv" validate:"required"`
	// floor of every fetch window
	Debut       string `json:"debut" validate:"required,datetime=2006-01-02"`
	StatsOrSale string `json:"stats_or_sale" validate:"required,oneof=/reqann.php /lisann.php"`
	// listing dimension, required for /lisann.php
	Dim int `json:"dim,omitempty" validate:"omitempty,min=1,max=4"`

	Camp         string `json:"camp,omitempty"`
	Site         string `json:"site,omitempty"`
	Per          string `json:"per,omitempty"`
	ChampsReqann string `json:"champs_reqann,omitempty"`
	ChampsLisann string `json:"champs_lisann,omitempty"`

	TimeoutSeconds    int     `json:"timeout_seconds,omitempty" validate:"gte=0"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" validate:"gte=0"`

	// mirrors state.json to S3 after every bookmark update
	StateBackup *utils.S3ArtifactConfig `json:"state_backup,omitempty"`
}

func (c *Config) Validate() error {
	if err := utils.Validate(c); err != nil {
		return fmt.Errorf("%w: %s", constants.ErrConfiguration, err)
	}

	if c.StatsOrSale == constants.ListingEndpoint && c.Dim == 0 {
		return fmt.Errorf("%w: dim is required when stats_or_sale is %s", constants.ErrConfiguration, constants.ListingEndpoint)
	}

	if c.Host == "" {
		c.Host = constants.DefaultHost
	}
	c.Host = strings.TrimSuffix(c.Host, "/")

	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = int(constants.DefaultRequestTimeout / time.Second)
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = constants.DefaultRequestsPerSecond
	}

	return nil
}

// Family is the report family served by the configured endpoint
func (c *Config) Family() types.ReportFamily {
	if c.StatsOrSale == constants.ListingEndpoint {
		return types.ListingFamily
	}
	return types.SalesFamily
}

func (c *Config) Floor() typeutils.Date {
	return typeutils.Date(c.Debut)
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) StateBackupTarget() *utils.S3ArtifactConfig {
	return c.StateBackup
}
