package driver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/drivers/abstract"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/datazip-inc/kwanko/utils/typeutils"
	"github.com/spf13/viper"
)

// Kwanko reads the NetAffiliation (Kwanko) publisher reporting API
type Kwanko struct {
	config *Config
	client *Client
	// Transport replaces the default HTTP transport
	Transport http.RoundTripper
}

func (k *Kwanko) GetConfigRef() abstract.Config {
	k.config = &Config{}
	return k.config
}

func (k *Kwanko) Spec() any {
	return ConfigSchema()
}

func (k *Kwanko) Type() string {
	return string(constants.Kwanko)
}

func (k *Kwanko) Setup(_ context.Context) error {
	if k.config == nil {
		return fmt.Errorf("%w: config not loaded", constants.ErrConfiguration)
	}
	if err := k.config.Validate(); err != nil {
		return err
	}

	// --timeout overrides the config
	if timeout := viper.GetInt(constants.RequestTimeout); timeout > 0 {
		k.config.TimeoutSeconds = timeout
	}

	k.client = NewClient(k.config, k.Transport)
	logger.Infof("Kwanko driver set up for %s (%s) from %s", k.config.StatsOrSale, k.config.Family(), k.config.Debut)
	return nil
}

// Check probes the sales endpoint for the first day of the window
func (k *Kwanko) Check(ctx context.Context) error {
	streams, err := loadStreams()
	if err != nil {
		return err
	}

	idx, found := utils.ArrayContains(streams, func(s *types.Stream) bool { return s.Family == types.SalesFamily })
	if !found {
		return fmt.Errorf("no sales stream declared")
	}

	sales := streams[idx]
	floor := k.config.Floor()
	endpoint, query := k.buildQuery(sales, abstract.Window{Start: floor, End: floor}, 0, nil)
	if _, err := k.client.Fetch(ctx, endpoint, query); err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}
	return nil
}

func (k *Kwanko) GetStreams(_ context.Context) ([]*types.Stream, error) {
	return loadStreams()
}

func (k *Kwanko) SelectStreams(streams []*types.ConfiguredStream) []types.StreamSelection {
	return SelectStreams(k.config, streams)
}

// ActiveDimension is the listing dimension of the run; 0 for sales
func (k *Kwanko) ActiveDimension() int {
	if k.config.Family() == types.ListingFamily {
		return k.config.Dim
	}
	return 0
}

func (k *Kwanko) FloorDate() typeutils.Date {
	return k.config.Floor()
}

func (k *Kwanko) StreamIncrementalChanges(ctx context.Context, stream *types.ConfiguredStream, window abstract.Window, cb abstract.RowFn) error {
	descriptor := stream.GetStream()
	if descriptor.FanOut != nil {
		return k.fanOut(ctx, stream, window, cb)
	}

	endpoint, query := k.buildQuery(descriptor, window, k.config.Dim, nil)
	rows, err := k.client.Fetch(ctx, endpoint, query)
	if err != nil {
		return err
	}

	logger.Debugf("Stream[%s]: %d row(s) received", stream.ID(), len(rows))
	for _, values := range rows {
		if err := cb(ctx, types.Row{Values: values}); err != nil {
			return err
		}
	}
	return nil
}

// buildQuery returns the endpoint and query parameters of a report request. Optional listing
// filters are only sent when configured; filter overrides them.
func (k *Kwanko) buildQuery(stream *types.Stream, window abstract.Window, dim int, filter map[string]string) (string, url.Values) {
	query := url.Values{}
	query.Set("authl", k.config.Authl)
	query.Set("authv", k.config.Authv)
	query.Set("debut", window.Start.String())
	query.Set("fin", window.End.String())

	if stream.Family == types.SalesFamily {
		query.Set("champs", utils.Ternary(k.config.ChampsReqann != "", k.config.ChampsReqann, strings.Join(stream.Fields, ",")).(string))
		return constants.SalesEndpoint, query
	}

	query.Set("dim", strconv.Itoa(dim))
	query.Set("champs", utils.Ternary(k.config.ChampsLisann != "", k.config.ChampsLisann, strings.Join(stream.Fields, ",")).(string))
	for key, value := range map[string]string{"camp": k.config.Camp, "site": k.config.Site, "per": k.config.Per} {
		if value != "" {
			query.Set(key, value)
		}
	}
	for key, value := range filter {
		query.Set(key, value)
	}
	return constants.ListingEndpoint, query
}
