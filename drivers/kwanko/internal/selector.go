package driver

import (
	"fmt"

	"github.com/datazip-inc/kwanko/types"
)

// SelectStreams decides for each catalog stream, in order, whether the run configuration
// serves it: /reqann.php runs the sales stream only, /lisann.php runs the listing streams
// tagged with the active dimension.
func SelectStreams(config *Config, streams []*types.ConfiguredStream) []types.StreamSelection {
	family := config.Family()

	selections := make([]types.StreamSelection, 0, len(streams))
	for _, stream := range streams {
		selection := types.StreamSelection{Stream: stream}
		descriptor := stream.GetStream()

		switch {
		case descriptor.Family != family:
			selection.Reason = fmt.Sprintf("%s stream not served by %s", descriptor.Family, config.StatsOrSale)
		case family == types.ListingFamily && !descriptor.Dimensions.Exists(config.Dim):
			selection.Reason = fmt.Sprintf("stream listed for dimensions %s, active dimension is %d", descriptor.Dimensions, config.Dim)
		default:
			selection.Eligible = true
		}

		selections = append(selections, selection)
	}
	return selections
}
