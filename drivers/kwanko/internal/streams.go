package driver

import (
	"embed"
	"fmt"
	"path"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/types"
	"sigs.k8s.io/yaml"
)

//go:embed resources/*.yaml
var resources embed.FS

// catalog order; streams are synced in this order
var streamOrder = []string{
	"sale",
	"stats_lisann_dim_1",
	"stats_lisann_dim_2",
	"stats_by_campaign",
	"stats_by_site",
	"stats_lisann_dim_3_4",
}

// loadStreams parses the embedded stream declarations
func loadStreams() ([]*types.Stream, error) {
	streams := make([]*types.Stream, 0, len(streamOrder))
	for _, name := range streamOrder {
		data, err := resources.ReadFile(path.Join("resources", name+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("missing declaration for stream[%s]: %s", name, err)
		}

		stream := &types.Stream{}
		if err := yaml.Unmarshal(data, stream); err != nil {
			return nil, fmt.Errorf("failed to parse declaration of stream[%s]: %s", name, err)
		}
		if stream.Dimensions == nil {
			stream.Dimensions = types.NewSet[int]()
		}
		stream.Namespace = constants.Namespace

		if err := stream.Validate(); err != nil {
			return nil, err
		}
		streams = append(streams, stream)
	}

	return streams, nil
}
