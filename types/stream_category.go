package types

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/kwanko/utils/logger"
)

// IdentifySelectedStreams returns the catalog streams to sync, in catalog order.
// Streams not selected, unknown to the source or failing validation are skipped with a log line.
func IdentifySelectedStreams(catalog *Catalog, streams []*Stream) ([]*ConfiguredStream, error) {
	// create a map for namespace and streamMetadata
	selectedStreamsMap := make(map[string]StreamMetadata)
	for namespace, streamsMetadata := range catalog.SelectedStreams {
		for _, streamMetadata := range streamsMetadata {
			selectedStreamsMap[fmt.Sprintf("%s.%s", namespace, streamMetadata.StreamName)] = streamMetadata
		}
	}

	sources := StreamsToMap(streams...)
	selected := []*ConfiguredStream{}
	selectedIDs := []string{}
	for _, elem := range catalog.Streams {
		if elem == nil || elem.Stream == nil {
			continue
		}

		sMetadata, found := selectedStreamsMap[elem.ID()]
		if catalog.SelectedStreams != nil && !found {
			logger.Debugf("Skipping stream %s; not in selected streams.", elem.ID())
			continue
		}

		source, found := sources[elem.ID()]
		if !found {
			logger.Warnf("Skipping; Configured Stream %s not found in source", elem.ID())
			continue
		}

		elem.StreamMetadata = sMetadata
		if err := elem.Validate(source); err != nil {
			logger.Warnf("Skipping; Configured Stream %s found invalid due to reason: %s", elem.ID(), err)
			continue
		}
		elem.Merge(source)

		selected = append(selected, elem)
		selectedIDs = append(selectedIDs, elem.ID())
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("no valid streams found in catalog")
	}

	logger.Infof("Valid selected streams are %s", strings.Join(selectedIDs, ", "))
	return selected, nil
}

// StreamSelection is the verdict on one catalog stream for the active run configuration
type StreamSelection struct {
	Stream   *ConfiguredStream
	Eligible bool
	// why an ineligible stream is skipped
	Reason string
}
