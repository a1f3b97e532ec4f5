package driver

import (
	"github.com/datazip-inc/kwanko/constants"
	"github.com/google/jsonschema-go/jsonschema"
)

func ptr[T any](v T) *T {
	return &v
}

// ConfigSchema describes the source config for UIs and for `check`
func ConfigSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:    "Kwanko",
		Type:     "object",
		Required: []string{"authl", "authv", "debut", "stats_or_sale"},
		Properties: map[string]*jsonschema.Schema{
			"host": {
				Type:        "string",
				Description: "Reporting API base URL, defaults to " + constants.DefaultHost,
			},
			"authl": {
				Type:        "string",
				Description: "Publisher login",
			},
			"authv": {
				Type:        "string",
				Description: "Publisher API key",
			},
			"debut": {
				Type:        "string",
				Description: "Earliest date to fetch (YYYY-MM-DD)",
				Pattern:     `^\d{4}-\d{2}-\d{2}$`,
			},
			"stats_or_sale": {
				Type:        "string",
				Description: "Report endpoint: sales (/reqann.php) or statistics listings (/lisann.php)",
				Enum:        []any{constants.SalesEndpoint, constants.ListingEndpoint},
			},
			"dim": {
				Type:        "integer",
				Description: "Listing dimension: 1 campaign, 2 site, 3 day, 4 month",
				Minimum:     ptr(1.0),
				Maximum:     ptr(4.0),
			},
			"camp":          {Type: "string", Description: "Campaign filter of listings"},
			"site":          {Type: "string", Description: "Site filter of listings"},
			"per":           {Type: "string", Description: "Period parameter of listings"},
			"champs_reqann": {Type: "string", Description: "Fields requested from the sales endpoint"},
			"champs_lisann": {Type: "string", Description: "Fields requested from the listing endpoint"},
			"timeout_seconds": {
				Type:        "integer",
				Description: "Timeout of a single request",
				Minimum:     ptr(0.0),
			},
			"requests_per_second": {
				Type:        "number",
				Description: "Maximum request rate",
				Minimum:     ptr(0.0),
			},
			"state_backup": {
				Type:        "object",
				Description: "S3 location state.json is mirrored to",
				Required:    []string{"bucket"},
				Properties: map[string]*jsonschema.Schema{
					"bucket":        {Type: "string"},
					"region":        {Type: "string"},
					"base_path":     {Type: "string"},
					"access_key":    {Type: "string"},
					"secret_key":    {Type: "string"},
					"session_token": {Type: "string"},
					"endpoint":      {Type: "string"},
					"path_style":    {Type: "boolean"},
					"disable_ssl":   {Type: "boolean"},
				},
			},
		},
	}
}
