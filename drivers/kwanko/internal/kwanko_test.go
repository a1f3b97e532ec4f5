package driver

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/destination"
	"github.com/datazip-inc/kwanko/drivers/abstract"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/datazip-inc/kwanko/writers/stdout"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

type memoryStateWriter struct {
	writes int
}

func (w *memoryStateWriter) WriteState(_ context.Context, _ *types.State) error {
	w.writes++
	return nil
}

type syncResult struct {
	summary *abstract.RunSummary
	state   *types.State
	records []*types.RecordRow
	writes  int
}

// syncStreams syncs every declared stream the config serves through the STDOUT destination
func syncStreams(t *testing.T, config *Config, state *types.State) (*abstract.RunSummary, int) {
	t.Helper()
	ctx := context.Background()

	k := setupDriver(t, config)
	driver := abstract.NewAbstractDriver(ctx, k)
	driver.SetClock(func() time.Time { return today })
	driver.SetupState(state)
	writer := &memoryStateWriter{}
	driver.SetStateWriter(writer)

	streams, err := driver.Discover(ctx)
	require.NoError(t, err)
	configured := make([]*types.ConfiguredStream, 0, len(streams))
	for _, stream := range streams {
		configured = append(configured, stream.Wrap())
	}

	pool, err := destination.NewWriterPool(ctx, &destination.WriterConfig{Type: destination.STDOUT})
	require.NoError(t, err)

	summary, err := driver.Read(ctx, pool, configured)
	require.NoError(t, err)
	return summary, writer.writes
}

// parseRecords requires every line of output to be a RECORD message
func parseRecords(t *testing.T, output io.Reader) []*types.RecordRow {
	t.Helper()
	records := []*types.RecordRow{}
	scanner := bufio.NewScanner(output)
	for scanner.Scan() {
		message := types.Message{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &message), scanner.Text())
		require.Equal(t, types.RecordMessage, message.Type)
		records = append(records, message.Record)
	}
	require.NoError(t, scanner.Err())
	return records
}

// runSync syncs every declared stream the config serves and collects the RECORD lines
func runSync(t *testing.T, config *Config, state *types.State) syncResult {
	t.Helper()

	var output bytes.Buffer
	previous := stdout.Output
	stdout.Output = &output
	t.Cleanup(func() { stdout.Output = previous })

	if state == nil {
		state = types.NewState(types.StreamType)
	}
	summary, writes := syncStreams(t, config, state)
	return syncResult{summary: summary, state: state, records: parseRecords(t, &output), writes: writes}
}

func saleRow(id, date string) string {
	return strings.Join([]string{"42", "Alpha", "7", "Blog", "", id, "12.50", "1.25", date, "1", "", ""}, ";")
}

func TestSync_Sales(t *testing.T) {
	api := newFakeAPI(t, func(path string, query url.Values) (int, string) {
		if path != constants.SalesEndpoint {
			return http.StatusNotFound, ""
		}
		return http.StatusOK, "OK;2\n" + saleRow("T1", "2024-03-11 10:00:00") + "\n" + saleRow("T2", "2024-03-12 18:45:00") + "\n"
	})

	state := types.NewState(types.StreamType)
	state.SetBookmark("date_sale", "2024-03-10 09:15:00")
	result := runSync(t, api.config(), state)

	require.NoError(t, result.summary.Err())
	assert.Equal(t, []string{"kwanko.sale"}, result.summary.Synced)
	assert.Len(t, result.summary.Skipped, len(streamOrder)-1)

	requests := api.received()
	require.Len(t, requests, 1)
	assert.Equal(t, "2024-03-10", requests[0].Get("debut"))
	assert.Equal(t, "2024-05-20", requests[0].Get("fin"))
	assert.Equal(t, "publisher", requests[0].Get("authl"))
	assert.Empty(t, requests[0].Get("dim"))

	require.Len(t, result.records, 2)
	assert.Equal(t, "sale", result.records[0].Stream)
	assert.Equal(t, constants.Namespace, result.records[0].Namespace)
	assert.Equal(t, "T1", result.records[0].Data["idtransaction"])
	assert.Equal(t, "T2", result.records[1].Data["idtransaction"])
	assert.NotEmpty(t, result.records[0].Data[constants.OlakeID])

	bookmark, _ := result.state.GetBookmark("date_sale")
	assert.Equal(t, "2024-03-12 18:45:00", bookmark)
	assert.Equal(t, 1, result.writes)
}

func TestSync_SalesRemoteFailureKeepsBookmark(t *testing.T) {
	api := newFakeAPI(t, func(_ string, _ url.Values) (int, string) {
		return http.StatusOK, "ERREUR;authentification"
	})

	state := types.NewState(types.StreamType)
	state.SetBookmark("date_sale", "2024-03-10 09:15:00")
	result := runSync(t, api.config(), state)

	require.Error(t, result.summary.Err())
	assert.Empty(t, result.summary.Synced)
	assert.Empty(t, result.records)
	assert.Zero(t, result.writes)

	bookmark, _ := result.state.GetBookmark("date_sale")
	assert.Equal(t, "2024-03-10 09:15:00", bookmark)
}

func dailyListingAPI(t *testing.T) *fakeAPI {
	return newFakeAPI(t, func(path string, query url.Values) (int, string) {
		if path != constants.ListingEndpoint {
			return http.StatusNotFound, ""
		}
		return http.StatusOK, "OK;2\n20230814;10;1;0;0;0;0\n20230815;12;2;1;0;3.00;0.30\n"
	})
}

func TestSync_DailyListing(t *testing.T) {
	api := dailyListingAPI(t)

	state := types.NewState(types.StreamType)
	state.SetBookmark("date_lisann_dim_3", "garbage")
	result := runSync(t, listingConfig(api, 3), state)

	require.NoError(t, result.summary.Err())
	assert.Equal(t, []string{"kwanko.stats_lisann_dim_3_4"}, result.summary.Synced)

	requests := api.received()
	require.Len(t, requests, 1)
	assert.Equal(t, "2024-01-01", requests[0].Get("debut"), "malformed bookmark falls back to the floor")
	assert.Equal(t, "3", requests[0].Get("dim"))

	bookmark, _ := result.state.GetBookmark("date_lisann_dim_3")
	assert.Equal(t, "2023-08-15", bookmark)
	_, found := result.state.GetBookmark("date_lisann_dim_4")
	assert.False(t, found)
}

func TestSync_MonthlyListing(t *testing.T) {
	api := dailyListingAPI(t)

	result := runSync(t, listingConfig(api, 4), nil)

	require.NoError(t, result.summary.Err())
	require.Len(t, result.records, 2)
	assert.Equal(t, "20230814", result.records[0].Data["date"])

	bookmark, _ := result.state.GetBookmark("date_lisann_dim_4")
	assert.Equal(t, "2023-08-01", bookmark)
}

func TestSync_CampaignListing(t *testing.T) {
	api := campaignAPI(t, "43")

	state := types.NewState(types.StreamType)
	state.SetBookmark("date_stats_by_campaign", "2024-02-01")
	result := runSync(t, listingConfig(api, 1), state)

	// the totals listing succeeds and is bookmarked with the run date
	assert.Equal(t, []string{"kwanko.stats_lisann_dim_1"}, result.summary.Synced)
	bookmark, _ := result.state.GetBookmark("date_lisann_dim_1")
	assert.Equal(t, "2024-05-20", bookmark)

	// the fan-out stream lost campaign 43 and keeps its bookmark
	require.Error(t, result.summary.Err())
	assert.Contains(t, result.summary.Err().Error(), "stats_by_campaign")
	bookmark, _ = result.state.GetBookmark("date_stats_by_campaign")
	assert.Equal(t, "2024-02-01", bookmark)

	byStream := map[string][]*types.RecordRow{}
	for _, record := range result.records {
		byStream[record.Stream] = append(byStream[record.Stream], record)
	}
	require.Len(t, byStream["stats_lisann_dim_1"], 2)
	assert.Equal(t, "Alpha", byStream["stats_lisann_dim_1"][0].Data["nomcamp"])

	require.Len(t, byStream["stats_by_campaign"], 2)
	assert.Equal(t, "42", byStream["stats_by_campaign"][0].Data["idcamp"])
	assert.Equal(t, "Alpha", byStream["stats_by_campaign"][0].Data["nomcamp"])
	assert.Equal(t, "20240301", byStream["stats_by_campaign"][0].Data["date"])
}

func TestSync_TotalsListedOncePerDay(t *testing.T) {
	api := campaignAPI(t)

	state := types.NewState(types.StreamType)
	state.SetBookmark("date_lisann_dim_1", "2024-05-20")
	result := runSync(t, listingConfig(api, 1), state)

	require.NoError(t, result.summary.Err())
	for _, record := range result.records {
		assert.NotEqual(t, "stats_lisann_dim_1", record.Stream)
	}
	for _, query := range api.received() {
		assert.NotEqual(t, "idcamp,nomcamp,affichages,clics,leads,ventes,montant,commission", query.Get("champs"))
	}

	bookmark, _ := result.state.GetBookmark("date_stats_by_campaign")
	assert.Equal(t, "2024-03-02", bookmark)
}

func TestCheck(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		api := newFakeAPI(t, func(_ string, _ url.Values) (int, string) {
			return http.StatusOK, "OK;0"
		})
		k := setupDriver(t, api.config())
		require.NoError(t, k.Check(context.Background()))

		requests := api.received()
		require.Len(t, requests, 1)
		assert.Equal(t, "2024-01-01", requests[0].Get("debut"))
		assert.Equal(t, "2024-01-01", requests[0].Get("fin"))
	})

	t.Run("rejected credentials", func(t *testing.T) {
		api := newFakeAPI(t, func(_ string, _ url.Values) (int, string) {
			return http.StatusOK, "ERREUR;authentification"
		})
		k := setupDriver(t, api.config())
		assert.Error(t, k.Check(context.Background()))
	})
}

func TestSync_StdoutCarriesOnlyRecords(t *testing.T) {
	dir := t.TempDir()
	processOut, err := os.Create(filepath.Join(dir, "stdout"))
	require.NoError(t, err)
	processErr, err := os.Create(filepath.Join(dir, "stderr"))
	require.NoError(t, err)

	previousOut, previousErr, previousOutput := os.Stdout, os.Stderr, stdout.Output
	os.Stdout, os.Stderr = processOut, processErr
	stdout.Output = processOut
	logger.Init()
	t.Cleanup(func() {
		os.Stdout, os.Stderr, stdout.Output = previousOut, previousErr, previousOutput
		logger.Init()
		processOut.Close()
		processErr.Close()
	})

	// a partial fan-out failure logs warnings while records are emitted
	api := campaignAPI(t, "43")
	summary, _ := syncStreams(t, listingConfig(api, 1), types.NewState(types.StreamType))
	require.Error(t, summary.Err())

	recordsFile, err := os.Open(processOut.Name())
	require.NoError(t, err)
	defer recordsFile.Close()
	assert.Len(t, parseRecords(t, recordsFile), 4)

	logs, err := os.ReadFile(processErr.Name())
	require.NoError(t, err)
	assert.Contains(t, string(logs), "fetching detail of 2")
	assert.Contains(t, string(logs), "WARN")
}
