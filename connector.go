package kwanko

import (
	"os"

	"github.com/datazip-inc/kwanko/drivers/abstract"
	"github.com/datazip-inc/kwanko/protocol"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/datazip-inc/kwanko/utils/safego"
	_ "github.com/datazip-inc/kwanko/writers/parquet" // registering local parquet writer
	_ "github.com/datazip-inc/kwanko/writers/s3"      // registering s3 parquet writer
	_ "github.com/datazip-inc/kwanko/writers/stdout"  // registering stdout writer
)

func RegisterDriver(driver abstract.DriverInterface) {
	defer safego.Recovery(true)

	// Execute the root command
	err := protocol.CreateRootCommand(true, driver).Execute()
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
