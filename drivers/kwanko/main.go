package main

import (
	"github.com/datazip-inc/kwanko"
	driver "github.com/datazip-inc/kwanko/drivers/kwanko/internal"
)

func main() {
	kwanko.RegisterDriver(&driver.Kwanko{})
}
