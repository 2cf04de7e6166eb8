// Command goforecast backtests forecasting models on CSV data.
package main

import "github.com/sartorproj/goforecast/cmd/goforecast/cmd"

func main() {
	cmd.Execute()
}
