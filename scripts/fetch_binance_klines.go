package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
)

// Fetches klines from Binance and writes them as a bars CSV suitable for the
// backfill command (symbol, timeframe, timestamp, open, high, low, close,
// volume).
func main() {
	symbol := flag.String("symbol", "BTCUSDT", "Trading symbol")
	interval := flag.String("interval", "1d", "Kline interval (1d, 4h, ...)")
	limit := flag.Int("limit", 1000, "Number of klines to fetch (max 1000)")
	output := flag.String("output", "", "Output CSV file path")
	flag.Parse()

	if *output == "" {
		*output = fmt.Sprintf("data/%s_%s.csv", *symbol, *interval)
	}

	url := fmt.Sprintf("https://api.binance.com/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		*symbol, *interval, *limit)

	log.Printf("Fetching %s %s klines from Binance...", *symbol, *interval)

	resp, err := http.Get(url)
	if err != nil {
		log.Fatalf("Failed to fetch data: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read response: %v", err)
	}

	var klines [][]interface{}
	if err := json.Unmarshal(body, &klines); err != nil {
		log.Fatalf("Failed to parse JSON: %v", err)
	}

	log.Printf("Fetched %d klines", len(klines))

	if err := os.MkdirAll("data", 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"symbol", "timeframe", "timestamp", "open", "high", "low", "close", "volume"}
	if err := writer.Write(header); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	for _, k := range klines {
		if len(k) < 6 {
			continue
		}

		openTime, ok := k[0].(float64)
		if !ok {
			continue
		}

		record := []string{
			*symbol,
			*interval,
			strconv.FormatInt(int64(openTime), 10),
			toString(k[1]),
			toString(k[2]),
			toString(k[3]),
			toString(k[4]),
			toString(k[5]),
		}
		if err := writer.Write(record); err != nil {
			log.Fatalf("Failed to write record: %v", err)
		}
	}

	log.Printf("Wrote %s", *output)
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
