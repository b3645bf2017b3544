package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// LoadBarsCSV reads price bars from a CSV file. Expected columns:
// symbol, timeframe, timestamp (unix ms), open, high, low, close, volume.
// Invalid records are skipped.
func LoadBarsCSV(filePath string) ([]model.PriceBar, error) {
	records, colMap, err := readCSV(filePath)
	if err != nil {
		return nil, err
	}

	var bars []model.PriceBar
	for _, record := range records {
		get := fieldGetter(record, colMap)

		tsMs, err := strconv.ParseInt(get("timestamp"), 10, 64)
		if err != nil {
			continue
		}

		open, _ := strconv.ParseFloat(get("open"), 64)
		high, _ := strconv.ParseFloat(get("high"), 64)
		low, _ := strconv.ParseFloat(get("low"), 64)
		closePx, _ := strconv.ParseFloat(get("close"), 64)
		volume, _ := strconv.ParseFloat(get("volume"), 64)

		bars = append(bars, model.PriceBar{
			Symbol:    get("symbol"),
			Timeframe: get("timeframe"),
			Timestamp: time.UnixMilli(tsMs),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
			Volume:    volume,
		})
	}

	return bars, nil
}

// LoadAttentionCSV reads attention feature rows from a CSV file. Expected
// columns: symbol, timeframe, timestamp (unix ms), composite_attention_score,
// composite_attention_zscore, news_channel_score, google_trend_zscore,
// twitter_volume_zscore, bullish_attention, bearish_attention.
func LoadAttentionCSV(filePath string) ([]model.AttentionRow, error) {
	records, colMap, err := readCSV(filePath)
	if err != nil {
		return nil, err
	}

	var rows []model.AttentionRow
	for _, record := range records {
		get := fieldGetter(record, colMap)

		tsMs, err := strconv.ParseInt(get("timestamp"), 10, 64)
		if err != nil {
			continue
		}

		parse := func(name string) float64 {
			v, _ := strconv.ParseFloat(get(name), 64)
			return v
		}

		rows = append(rows, model.AttentionRow{
			Symbol:           get("symbol"),
			Timeframe:        get("timeframe"),
			Timestamp:        time.UnixMilli(tsMs),
			CompositeScore:   parse("composite_attention_score"),
			CompositeZScore:  parse("composite_attention_zscore"),
			NewsZScore:       parse("news_channel_score"),
			SearchZScore:     parse("google_trend_zscore"),
			SocialZScore:     parse("twitter_volume_zscore"),
			BullishAttention: parse("bullish_attention"),
			BearishAttention: parse("bearish_attention"),
		})
	}

	return rows, nil
}

func readCSV(filePath string) ([][]string, map[string]int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[col] = i
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		records = append(records, record)
	}

	return records, colMap, nil
}

func fieldGetter(record []string, colMap map[string]int) func(string) string {
	return func(name string) string {
		if idx, ok := colMap[name]; ok && idx < len(record) {
			return record[idx]
		}
		return ""
	}
}
