// Package gopuff reads the spreadsheet-synced GoPuff sales feed. The sheet
// has one product per row and one column per day, which this package
// flattens into (date, product, quantity) rows.
package gopuff

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/homecooks/profitboard/internal/config"
	"github.com/homecooks/profitboard/internal/domain"
)

const productColumn = "Product Name"

// Feed pulls the raw sales grid from the Sheets API.
type Feed struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
}

func NewFeed(ctx context.Context, cfg config.GoPuffConfig) (*Feed, error) {
	jwt, err := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("gopuff: parse google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("gopuff: create sheets service: %w", err)
	}

	return &Feed{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     cfg.ReadRange,
	}, nil
}

// Fetch reads the whole grid and flattens it to feed rows. Blank and
// non-numeric cells produce no row; an explicit zero does.
func (f *Feed) Fetch(ctx context.Context) ([]domain.SalesFeedRow, error) {
	resp, err := f.svc.Spreadsheets.Values.Get(f.spreadsheetID, f.readRange).Context(ctx).Do()
	if err != nil {
		return nil, domain.TransientFetch("gopuff sheet", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	rows, err := FlattenGrid(resp.Values)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("rows", len(rows)).Msg("gopuff: fetched sales feed")
	return rows, nil
}

// FlattenGrid converts the product-by-date grid into feed rows. The first
// row is the header: a product-name column followed by M/D/YYYY date columns.
func FlattenGrid(values [][]interface{}) ([]domain.SalesFeedRow, error) {
	header := values[0]

	productIdx := -1
	dates := make(map[int]time.Time)
	for i, cell := range header {
		name := strings.TrimSpace(fmt.Sprint(cell))
		if name == productColumn {
			productIdx = i
			continue
		}
		if d, err := time.Parse("1/2/2006", name); err == nil {
			dates[i] = d
		}
	}
	if productIdx < 0 {
		return nil, fmt.Errorf("gopuff: sheet header has no %q column", productColumn)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("gopuff: sheet header has no date columns")
	}

	var rows []domain.SalesFeedRow
	for _, raw := range values[1:] {
		if productIdx >= len(raw) {
			continue
		}
		product := strings.TrimSpace(fmt.Sprint(raw[productIdx]))
		if product == "" {
			continue
		}
		for col, day := range dates {
			if col >= len(raw) {
				continue
			}
			qty, ok := parseQuantity(raw[col])
			if !ok || qty < 0 {
				continue
			}
			// Explicit zeros stay: the zero-sales SKU count needs them.
			rows = append(rows, domain.SalesFeedRow{Date: day, Product: product, Quantity: qty})
		}
	}
	return rows, nil
}

func parseQuantity(cell interface{}) (int, bool) {
	s := strings.TrimSpace(fmt.Sprint(cell))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		return int(fl), true
	}
	return 0, false
}
