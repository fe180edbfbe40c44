package gopuff

import (
	"context"
	"errors"

	"github.com/homecooks/profitboard/internal/domain"
)

// Disabled is a stand-in feed for deployments without sheet credentials.
// Every fetch fails transiently, so the GoPuff view degrades instead of the
// whole process refusing to start.
type Disabled struct{}

func (Disabled) Fetch(ctx context.Context) ([]domain.SalesFeedRow, error) {
	return nil, domain.TransientFetch("sales feed", errors.New("feed not configured"))
}
