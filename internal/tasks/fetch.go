package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/services"
	"github.com/desertthunder/playtime/internal/shared"
)

// PageSize is the number of recordings requested per statistics page.
const PageSize = 100

// FetchTopRecordings collects at least minCount recordings, or every recording the
// service has if there are fewer.
//
// Pages are requested from offset 0, advancing by the number of recordings actually
// returned. An empty page ends the fetch. Recordings keep the service's order. Any
// failed page discards everything fetched so far.
func FetchTopRecordings(ctx context.Context, history services.HistoryService, minCount, pageSize int) ([]models.Recording, error) {
	if pageSize <= 0 {
		pageSize = PageSize
	}

	var all []models.Recording
	offset := 0
	for len(all) < minCount {
		page, err := history.GetTopRecordings(ctx, offset, pageSize)
		if err != nil {
			if !errors.Is(err, shared.ErrTransport) && !errors.Is(err, shared.ErrParse) {
				err = fmt.Errorf("%w: %v", shared.ErrTransport, err)
			}
			return nil, fmt.Errorf("failed to fetch recordings at offset %d: %w", offset, err)
		}
		if page == nil || len(page.Recordings) == 0 {
			break
		}

		offset += len(page.Recordings)
		all = append(all, page.Recordings...)
	}

	return all, nil
}
