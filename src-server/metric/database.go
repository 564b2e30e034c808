package metric

import (
	"context"
	"time"

	"banquet/src-server/model"
	"banquet/src-server/utils"
)

func database(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Guest)(nil)).
		Where("guest_code = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
