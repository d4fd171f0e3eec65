package store

import (
	"database/sql"
	"fmt"

	"github.com/onlyfits/insights/internal/models"
)

// scanInsights reads all insight records from a result set.
func scanInsights(rows *sql.Rows) ([]models.InsightRecord, error) {
	var records []models.InsightRecord
	for rows.Next() {
		var rec models.InsightRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Summary, &rec.Score, &rec.RiskScore, &rec.Time); err != nil {
			return nil, fmt.Errorf("failed to scan insight row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate insight rows: %w", err)
	}
	return records, nil
}
