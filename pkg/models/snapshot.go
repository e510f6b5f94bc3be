package models

import "time"

// Snapshot is the persisted result of one extraction, later enriched by quality
// profiling. Downstream pipelines may add fields to the stored document; they are
// ignored here.
type Snapshot struct {
	ID                string     `json:"id" bson:"_id"`
	Dialect           string     `json:"dbType" bson:"dbType"`
	Database          string     `json:"database" bson:"database"`
	Tables            []Table    `json:"tables" bson:"tables"`
	TableCount        int        `json:"tableCount" bson:"tableCount"`
	CreatedAt         time.Time  `json:"createdAt" bson:"createdAt"`
	ExtractedAt       time.Time  `json:"extractedAt" bson:"extractedAt"`
	QualityAnalyzedAt *time.Time `json:"qualityAnalyzedAt,omitempty" bson:"qualityAnalyzedAt,omitempty"`
}
