package requirelist

import "time"

// RequireList links a requested analysis to the company and datasource it
// should run against. Creating one kicks off a run on the analysis engine.
type RequireList struct {
	No         int64
	AnalysisNo int64
	CompanyNo  int64
	InfoDbNo   int64
	CreatedAt  time.Time
}
