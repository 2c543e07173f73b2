package models

// MonthBucket is one point of the month-bucketed signup series.
type MonthBucket struct {
	Year  int `json:"y" bson:"y"`
	Month int `json:"m" bson:"m"`
	Count int `json:"count" bson:"count"`
}

// CategoryBucket is one row of the posts-per-category breakdown.
type CategoryBucket struct {
	Category string `json:"category" bson:"category"`
	Count    int    `json:"count" bson:"count"`
}

// AnalyticsTotals holds the headline counters of the admin dashboard.
type AnalyticsTotals struct {
	TotalUsers          int64 `json:"totalUsers"`
	ActiveUsers         int64 `json:"activeUsers"`
	NewSignupsThisMonth int   `json:"newSignupsThisMonth"`
	TotalBlogs          int64 `json:"totalBlogs"`
}

// AnalyticsCharts holds the time series and breakdowns backing the charts.
type AnalyticsCharts struct {
	Signups         []MonthBucket    `json:"signups"`
	BlogsByCategory []CategoryBucket `json:"blogsByCategory"`
}

// Analytics is the admin analytics response. Every field is recomputed from
// the full collections on each request; nothing is cached.
type Analytics struct {
	Totals AnalyticsTotals `json:"totals"`
	Charts AnalyticsCharts `json:"charts"`
}
