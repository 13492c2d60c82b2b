package domain

// ProductRecord is a row of the relational products table
type ProductRecord struct {
	ProductCode           string  `json:"productCode"`
	ProductName           string  `json:"productName"`
	GroupCode             string  `json:"groupCode,omitempty"`
	GroupName             string  `json:"groupName,omitempty"`
	MfgPartCode           string  `json:"mfgPartCode,omitempty"`
	Importance            string  `json:"importance,omitempty"`
	HighValue             string  `json:"highValue,omitempty"`
	MaxUsagePerMonth      int     `json:"maxUsagePerMonth"`
	SixMonthsUsage        int     `json:"sixMonthsUsage"`
	AveragePerDay         float64 `json:"averagePerDay"`
	LeadTimeDays          int     `json:"leadTimeDays"`
	CriticalFactor        int     `json:"criticalFactor"`
	Units                 string  `json:"units,omitempty"`
	MinInventoryPerDay    int     `json:"minInventoryPerDay"`
	MaxInventoryPerDay    int     `json:"maxInventoryPerDay"`
	CurrentStockAvailable int     `json:"currentStockAvailable"`
	ImageURL              *string `json:"imageUrl"` // nil until an image is attached
}

// PendingProduct is a dataset row that has no image reference yet
type PendingProduct struct {
	RowIndex    int
	ProductCode string
	ProductName string
}

// AssignedImage is a dataset row that already carries an image reference
type AssignedImage struct {
	RowIndex    int
	ProductCode string
	ImageURL    string
}

// GroupSummary counts products of a single vendor group
type GroupSummary struct {
	GroupName  string `json:"groupName"`
	Products   int64  `json:"products"`
	WithImages int64  `json:"withImages"`
}

// CatalogSummary aggregates catalog statistics for reporting
type CatalogSummary struct {
	TotalVendors  int64          `json:"totalVendors"`
	TotalProducts int64          `json:"totalProducts"`
	WithImages    int64          `json:"withImages"`
	WithoutImages int64          `json:"withoutImages"`
	Groups        []GroupSummary `json:"groups"`
}
