package entities

import "time"

// ReportFilter narrows the export query. Zero values mean "all".
type ReportFilter struct {
	BranchID uint64
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// ReportRow is one flattened order line for the xlsx export.
type ReportRow struct {
	OrderNumber   string
	BranchName    string
	RequesterName string
	Status        string
	TotalItems    int64
	TotalValue    int64
	RequestedAt   time.Time
	ApprovedAt    *time.Time
	DispatchedAt  *time.Time
	ReceivedAt    *time.Time
	ClosedAt      *time.Time
}
