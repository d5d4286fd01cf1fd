package dto

type OrderReportFilterDTO struct {
	BranchID uint64 `query:"branch_id"`
	Status   string `query:"status"`
	DateFrom string `query:"date_from"`
	DateTo   string `query:"date_to"`
}
