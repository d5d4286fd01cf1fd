package seeders

// devPassword is the password every seeded user logs in with. Dev only.
const devPassword = "password123"

var branchesData = []struct {
	Name     string
	Code     string
	IsActive bool
}{
	{Name: "Head Office", Code: "HQ", IsActive: true},
	{Name: "Riverside Branch", Code: "BR-01", IsActive: true},
	{Name: "Hillside Branch", Code: "BR-02", IsActive: true},
	// Kept for exercising the inactive-branch ordering gate.
	{Name: "Old Depot", Code: "BR-99", IsActive: false},
}

// usersData covers one user per role plus a second branch pair, so every
// role-gated transition can be driven from seeded accounts. BranchCode ""
// means a central (branchless) account.
var usersData = []struct {
	FullName   string
	Email      string
	Role       string
	BranchCode string
}{
	{FullName: "Amira Qodirova", Email: "admin@orders.tj", Role: "ADMIN", BranchCode: ""},
	{FullName: "Farrukh Rahimov", Email: "manager.riverside@orders.tj", Role: "MANAGER", BranchCode: "BR-01"},
	{FullName: "Malika Saidova", Email: "manager.hillside@orders.tj", Role: "MANAGER", BranchCode: "BR-02"},
	{FullName: "Jamshed Karimov", Email: "clerk.riverside@orders.tj", Role: "BRANCH_USER", BranchCode: "BR-01"},
	{FullName: "Nigora Azimova", Email: "clerk.hillside@orders.tj", Role: "BRANCH_USER", BranchCode: "BR-02"},
	{FullName: "Rustam Nazarov", Email: "packer@orders.tj", Role: "PACKAGER", BranchCode: ""},
	{FullName: "Dilshod Umarov", Email: "dispatch@orders.tj", Role: "DISPATCHER", BranchCode: ""},
	{FullName: "Suhrob Majidov", Email: "clerk.depot@orders.tj", Role: "BRANCH_USER", BranchCode: "BR-99"},
}

// catalogData includes a zero-stock SKU and an inactive one so the
// out-of-stock and retired-item paths can be walked without fiddling
// with the database by hand. Prices are in diram.
var catalogData = []struct {
	SKU       string
	Name      string
	Stock     int64
	UnitPrice int64
	IsActive  bool
}{
	{SKU: "PAPER-A4-80", Name: "Copy paper A4 80gsm, 500 sheets", Stock: 500, UnitPrice: 6500, IsActive: true},
	{SKU: "PEN-BLUE-05", Name: "Ballpoint pen blue 0.5mm", Stock: 1200, UnitPrice: 150, IsActive: true},
	{SKU: "STAPLER-STD", Name: "Desktop stapler", Stock: 40, UnitPrice: 4200, IsActive: true},
	{SKU: "TONER-HP85A", Name: "Toner cartridge HP 85A", Stock: 0, UnitPrice: 52000, IsActive: true},
	{SKU: "CHAIR-OFFICE", Name: "Office chair, adjustable", Stock: 15, UnitPrice: 89000, IsActive: true},
	{SKU: "LAMP-DESK-LED", Name: "LED desk lamp", Stock: 25, UnitPrice: 12500, IsActive: false},
}
