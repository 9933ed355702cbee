package domain

// ServiceCatalog is the fixed list of services users can request.
var ServiceCatalog = []string{
	"Financial Advice",
	"Inventory Management",
	"Storage",
	"Website Creation",
	"Design and Tailoring",
	"Construction",
	"Electrical Work",
	"Landscaping",
	"Internet Service",
	"Carpentry Service",
	"Car Rental",
	"Private Tuition",
	"Accommodation",
}

// IsCatalogService reports whether name is offered in the catalog.
func IsCatalogService(name string) bool {
	for _, svc := range ServiceCatalog {
		if svc == name {
			return true
		}
	}
	return false
}
