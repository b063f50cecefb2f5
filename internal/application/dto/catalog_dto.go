package dto

// FilterRequest estado de filtro de la vista de vitrina.
type FilterRequest struct {
	SearchTerm    string `json:"search_term"`
	CategoryID    string `json:"category_id"`
	SubcategoryID string `json:"subcategory_id"`
	SortBy        string `json:"sort_by"`
}

// CatalogViewResponse snapshot de la vista de vitrina compartida: el listado
// paginado y el top de más vendidos, cada uno con su propio estado de carga
// y error.
type CatalogViewResponse struct {
	Products           []ProductResponse `json:"products"`
	HasMore            bool              `json:"has_more"`
	Loading            bool              `json:"loading"`
	Error              string            `json:"error,omitempty"`
	Filters            FilterRequest     `json:"filters"`
	BestSellers        []ProductResponse `json:"best_sellers"`
	BestSellersLoading bool              `json:"best_sellers_loading"`
	BestSellersError   string            `json:"best_sellers_error,omitempty"`
}
