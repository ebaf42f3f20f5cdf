package domain

var (
	MessageSuccessDownloadList = "shopping list generated successfully"
	MessageFailedDownloadList  = "failed to generate shopping list"
)

// ShoppingListItem is one aggregated ingredient line: the summed amount of
// an ingredient identity (name, measurement unit) across every recipe in
// the cart.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int    `json:"total_amount"`
}

// ShoppingListRecipe names a distinct cart recipe in the report.
type ShoppingListRecipe struct {
	Name   string `json:"name"`
	Author string `json:"author"`
}
