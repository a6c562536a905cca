package dto

import "github.com/tu-usuario/stockbook/internal/domain/consumption"

// AnalysisDTO resultado del análisis de consumo de un producto.
// Si InsufficientData es true, solo DaysObserved es significativo.
type AnalysisDTO struct {
	ProductID        string `json:"product_id"`
	ProductName      string `json:"product_name"`
	InsufficientData bool   `json:"insufficient_data"`
	DaysObserved     int    `json:"days_observed"`

	AvgDailyConsumption     float64     `json:"avg_daily_consumption,omitempty"`
	WeekdayAverages         *[7]float64 `json:"weekday_averages,omitempty"` // 0 = domingo
	Seasonal                bool        `json:"seasonal,omitempty"`
	DaysUntilStockout       int         `json:"days_until_stockout,omitempty"`
	RecommendedReorderPoint int         `json:"recommended_reorder_point,omitempty"`
	NeedsOrder              bool        `json:"needs_order"`
	RecommendedOrderQty     float64     `json:"recommended_order_qty"`
	Trend                   string      `json:"trend,omitempty"`
}

// NewAnalysisDTO mapea el resultado del servicio de dominio al DTO de respuesta.
func NewAnalysisDTO(productID, productName string, r consumption.Result) *AnalysisDTO {
	d := &AnalysisDTO{
		ProductID:        productID,
		ProductName:      productName,
		InsufficientData: !r.Sufficient,
		DaysObserved:     r.DaysObserved,
	}
	if !r.Sufficient {
		return d
	}
	wk := r.WeekdayAverages
	d.AvgDailyConsumption = r.AvgDailyConsumption
	d.WeekdayAverages = &wk
	d.Seasonal = r.Seasonal
	d.DaysUntilStockout = r.DaysUntilStockout
	d.RecommendedReorderPoint = r.RecommendedReorderPoint
	d.NeedsOrder = r.NeedsOrder
	d.RecommendedOrderQty = r.RecommendedOrderQty
	d.Trend = r.Trend
	return d
}
