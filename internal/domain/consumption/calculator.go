// Package consumption implementa el motor de analítica de consumo como servicio de
// dominio puro: recibe los totales diarios de salida ya agregados y no toca persistencia.
package consumption

import "math"

// Constantes de política de reposición.
const (
	WindowDays       = 30   // ventana de análisis hacia atrás
	MinActiveDays    = 3    // mínimo de días con actividad para analizar
	LeadTimeDays     = 7    // tiempo de entrega del proveedor
	SafetyStockDays  = 3    // colchón de seguridad
	StockoutSentinel = 9999 // "no se agota" cuando el consumo promedio es 0

	seasonalityRatio  = 0.30 // desviación estándar > 30% de la media => estacional
	trendThresholdPct = 20.0
)

// Tendencias de consumo.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// DailyOut es el total de salidas de un día con actividad en la ventana.
// Un día con movimientos pero sin salidas aporta OutQty = 0.
type DailyOut struct {
	Weekday int // 0 = domingo ... 6 = sábado
	OutQty  float64
}

// Input agrupa los datos de entrada del análisis. Days debe venir en orden
// ascendente de fecha y contener únicamente los días con actividad en la ventana.
type Input struct {
	CurrentStock float64
	ReorderPoint float64 // punto de reorden configurado del producto
	Days         []DailyOut
}

// Result es el resultado del análisis. Si Sufficient es false solo DaysObserved
// tiene significado: no hubo historial mínimo para calcular el resto.
type Result struct {
	Sufficient              bool
	DaysObserved            int
	AvgDailyConsumption     float64
	WeekdayAverages         [7]float64
	Seasonal                bool
	DaysUntilStockout       int
	RecommendedReorderPoint int
	NeedsOrder              bool
	RecommendedOrderQty     float64
	Trend                   string
}

// Calculate ejecuta el análisis completo de consumo sobre la ventana.
func Calculate(in Input) Result {
	days := len(in.Days)
	if days < MinActiveDays {
		return Result{Sufficient: false, DaysObserved: days}
	}

	var totalOut float64
	for _, d := range in.Days {
		totalOut += d.OutQty
	}
	avg := totalOut / float64(days)

	res := Result{
		Sufficient:          true,
		DaysObserved:        days,
		AvgDailyConsumption: avg,
	}

	res.WeekdayAverages, res.Seasonal = weekdayProfile(in.Days, avg)

	if avg == 0 {
		res.DaysUntilStockout = StockoutSentinel
	} else {
		res.DaysUntilStockout = int(math.Floor(in.CurrentStock / avg))
	}

	res.RecommendedReorderPoint = int(math.Ceil(avg * float64(LeadTimeDays+SafetyStockDays)))

	// needsOrder compara contra el punto configurado, no el recomendado.
	res.NeedsOrder = in.CurrentStock <= in.ReorderPoint
	if res.NeedsOrder {
		target := 2 * math.Max(float64(res.RecommendedReorderPoint), in.ReorderPoint)
		res.RecommendedOrderQty = math.Max(0, target-in.CurrentStock)
	}

	res.Trend = trend(in.Days, avg)
	return res
}

// weekdayProfile promedia las salidas por día de la semana. Los días de la semana
// sin salidas observadas heredan el promedio global. La estacionalidad se evalúa
// con varianza poblacional sobre las 7 medias de bucket, no sobre las muestras diarias.
func weekdayProfile(days []DailyOut, overallAvg float64) ([7]float64, bool) {
	var sums, counts [7]float64
	for _, d := range days {
		if d.OutQty > 0 {
			sums[d.Weekday] += d.OutQty
			counts[d.Weekday]++
		}
	}

	var buckets [7]float64
	for w := 0; w < 7; w++ {
		if counts[w] > 0 {
			buckets[w] = sums[w] / counts[w]
		} else {
			buckets[w] = overallAvg
		}
	}

	var mean float64
	for _, b := range buckets {
		mean += b
	}
	mean /= 7

	if mean == 0 {
		return buckets, false
	}

	var variance float64
	for _, b := range buckets {
		variance += (b - mean) * (b - mean)
	}
	variance /= 7

	return buckets, math.Sqrt(variance) > seasonalityRatio*mean
}

// trend compara el promedio de los últimos min(7, días/2) días activos contra el
// promedio de toda la ventana; un cambio mayor a ±20% marca la dirección.
func trend(days []DailyOut, fullAvg float64) string {
	if fullAvg == 0 {
		return TrendStable
	}
	n := len(days) / 2
	if n > 7 {
		n = 7
	}
	if n < 1 {
		return TrendStable
	}
	var recent float64
	for _, d := range days[len(days)-n:] {
		recent += d.OutQty
	}
	recent /= float64(n)

	change := (recent - fullAvg) / fullAvg * 100
	switch {
	case change > trendThresholdPct:
		return TrendIncreasing
	case change < -trendThresholdPct:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
